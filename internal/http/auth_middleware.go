package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clientdesk-data/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const tenantContextKey contextKey = "tenant"

// AuthMiddleware resolves the bearer API key to a tenant scope before any
// CRM route runs. Failure short-circuits with the auth envelope.
type AuthMiddleware struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthMiddleware(auth service.AuthService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := m.auth.ResolveKey(r.Context(), bearerToken(r))
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
				return
			}
			m.logger.Error("API key resolution failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, CodeDBError, "store operation failed")
			return
		}

		ctx := context.WithValue(r.Context(), tenantContextKey, identity)
		next(w, r.WithContext(ctx))
	}
}

// TenantFrom returns the tenant scope placed by the middleware.
func TenantFrom(ctx context.Context) (*service.TenantIdentity, bool) {
	identity, ok := ctx.Value(tenantContextKey).(*service.TenantIdentity)
	return identity, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}
