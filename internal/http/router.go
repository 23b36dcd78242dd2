package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux (no third-party routing
// dependency needed for this surface).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterCRMRoutes mounts the public tenant-scoped API behind the API key
// middleware.
func (r *Router) RegisterCRMRoutes(
	auth *AuthMiddleware,
	contacts *ContactsHandler,
	export *ContactsExportHandler,
	companies *CompaniesHandler,
	pipelines *PipelinesHandler,
	deals *DealsHandler,
) {
	// The exact export pattern takes precedence over the contacts prefix.
	r.Handle("/crm/api/v1/contacts", auth.Wrap(contacts.ServeHTTP))
	r.Handle("/crm/api/v1/contacts/", auth.Wrap(contacts.ServeHTTP))
	r.Handle("/crm/api/v1/contacts/export", auth.Wrap(export.ServeHTTP))

	r.Handle("/crm/api/v1/companies", auth.Wrap(companies.ServeHTTP))

	r.Handle("/crm/api/v1/pipelines", auth.Wrap(pipelines.ServeHTTP))
	r.Handle("/crm/api/v1/deals", auth.Wrap(deals.ServeHTTP))
	r.Handle("/crm/api/v1/deals/", auth.Wrap(deals.ServeHTTP))
}

// RegisterAdminRoutes mounts the root-token-guarded platform surface.
func (r *Router) RegisterAdminRoutes(admin *AdminHandler) {
	r.Handle("/admin/api/v1/tenants", admin.ServeHTTP)
	r.Handle("/admin/api/v1/tenants/", admin.ServeHTTP)
	r.Handle("/admin/api/v1/api-keys", admin.ServeHTTP)
	r.Handle("/admin/api/v1/api-keys/", admin.ServeHTTP)
}

// RegisterHealthRoute liveness probe.
func (r *Router) RegisterHealthRoute() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
