// Package cursor implements the opaque offset token used by list endpoints.
// The codec is pure and stateless: it never inspects the underlying data.
package cursor

import (
	"encoding/base64"
	"strconv"
	"strings"
)

const (
	// DefaultLimit applies when the client sends no limit.
	DefaultLimit = 25
	// MaxLimit is the clamp ceiling; larger requests are clamped, not rejected.
	MaxLimit = 100
	// MinLimit is the clamp floor.
	MinLimit = 1

	prefix = "v1:"
)

// Encode turns a non-negative offset into an opaque token.
func Encode(offset int) string {
	if offset < 0 {
		offset = 0
	}
	return base64.RawURLEncoding.EncodeToString([]byte(prefix + strconv.Itoa(offset)))
}

// Decode turns a token back into an offset. Absent, malformed, or tampered
// tokens fail closed to offset 0.
func Decode(token string) int {
	if token == "" {
		return 0
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0
	}
	s := string(raw)
	if !strings.HasPrefix(s, prefix) {
		return 0
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(s, prefix))
	if err != nil || offset < 0 {
		return 0
	}
	return offset
}

// ParseLimit parses a raw limit parameter and clamps it to [MinLimit, MaxLimit].
// Empty or unparsable input yields DefaultLimit.
func ParseLimit(raw string) int {
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultLimit
	}
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Next computes the follow-up token for a page window. The window covers
// [offset, offset+limit-1]; a token exists only when offset+limit < total.
func Next(offset, limit, total int) *string {
	next := offset + limit
	if next >= total {
		return nil
	}
	token := Encode(next)
	return &token
}
