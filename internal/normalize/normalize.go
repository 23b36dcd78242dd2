// Package normalize canonicalizes free-text API input before it reaches the
// repository layer. Every function treats the empty string (after trimming)
// as "absent" and returns nil rather than storing empties.
package normalize

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Text trims surrounding whitespace. Empty input normalizes to absence.
func Text(raw string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	return &s
}

// Email lower-cases and trims. No RFC validation beyond emptiness: malformed
// addresses are accepted as-is (documented limitation).
func Email(raw string) *string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	return &s
}

// Phone strips formatting down to digits, keeping a single leading '+'.
// The same rule runs on both the write path and the dedup lookup path so
// equality comparisons stay stable.
func Phone(raw string) *string {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "+" {
		return nil
	}
	return &s
}

// UUID validates raw as a UUID and returns its canonical lower-case form.
// Invalid input yields nil (treated as absent), per the field contract;
// route path parameters use UUIDParam instead, which must fail loudly.
func UUID(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	s := id.String()
	return &s
}

// UUIDParam validates a route path parameter. Unlike UUID, a malformed value
// is a validation failure, not absence.
func UUIDParam(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// dateLayouts tried in order after the verbatim YYYY-MM-DD form.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// Date accepts YYYY-MM-DD verbatim, otherwise attempts general date parsing
// and re-emits YYYY-MM-DD. Empty input is absent (nil, ok). Unparsable input
// is the invalid sentinel (nil, !ok) that callers must turn into a
// validation error, never silently drop.
func Date(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &day, true
		}
	}
	return nil, false
}

// timestampLayouts tried in order after RFC 3339.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is the full-timestamp sibling of Date: RFC 3339 first, general
// parsing fallback, same absent/invalid contract.
func Timestamp(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}

// FormatDate re-emits a date field as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimestamp re-emits a timestamp field as RFC 3339.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
