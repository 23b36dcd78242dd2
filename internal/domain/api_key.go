package domain

import "time"

// APIKey tenant-bound API credential (api_keys table).
// The plaintext secret is returned exactly once at issuance; only its SHA-256
// is stored.
type APIKey struct {
	KeyID     string     `db:"key_id"`     // UUID, PRIMARY KEY
	TenantID  string     `db:"tenant_id"`  // UUID, NOT NULL
	KeyHash   []byte     `db:"key_hash"`   // BYTEA, NOT NULL, UNIQUE
	Label     string     `db:"label"`      // VARCHAR(200), nullable
	Status    string     `db:"status"`     // VARCHAR(20), NOT NULL (active/revoked)
	CreatedAt time.Time  `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	RevokedAt *time.Time `db:"revoked_at"` // TIMESTAMPTZ, nullable
}
