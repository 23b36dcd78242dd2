package domain

import "time"

// Tenant platform-level tenant row (tenants table).
type Tenant struct {
	TenantID   string    `db:"tenant_id"`   // UUID, PRIMARY KEY
	TenantName string    `db:"tenant_name"` // VARCHAR(200), NOT NULL
	Status     string    `db:"status"`      // VARCHAR(20), NOT NULL (active/suspended/deleted)
	CreatedAt  time.Time `db:"created_at"`  // TIMESTAMPTZ, NOT NULL
	UpdatedAt  time.Time `db:"updated_at"`  // TIMESTAMPTZ, NOT NULL
}
