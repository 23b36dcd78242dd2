package domain

import "time"

// Company tenant-scoped company row (companies table).
// Identity is the case-insensitive name: at most one non-deleted company per
// (tenant_id, lower(company_name)), enforced by a partial unique index.
type Company struct {
	CompanyID   string     `db:"company_id"`   // UUID, PRIMARY KEY
	TenantID    string     `db:"tenant_id"`    // UUID, NOT NULL
	CompanyName string     `db:"company_name"` // VARCHAR(200), NOT NULL
	CreatedAt   time.Time  `db:"created_at"`   // TIMESTAMPTZ, NOT NULL
	UpdatedAt   time.Time  `db:"updated_at"`   // TIMESTAMPTZ, NOT NULL
	DeletedAt   *time.Time `db:"deleted_at"`   // TIMESTAMPTZ, nullable
}
