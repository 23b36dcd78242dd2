package domain

import (
	"database/sql"
	"time"
)

// Contact CRM contact row (contacts table).
// email/phone are the dedup key: a contact must carry at least one of them on
// creation, and both are stored in their canonical form (see normalize).
type Contact struct {
	// Primary key
	ContactID string `db:"contact_id"` // UUID, PRIMARY KEY

	// Tenant scope
	TenantID string `db:"tenant_id"` // UUID, NOT NULL

	// Identification
	Name  string         `db:"name"`  // VARCHAR(200), NOT NULL
	Email sql.NullString `db:"email"` // VARCHAR(320), nullable, lower-cased
	Phone sql.NullString `db:"phone"` // VARCHAR(50), nullable, digits + optional leading '+'

	// Relationship
	Role        sql.NullString `db:"role"`         // VARCHAR(100), nullable
	CompanyName sql.NullString `db:"company_name"` // VARCHAR(200), nullable (free text as entered)
	CompanyID   sql.NullString `db:"company_id"`   // UUID, nullable (resolved reference)

	// Lifecycle
	Status string         `db:"status"` // VARCHAR(50), NOT NULL, DEFAULT 'active'
	Stage  sql.NullString `db:"stage"`  // VARCHAR(50), nullable
	Source sql.NullString `db:"source"` // VARCHAR(100), nullable

	Notes sql.NullString `db:"notes"` // TEXT, nullable

	// Temporal fields, each independently nullable
	BirthDate         *time.Time `db:"birth_date"`          // DATE, nullable
	LastInteractionAt *time.Time `db:"last_interaction_at"` // TIMESTAMPTZ, nullable
	LastPurchaseDate  *time.Time `db:"last_purchase_date"`  // DATE, nullable

	TotalValue float64 `db:"total_value"` // NUMERIC(14,2), NOT NULL, DEFAULT 0

	// Audit
	CreatedAt time.Time  `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time  `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
	DeletedAt *time.Time `db:"deleted_at"` // TIMESTAMPTZ, nullable (soft delete marker)
}
