package domain

import (
	"database/sql"
	"time"
)

// Deal pipeline board card (deals table).
type Deal struct {
	DealID     string         `db:"deal_id"`     // UUID, PRIMARY KEY
	TenantID   string         `db:"tenant_id"`   // UUID, NOT NULL
	PipelineID string         `db:"pipeline_id"` // UUID, NOT NULL
	StageID    string         `db:"stage_id"`    // UUID, NOT NULL
	ContactID  sql.NullString `db:"contact_id"`  // UUID, nullable
	Title      string         `db:"title"`       // VARCHAR(200), NOT NULL
	Amount     float64        `db:"amount"`      // NUMERIC(14,2), NOT NULL, DEFAULT 0
	Status     string         `db:"status"`      // VARCHAR(20), NOT NULL (open/won/lost)
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}
