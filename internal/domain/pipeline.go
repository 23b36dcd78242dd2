package domain

import "time"

// Pipeline tenant-scoped pipeline board (pipelines table).
type Pipeline struct {
	PipelineID   string     `db:"pipeline_id"`   // UUID, PRIMARY KEY
	TenantID     string     `db:"tenant_id"`     // UUID, NOT NULL
	PipelineName string     `db:"pipeline_name"` // VARCHAR(200), NOT NULL
	Stages       []Stage    // ordered by Position; loaded with the pipeline
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

// Stage ordered column of a pipeline board (pipeline_stages table).
type Stage struct {
	StageID    string `db:"stage_id"`    // UUID, PRIMARY KEY
	TenantID   string `db:"tenant_id"`   // UUID, NOT NULL
	PipelineID string `db:"pipeline_id"` // UUID, NOT NULL
	StageName  string `db:"stage_name"`  // VARCHAR(200), NOT NULL
	Position   int    `db:"position"`    // INT, NOT NULL, UNIQUE (pipeline_id, position)
}
