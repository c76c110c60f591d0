// Package store persists roadmap runs and serves the educational resource
// catalog the pipeline retrieves from. Matching semantics (exact subject,
// unit filters) live here; relevance ranking is the pipeline's job.
package store

import (
	"context"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status  model.RunStatus `json:"status,omitempty"`
	Subject string          `json:"subject,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Offset  int             `json:"offset,omitempty"`
}

// Store defines persistence and document retrieval for the pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, req model.Request) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	CompleteRun(ctx context.Context, runID string, roadmap []byte) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Resource catalog (document-store boundary). Coarse filters only;
	// the caller re-ranks whatever comes back.
	FindMaterials(ctx context.Context, subject string, unit int) ([]model.Resource, error)
	FindReferenceBooks(ctx context.Context, subject string, difficulty model.Level) ([]model.Resource, error)
	ImportResources(ctx context.Context, resources []model.Resource) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
