package testrun

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows List and Count. Zero values match everything.
type Filter struct {
	ScriptName string
	Status     Status
}

// Store defines the interface for test run persistence operations.
type Store interface {
	// Create creates a new test run in the store.
	Create(ctx context.Context, testRun *TestRun) error

	// GetByID retrieves a test run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*TestRun, error)

	// Update updates a test run with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// List retrieves a page of test runs, newest first.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*TestRun, error)

	// Count returns how many test runs match filter.
	Count(ctx context.Context, filter Filter) (int64, error)

	// Start marks a test run as started (sets started_at, changes status to running).
	Start(ctx context.Context, id uuid.UUID) error

	// Complete marks a test run as completed with its outcome.
	Complete(ctx context.Context, id uuid.UUID, outcome Outcome) error
}

// StepStore persists the executed statements of a run.
type StepStore interface {
	// CreateBatch stores steps in one transaction.
	CreateBatch(ctx context.Context, steps []*StepRecord) error

	// ListByTestRun returns the steps of a run ordered by step_index.
	ListByTestRun(ctx context.Context, testRunID uuid.UUID) ([]*StepRecord, error)
}

// ArtifactStore persists the files a run wrote to blob storage.
type ArtifactStore interface {
	// Create creates a new artifact row.
	Create(ctx context.Context, artifact *Artifact) error

	// ListByTestRun returns the artifacts of a run in creation order.
	ListByTestRun(ctx context.Context, testRunID uuid.UUID) ([]*Artifact, error)
}

// UpdateSetter is a function that updates a test run field.
type UpdateSetter func(*TestRun) error
