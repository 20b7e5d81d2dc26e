package job

import (
	"context"
	"errors"
)

// Static errors for registry operations.
var (
	// ErrJobNotFound is returned when a job cannot be found by ID.
	ErrJobNotFound = errors.New("job not found")
	// ErrDuplicateJobID is returned when a job with the same ID already exists.
	ErrDuplicateJobID = errors.New("duplicate job id")
)

// Registry is the single source of truth for job status and progress.
// Get returns the live aggregate: each job's fields are owned by exactly one
// adapter task for the job's lifetime and are mutated in place through the
// Job's guarded methods, so callers read a consistent eventually-updated view.
// Jobs are never deleted; retention is process-lifetime.
type Registry interface {
	// Create registers a new job. Returns ErrDuplicateJobID if the ID exists.
	Create(ctx context.Context, job *Job) error

	// Get retrieves a job by its unique identifier.
	// Returns ErrJobNotFound if the job does not exist.
	Get(ctx context.Context, id string) (*Job, error)

	// List returns all jobs.
	List(ctx context.Context) ([]*Job, error)
}
