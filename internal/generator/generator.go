// Package generator defines the common adapter interface for video
// generation providers and the driver that runs a generation from submit to
// terminal state. Each provider adapter translates its wire statuses into
// the canonical set here.
package generator

import (
	"context"
	"time"

	"github.com/swapstudio/swapstudio-api/internal/job"
)

// Status is the canonical state of a provider-side task.
type Status string

// Canonical task statuses across providers.
const (
	StatusQueued    Status = "queued"    // Accepted by the provider, not yet running
	StatusRunning   Status = "running"   // Generation in progress
	StatusSucceeded Status = "succeeded" // Finished with output
	StatusFailed    Status = "failed"    // Finished with an error
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Request carries the media and options for one generation.
// Media fields are base64 payloads, with or without a data-URI prefix.
type Request struct {
	Mode      job.Mode
	ImageData string
	VideoData string
	AudioData string
	Prompt    string
	Quality   string // "std" or "pro"
}

// Task identifies a submitted generation on the provider side.
// StatusURL and ResultURL are set by providers that hand back explicit poll
// endpoints at submit time.
type Task struct {
	ID        string
	StatusURL string
	ResultURL string
}

// PollResult is one observation of a provider-side task.
type PollResult struct {
	Status    Status
	OutputURL string // Set when Status is StatusSucceeded and output resolved
	Error     string // Set when Status is StatusFailed
}

// PollPolicy controls how a task is polled to completion.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// ProgressFunc reports staged progress during submission.
type ProgressFunc func(progress int)

// Adapter is implemented once per provider route.
type Adapter interface {
	// Provider identifies the provider this adapter drives.
	Provider() job.Provider

	// Policy returns the poll interval and attempt ceiling for this route.
	Policy() PollPolicy

	// Submit uploads media and starts a generation, reporting staged
	// progress along the way.
	Submit(ctx context.Context, req Request, report ProgressFunc) (Task, error)

	// PollOnce checks the task state a single time. Attempt numbering
	// starts at 1.
	PollOnce(ctx context.Context, task *Task, attempt int) (PollResult, error)
}
