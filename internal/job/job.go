// Package job provides the Job aggregate for tracking media-swap requests.
// It includes the Job entity with guarded state transitions and the Registry
// interface used by the orchestrator and provider adapters.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/swapstudio/swapstudio-api/internal/job/id"
)

// Provider identifies which backend owns a job. Fixed at creation.
type Provider string

const (
	// ProviderFal delegates to fal.ai's queue API.
	ProviderFal Provider = "fal"
	// ProviderKling delegates to the direct Kling API.
	ProviderKling Provider = "kling"
	// ProviderReplicate delegates to the Replicate predictions API.
	ProviderReplicate Provider = "replicate"
)

// IsValid returns true if the provider is valid.
func (p Provider) IsValid() bool {
	return p == ProviderFal || p == ProviderKling || p == ProviderReplicate
}

// Kind distinguishes the two request families the API accepts.
type Kind string

const (
	// KindSwap is a character-swap or motion-control request.
	KindSwap Kind = "swap"
	// KindLipSync is a lip-sync request.
	KindLipSync Kind = "lipsync"
)

// Mode selects the generation mode for swap jobs.
type Mode string

const (
	// ModeCharacterSwap replaces a person in a video with a reference image.
	ModeCharacterSwap Mode = "character_swap"
	// ModeMotionControl drives a target image with motion from a video.
	ModeMotionControl Mode = "motion_control"
	// ModeLipSync synchronizes a video's mouth movement to an audio track.
	ModeLipSync Mode = "lipsync"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusPending indicates the job was created but not yet dispatched.
	StatusPending Status = "pending"
	// StatusProcessing indicates the owning adapter is driving the job.
	StatusProcessing Status = "processing"
	// StatusSucceeded indicates the job finished with an output URL.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the job finished with an error message.
	StatusFailed Status = "failed"
	// StatusCanceled indicates the job was canceled by the caller.
	StatusCanceled Status = "canceled"
)

// IsTerminal returns true if the status permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// ErrInvalidTransition is returned when an invalid state transition is attempted.
// Terminal states, including canceled, reject every transition; a canceled job
// can never be overwritten by the adapter's eventual terminal write.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusFailed, StatusCanceled},
	StatusProcessing: {StatusSucceeded, StatusFailed, StatusCanceled},
	StatusSucceeded:  {},
	StatusFailed:     {},
	StatusCanceled:   {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job represents one tracked media-swap request.
// All state changes after creation are made by the single adapter task that
// owns the job; HTTP callers only ever read it.
type Job struct {
	mu sync.RWMutex

	// ID is the opaque unique identifier, generated at creation.
	ID string
	// Kind is the request family (swap or lipsync).
	Kind Kind
	// Mode is the generation mode.
	Mode Mode
	// Provider is the backend that owns this job.
	Provider Provider
	// Status is the current job state.
	Status Status
	// Progress is the percentage of completion (0-100).
	Progress int
	// TaskID is the provider's own identifier for the remote task.
	TaskID string
	// OutputURL is set exactly once, on transition to succeeded.
	OutputURL string
	// Error is set exactly once, on transition to failed.
	Error string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when processing started.
	StartedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a new Job in pending state with a generated ID.
func New(kind Kind, mode Mode, provider Provider) *Job {
	now := time.Now()
	return &Job{
		ID:        id.Generate(),
		Kind:      kind,
		Mode:      mode,
		Provider:  provider,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.transitionLocked(status)
}

func (j *Job) transitionLocked(status Status) error {
	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusProcessing:
		j.StartedAt = j.UpdatedAt
	case StatusSucceeded, StatusFailed, StatusCanceled:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from pending to processing.
func (j *Job) Start() error {
	return j.TransitionTo(StatusProcessing)
}

// Succeed transitions the job to succeeded with the output URL and
// sets progress to exactly 100.
func (j *Job) Succeed(outputURL string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusSucceeded); err != nil {
		return err
	}
	j.OutputURL = outputURL
	j.Progress = 100
	return nil
}

// Fail transitions the job to failed with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transitionLocked(StatusFailed); err != nil {
		return err
	}
	j.Error = errMsg
	return nil
}

// Cancel transitions the job to canceled.
// Returns ErrInvalidTransition if the job is already terminal.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCanceled)
}

// SetTaskID records the provider's remote task identifier. Set once,
// after submission succeeds.
func (j *Job) SetTaskID(taskID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.TaskID = taskID
	j.UpdatedAt = time.Now()
}

// UpdateProgress sets the progress percentage. Values are clamped to
// 0-99 while the job is processing, and decreases are ignored so that
// successive polls always observe non-decreasing progress.
func (j *Job) UpdateProgress(progress int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.IsTerminal() {
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 99 {
		progress = 99
	}
	if progress <= j.Progress {
		return
	}
	j.Progress = progress
	j.UpdatedAt = time.Now()
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// GetProgress returns the current progress (thread-safe).
func (j *Job) GetProgress() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Progress
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status.IsTerminal()
}

// Clone creates a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:          j.ID,
		Kind:        j.Kind,
		Mode:        j.Mode,
		Provider:    j.Provider,
		Status:      j.Status,
		Progress:    j.Progress,
		TaskID:      j.TaskID,
		OutputURL:   j.OutputURL,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
