package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/swapstudio/swapstudio-api/internal/job"
)

// DefaultPollInterval is the pause between status checks.
const DefaultPollInterval = 5 * time.Second

// Archiver copies a finished output to durable storage and returns the
// archived URL.
type Archiver interface {
	Archive(ctx context.Context, jobID, outputURL string) (string, error)
}

// Driver runs a generation end to end: submit, poll to a terminal state,
// resolve the job. Provider failures never escape the driver; every path
// lands the job in a terminal state.
type Driver struct {
	logger   *slog.Logger
	archiver Archiver
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithArchiver enables output archiving for succeeded jobs.
func WithArchiver(archiver Archiver) DriverOption {
	return func(d *Driver) {
		d.archiver = archiver
	}
}

// NewDriver creates a Driver.
func NewDriver(logger *slog.Logger, opts ...DriverOption) *Driver {
	d := &Driver{logger: logger}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes one generation for the given job. It is meant to run in its
// own goroutine; cancellation arrives through ctx and through the job's own
// state guard.
func (d *Driver) Run(ctx context.Context, j *job.Job, adapter Adapter, req Request) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("generation panicked",
				"job_id", j.ID,
				"provider", adapter.Provider(),
				"panic", r,
			)
			d.fail(j, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := j.Start(); err != nil {
		// Canceled before the driver picked it up.
		return
	}

	task, err := adapter.Submit(ctx, req, j.UpdateProgress)
	if err != nil {
		d.logger.Error("generation submit failed",
			"job_id", j.ID,
			"provider", adapter.Provider(),
			"error", err,
		)
		d.fail(j, err.Error())
		return
	}
	if task.ID != "" {
		j.SetTaskID(task.ID)
	}

	d.logger.Info("generation submitted",
		"job_id", j.ID,
		"provider", adapter.Provider(),
		"task_id", task.ID,
	)

	policy := adapter.Policy()
	interval := policy.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			// Cancellation already flipped the job state.
			return
		case <-timer.C:
		}
		timer.Reset(interval)

		result, err := adapter.PollOnce(ctx, &task, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Transient poll failures are skipped but still count toward
			// the attempt ceiling.
			d.logger.Warn("poll attempt failed",
				"job_id", j.ID,
				"provider", adapter.Provider(),
				"attempt", attempt,
				"error", err,
			)
			continue
		}

		switch result.Status {
		case StatusQueued:
			j.UpdateProgress(min(50+attempt/4, 60))
		case StatusRunning:
			j.UpdateProgress(min(60+attempt/3, 90))
		case StatusSucceeded:
			d.finish(ctx, j, adapter, result.OutputURL)
			return
		case StatusFailed:
			msg := result.Error
			if msg == "" {
				msg = "generation failed"
			}
			d.fail(j, msg)
			return
		}
	}

	d.fail(j, fmt.Sprintf("generation timed out after %d status checks", policy.MaxAttempts))
}

func (d *Driver) finish(ctx context.Context, j *job.Job, adapter Adapter, outputURL string) {
	if outputURL == "" {
		d.fail(j, "generation completed but returned no output video")
		return
	}

	if d.archiver != nil {
		archived, err := d.archiver.Archive(ctx, j.ID, outputURL)
		if err != nil {
			// The provider URL still works, keep it.
			d.logger.Warn("output archive failed",
				"job_id", j.ID,
				"error", err,
			)
		} else {
			outputURL = archived
		}
	}

	if err := j.Succeed(outputURL); err != nil {
		d.logger.Info("discarding late success for finished job", "job_id", j.ID)
		return
	}

	d.logger.Info("generation succeeded",
		"job_id", j.ID,
		"provider", adapter.Provider(),
		"output_url", outputURL,
	)
}

func (d *Driver) fail(j *job.Job, msg string) {
	if err := j.Fail(msg); err != nil {
		// Already terminal, usually canceled. Nothing to record.
		return
	}
	d.logger.Warn("generation failed", "job_id", j.ID, "error", msg)
}
