// Package orchestrator routes generation requests to a provider, tracks
// jobs in the registry and runs generations in the background.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/swapstudio/swapstudio-api/internal/generator"
	"github.com/swapstudio/swapstudio-api/internal/job"
)

// Static errors for provider selection.
var (
	// ErrFalNotConfigured is returned when a route requires fal.ai and
	// FAL_API_KEY is not set.
	ErrFalNotConfigured = errors.New("orchestrator: FAL_API_KEY not configured")
	// ErrNoMotionProvider is returned when neither Kling credentials nor a
	// Replicate token are set.
	ErrNoMotionProvider = errors.New("orchestrator: no provider configured for motion control, set KLING_ACCESS_KEY/KLING_SECRET_KEY or REPLICATE_API_TOKEN")
)

// Adapters holds the provider adapters available to the orchestrator. A nil
// field means that route is not configured.
type Adapters struct {
	FalSwap    generator.Adapter
	FalLipSync generator.Adapter
	Kling      generator.Adapter
	Replicate  generator.Adapter
}

// Orchestrator creates jobs and dispatches them to the poll driver.
type Orchestrator struct {
	registry job.Registry
	driver   *generator.Driver
	adapters Adapters
	logger   *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New creates an Orchestrator.
func New(registry job.Registry, driver *generator.Driver, adapters Adapters, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		driver:   driver,
		adapters: adapters,
		logger:   logger,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// StartSwap creates and dispatches a swap job. Character swap requires
// fal.ai; motion control prefers direct Kling and falls back to Replicate.
// Selection failures are synchronous, no job is created. The returned job is
// a snapshot taken before dispatch, so it always shows the initial pending
// state; callers follow progress through GetJob.
func (o *Orchestrator) StartSwap(ctx context.Context, req generator.Request) (*job.Job, error) {
	mode := req.Mode
	if mode == "" {
		mode = job.ModeCharacterSwap
		req.Mode = mode
	}

	var adapter generator.Adapter
	switch mode {
	case job.ModeMotionControl:
		switch {
		case o.adapters.Kling != nil:
			adapter = o.adapters.Kling
		case o.adapters.Replicate != nil:
			adapter = o.adapters.Replicate
		default:
			return nil, ErrNoMotionProvider
		}
	default:
		if o.adapters.FalSwap == nil {
			return nil, ErrFalNotConfigured
		}
		adapter = o.adapters.FalSwap
	}

	j := job.New(job.KindSwap, mode, adapter.Provider())
	if err := o.registry.Create(ctx, j); err != nil {
		return nil, err
	}

	// Snapshot before dispatch: the driver goroutine may flip the job to
	// processing before the caller reads the result.
	created := j.Clone()
	o.dispatch(ctx, j, adapter, req)
	return created, nil
}

// StartLipSync creates and dispatches a lip-sync job via fal.ai. Like
// StartSwap it returns a pre-dispatch snapshot of the job.
func (o *Orchestrator) StartLipSync(ctx context.Context, req generator.Request) (*job.Job, error) {
	if o.adapters.FalLipSync == nil {
		return nil, ErrFalNotConfigured
	}

	req.Mode = job.ModeLipSync
	j := job.New(job.KindLipSync, job.ModeLipSync, job.ProviderFal)
	if err := o.registry.Create(ctx, j); err != nil {
		return nil, err
	}

	created := j.Clone()
	o.dispatch(ctx, j, o.adapters.FalLipSync, req)
	return created, nil
}

// GetJob returns the job with the given id.
func (o *Orchestrator) GetJob(ctx context.Context, id string) (*job.Job, error) {
	return o.registry.Get(ctx, id)
}

// CancelJob marks a job canceled and aborts its driver context. Canceling a
// job that already reached a terminal state is a no-op; only an unknown id
// is an error.
func (o *Orchestrator) CancelJob(ctx context.Context, id string) error {
	j, err := o.registry.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := j.Cancel(); err != nil {
		if errors.Is(err, job.ErrInvalidTransition) {
			return nil
		}
		return err
	}

	o.mu.Lock()
	cancel := o.cancels[id]
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	o.logger.Info("job canceled", "job_id", id)
	return nil
}

// dispatch runs the generation in its own goroutine. The run context is
// detached from the HTTP request but keeps its values, so a returning
// request does not kill the generation.
func (o *Orchestrator) dispatch(ctx context.Context, j *job.Job, adapter generator.Adapter, req generator.Request) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	o.mu.Lock()
	o.cancels[j.ID] = cancel
	o.mu.Unlock()

	o.logger.Info("job dispatched",
		"job_id", j.ID,
		"kind", j.Kind,
		"mode", j.Mode,
		"provider", j.Provider,
	)

	go func() {
		defer func() {
			cancel()
			o.mu.Lock()
			delete(o.cancels, j.ID)
			o.mu.Unlock()
		}()
		o.driver.Run(runCtx, j, adapter, req)
	}()
}
