package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/kling"
	"github.com/swapstudio/swapstudio-api/internal/media"
)

// tokenRefreshEvery forces a new API token on long polls; Kling tokens
// expire after 30 minutes.
const tokenRefreshEvery = 60

// KlingAdapter runs motion-control generations through the direct Kling API.
type KlingAdapter struct {
	client kling.Client
	logger *slog.Logger
}

// NewKlingAdapter creates a motion-control adapter for the direct Kling API.
func NewKlingAdapter(client kling.Client, logger *slog.Logger) *KlingAdapter {
	return &KlingAdapter{client: client, logger: logger}
}

// Provider identifies this adapter's provider.
func (a *KlingAdapter) Provider() job.Provider {
	return job.ProviderKling
}

// Policy allows up to 10 minutes of polling.
func (a *KlingAdapter) Policy() PollPolicy {
	return PollPolicy{Interval: DefaultPollInterval, MaxAttempts: 120}
}

// Submit creates a motion-control task. Kling takes media inline as base64,
// so no upload step is needed.
func (a *KlingAdapter) Submit(ctx context.Context, req Request, report ProgressFunc) (Task, error) {
	report(10)

	prompt := req.Prompt
	if prompt == "" {
		prompt = "person performing natural movement"
	}

	report(20)
	report(30)
	taskID, err := a.client.CreateTask(ctx, kling.CreateTaskRequest{
		ImageB64: media.StripDataURI(req.ImageData),
		VideoB64: media.StripDataURI(req.VideoData),
		Prompt:   prompt,
		Mode:     req.Quality,
	})
	if err != nil {
		return Task{}, fmt.Errorf("creating kling task: %w", err)
	}
	report(40)

	return Task{ID: taskID}, nil
}

// PollOnce checks the task once, refreshing the API token on long polls.
func (a *KlingAdapter) PollOnce(ctx context.Context, task *Task, attempt int) (PollResult, error) {
	if attempt%tokenRefreshEvery == 0 {
		a.client.RefreshToken()
	}

	result, err := a.client.QueryTask(ctx, task.ID)
	if err != nil {
		return PollResult{}, err
	}

	switch {
	case kling.IsSucceeded(result.Status):
		return PollResult{Status: StatusSucceeded, OutputURL: kling.ExtractOutput(result.Payload)}, nil
	case kling.IsFailed(result.Status):
		return PollResult{Status: StatusFailed, Error: kling.ExtractError(result.Payload)}, nil
	default:
		return PollResult{Status: StatusRunning}, nil
	}
}

// Compile-time check that KlingAdapter implements Adapter.
var _ Adapter = (*KlingAdapter)(nil)
