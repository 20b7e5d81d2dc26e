package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/swapstudio/swapstudio-api/internal/fal"
	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/media"
)

// defaultSwapPrompt drives the edit model when the caller gives no prompt.
// @Element1 refers to the uploaded character image.
const defaultSwapPrompt = "Replace the person in the video with @Element1, maintaining the same movements, poses, and camera angles"

// FalSwapAdapter runs character swaps through the fal.ai edit model.
type FalSwapAdapter struct {
	client     fal.Client
	compressor media.Compressor
	logger     *slog.Logger
}

// NewFalSwapAdapter creates a character-swap adapter.
func NewFalSwapAdapter(client fal.Client, compressor media.Compressor, logger *slog.Logger) *FalSwapAdapter {
	return &FalSwapAdapter{client: client, compressor: compressor, logger: logger}
}

// Provider identifies this adapter's provider.
func (a *FalSwapAdapter) Provider() job.Provider {
	return job.ProviderFal
}

// Policy allows up to 15 minutes of polling; edit jobs are the slowest route.
func (a *FalSwapAdapter) Policy() PollPolicy {
	return PollPolicy{Interval: DefaultPollInterval, MaxAttempts: 180}
}

// Submit compresses the motion video, uploads both media files and queues
// the edit request.
func (a *FalSwapAdapter) Submit(ctx context.Context, req Request, report ProgressFunc) (Task, error) {
	report(5)

	compressed, err := a.compressor.Compress(ctx, req.VideoData)
	if err != nil {
		return Task{}, fmt.Errorf("compressing video: %w", err)
	}
	report(15)

	report(20)
	imageURL, err := a.client.Upload(ctx, req.ImageData, "image/png", "character.png")
	if err != nil {
		return Task{}, fmt.Errorf("uploading character image: %w", err)
	}

	report(30)
	videoURL, err := a.client.Upload(ctx, compressed, "video/mp4", "motion.mp4")
	if err != nil {
		return Task{}, fmt.Errorf("uploading motion video: %w", err)
	}
	report(40)

	submission, err := a.client.SubmitEdit(ctx, fal.EditRequest{
		VideoURL: videoURL,
		Prompt:   swapPrompt(req.Prompt),
		Elements: []fal.Element{
			{
				FrontalImageURL:    imageURL,
				ReferenceImageURLs: []string{imageURL},
			},
		},
		KeepAudio: true,
	})
	if err != nil {
		return Task{}, fmt.Errorf("submitting edit: %w", err)
	}
	report(50)

	return Task{
		ID:        submission.RequestID,
		StatusURL: submission.StatusURL,
		ResultURL: submission.ResultURL,
	}, nil
}

// PollOnce checks the queued request once.
func (a *FalSwapAdapter) PollOnce(ctx context.Context, task *Task, attempt int) (PollResult, error) {
	return pollFalTask(ctx, a.client, task, a.logger)
}

// swapPrompt anchors the caller's prompt to the character element. The edit
// model only swaps when the prompt references @Element1.
func swapPrompt(prompt string) string {
	if prompt == "" {
		return defaultSwapPrompt
	}
	if !strings.Contains(prompt, "@Element1") {
		return "Replace the person in the video with @Element1. " + prompt
	}
	return prompt
}

// pollFalTask maps one fal.ai queue observation to a canonical PollResult.
// Shared by the swap and lip-sync adapters.
func pollFalTask(ctx context.Context, client fal.Client, task *Task, logger *slog.Logger) (PollResult, error) {
	status, err := client.Status(ctx, task.StatusURL)
	if err != nil {
		return PollResult{}, err
	}

	switch status.Status {
	case fal.StatusInQueue, fal.StatusQueued:
		return PollResult{Status: StatusQueued}, nil
	case fal.StatusInProgress, fal.StatusProcessing:
		return PollResult{Status: StatusRunning}, nil
	case fal.StatusCompleted:
		return resolveFalOutput(ctx, client, task, status, logger), nil
	case fal.StatusFailed, fal.StatusError:
		return PollResult{Status: StatusFailed, Error: fal.ExtractError(status.Payload)}, nil
	default:
		// Unknown statuses are treated as still queued.
		return PollResult{Status: StatusQueued}, nil
	}
}

// resolveFalOutput fetches the result payload for a completed request. Some
// runs carry the output inline in the final status body instead, so that is
// checked as a fallback before giving up.
func resolveFalOutput(ctx context.Context, client fal.Client, task *Task, status fal.StatusResult, logger *slog.Logger) PollResult {
	payload, err := client.Result(ctx, task.ResultURL)
	if err != nil {
		logger.Warn("result fetch failed, checking status payload", "task_id", task.ID, "error", err)
	} else if url, ok := fal.ExtractOutput(payload); ok {
		return PollResult{Status: StatusSucceeded, OutputURL: url}
	}

	if url, ok := fal.ExtractOutput(status.Payload); ok {
		return PollResult{Status: StatusSucceeded, OutputURL: url}
	}

	return PollResult{Status: StatusSucceeded}
}

// Compile-time check that FalSwapAdapter implements Adapter.
var _ Adapter = (*FalSwapAdapter)(nil)
