package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swapstudio/swapstudio-api/internal/fal"
	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/media"
)

// FalLipSyncAdapter runs lip-sync generations through the fal.ai
// audio-to-video model.
type FalLipSyncAdapter struct {
	client fal.Client
	logger *slog.Logger
}

// NewFalLipSyncAdapter creates a lip-sync adapter.
func NewFalLipSyncAdapter(client fal.Client, logger *slog.Logger) *FalLipSyncAdapter {
	return &FalLipSyncAdapter{client: client, logger: logger}
}

// Provider identifies this adapter's provider.
func (a *FalLipSyncAdapter) Provider() job.Provider {
	return job.ProviderFal
}

// Policy allows up to 10 minutes of polling.
func (a *FalLipSyncAdapter) Policy() PollPolicy {
	return PollPolicy{Interval: DefaultPollInterval, MaxAttempts: 120}
}

// Submit uploads the video and audio and queues the lip-sync request. The
// audio MIME type is sniffed from its data-URI header.
func (a *FalLipSyncAdapter) Submit(ctx context.Context, req Request, report ProgressFunc) (Task, error) {
	report(5)

	report(10)
	videoURL, err := a.client.Upload(ctx, req.VideoData, "video/mp4", "lipsync_video.mp4")
	if err != nil {
		return Task{}, fmt.Errorf("uploading video: %w", err)
	}

	report(25)
	audioType := media.AudioContentType(req.AudioData)
	audioURL, err := a.client.Upload(ctx, req.AudioData, audioType, "lipsync_audio."+media.Ext(audioType))
	if err != nil {
		return Task{}, fmt.Errorf("uploading audio: %w", err)
	}
	report(40)

	submission, err := a.client.SubmitLipSync(ctx, fal.LipSyncRequest{
		VideoURL: videoURL,
		AudioURL: audioURL,
	})
	if err != nil {
		return Task{}, fmt.Errorf("submitting lip sync: %w", err)
	}
	report(50)

	return Task{
		ID:        submission.RequestID,
		StatusURL: submission.StatusURL,
		ResultURL: submission.ResultURL,
	}, nil
}

// PollOnce checks the queued request once.
func (a *FalLipSyncAdapter) PollOnce(ctx context.Context, task *Task, attempt int) (PollResult, error) {
	return pollFalTask(ctx, a.client, task, a.logger)
}

// Compile-time check that FalLipSyncAdapter implements Adapter.
var _ Adapter = (*FalLipSyncAdapter)(nil)
