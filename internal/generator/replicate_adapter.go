package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/media"
	"github.com/swapstudio/swapstudio-api/internal/replicate"
)

// ReplicateAdapter runs motion-control generations through Replicate's
// hosted Kling model. It is the fallback route when direct Kling
// credentials are not configured.
type ReplicateAdapter struct {
	client     replicate.Client
	compressor media.Compressor
	logger     *slog.Logger
}

// NewReplicateAdapter creates a motion-control adapter for Replicate.
func NewReplicateAdapter(client replicate.Client, compressor media.Compressor, logger *slog.Logger) *ReplicateAdapter {
	return &ReplicateAdapter{client: client, compressor: compressor, logger: logger}
}

// Provider identifies this adapter's provider.
func (a *ReplicateAdapter) Provider() job.Provider {
	return job.ProviderReplicate
}

// Policy allows up to 10 minutes of polling.
func (a *ReplicateAdapter) Policy() PollPolicy {
	return PollPolicy{Interval: DefaultPollInterval, MaxAttempts: 120}
}

// Submit compresses the motion video, uploads both media files and creates
// the prediction. Large inline payloads fail on Replicate, so media go up
// as files first and fall back to data URIs only when the upload fails.
func (a *ReplicateAdapter) Submit(ctx context.Context, req Request, report ProgressFunc) (Task, error) {
	report(5)

	compressed, err := a.compressor.Compress(ctx, req.VideoData)
	if err != nil {
		return Task{}, fmt.Errorf("compressing video: %w", err)
	}
	report(15)

	imageBytes, err := base64.StdEncoding.DecodeString(media.StripDataURI(req.ImageData))
	if err != nil {
		return Task{}, fmt.Errorf("decoding image: %w", err)
	}
	videoBytes, err := base64.StdEncoding.DecodeString(media.StripDataURI(compressed))
	if err != nil {
		return Task{}, fmt.Errorf("decoding video: %w", err)
	}

	report(20)
	imageURL := a.client.UploadMedia(ctx, imageBytes, "character.png", "image/png")

	report(30)
	videoURL := a.client.UploadMedia(ctx, videoBytes, "motion.mp4", "video/mp4")
	report(35)

	prompt := req.Prompt
	if prompt == "" {
		prompt = "person performing the motion naturally"
	}

	id, err := a.client.CreatePrediction(ctx, replicate.PredictionInput{
		Image:                imageURL,
		Video:                videoURL,
		Prompt:               prompt,
		Mode:                 req.Quality,
		CharacterOrientation: "video",
		KeepOriginalSound:    true,
	})
	if err != nil {
		return Task{}, fmt.Errorf("creating prediction: %w", err)
	}
	report(40)

	return Task{ID: id}, nil
}

// PollOnce checks the prediction once.
func (a *ReplicateAdapter) PollOnce(ctx context.Context, task *Task, attempt int) (PollResult, error) {
	prediction, err := a.client.GetPrediction(ctx, task.ID)
	if err != nil {
		return PollResult{}, err
	}

	switch prediction.Status {
	case replicate.StatusSucceeded:
		return PollResult{Status: StatusSucceeded, OutputURL: replicate.OutputURL(prediction.Output)}, nil
	case replicate.StatusFailed:
		msg := replicate.ErrorMessage(prediction.Error)
		if msg == "" {
			msg = "prediction failed"
		}
		return PollResult{Status: StatusFailed, Error: msg}, nil
	case replicate.StatusCanceled:
		return PollResult{Status: StatusFailed, Error: "prediction canceled by provider"}, nil
	case replicate.StatusProcessing:
		return PollResult{Status: StatusRunning}, nil
	default:
		return PollResult{Status: StatusQueued}, nil
	}
}

// Compile-time check that ReplicateAdapter implements Adapter.
var _ Adapter = (*ReplicateAdapter)(nil)
