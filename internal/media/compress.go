package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/swapstudio/swapstudio-api/internal/storage"
)

// DefaultMinCompressBytes is the decoded size below which compression is
// skipped entirely.
const DefaultMinCompressBytes = 5 * 1024 * 1024

// Compressor shrinks a base64-encoded video before upload.
// Implementations must never fail the job because of a transcode problem:
// on tool failure or absence the original bytes are returned.
type Compressor interface {
	// Compress takes a base64 or data-URI video and returns a data-URI video.
	// The returned error is only non-nil for undecodable input.
	Compress(ctx context.Context, videoData string) (string, error)
}

// FFmpegCompressor implements Compressor using the ffmpeg CLI.
type FFmpegCompressor struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	// minSizeBytes is the decoded-size threshold below which compression
	// is skipped.
	minSizeBytes int
	store        storage.Storage
	logger       *slog.Logger
}

// CompressorOption configures an FFmpegCompressor.
type CompressorOption func(*FFmpegCompressor)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(path string) CompressorOption {
	return func(c *FFmpegCompressor) {
		if path != "" {
			c.ffmpegPath = path
		}
	}
}

// WithMinSizeBytes sets the skip threshold for already-small videos.
func WithMinSizeBytes(n int) CompressorOption {
	return func(c *FFmpegCompressor) {
		if n > 0 {
			c.minSizeBytes = n
		}
	}
}

// NewFFmpegCompressor creates a compressor that uses store for scratch files.
func NewFFmpegCompressor(store storage.Storage, logger *slog.Logger, opts ...CompressorOption) *FFmpegCompressor {
	if logger == nil {
		logger = slog.Default()
	}
	c := &FFmpegCompressor{
		ffmpegPath:   "ffmpeg",
		minSizeBytes: DefaultMinCompressBytes,
		store:        store,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compress transcodes the video with libx264 to reduce file size.
// Inputs already below the size threshold are returned as-is, re-wrapped as a
// data URI. Transcode failure or a missing ffmpeg binary falls back to the
// original bytes rather than failing the job.
func (c *FFmpegCompressor) Compress(ctx context.Context, videoData string) (string, error) {
	b64 := StripDataURI(videoData)

	videoBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode video base64: %w", err)
	}

	if len(videoBytes) < c.minSizeBytes {
		c.logger.Debug("video already small, skipping compression",
			slog.Int("size_bytes", len(videoBytes)),
		)
		return DataURI("video/mp4", b64), nil
	}

	inputPath, err := c.store.SaveTemp(ctx, "compress_input", bytes.NewReader(videoBytes))
	if err != nil {
		return "", fmt.Errorf("save scratch input: %w", err)
	}
	outputPath := inputPath + ".out.mp4"
	defer func() {
		_ = c.store.CleanupTemp(ctx, []string{inputPath, outputPath})
	}()

	// crf 26 / preset fast trades quality for size; the scale filter keeps a
	// minimum 720px width, which fal.ai requires.
	args := []string{
		"-y", "-i", inputPath,
		"-c:v", "libx264", "-crf", "26", "-preset", "fast",
		"-vf", "scale='max(720,iw)':-2",
		"-c:a", "aac", "-b:a", "128k",
		outputPath,
	}

	// #nosec G204 - ffmpegPath is set by the application, not user input
	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		c.logger.Warn("ffmpeg compression failed, using original video",
			slog.String("error", err.Error()),
			slog.String("stderr", stderr.String()),
		)
		return DataURI("video/mp4", b64), nil
	}

	compressed, err := os.ReadFile(outputPath) // #nosec G304 - outputPath is constructed internally
	if err != nil {
		c.logger.Warn("read compressed video failed, using original video",
			slog.String("error", err.Error()),
		)
		return DataURI("video/mp4", b64), nil
	}

	c.logger.Info("video compressed",
		slog.Int("original_bytes", len(videoBytes)),
		slog.Int("compressed_bytes", len(compressed)),
	)

	return DataURI("video/mp4", base64.StdEncoding.EncodeToString(compressed)), nil
}

// Compile-time check that FFmpegCompressor implements Compressor.
var _ Compressor = (*FFmpegCompressor)(nil)
