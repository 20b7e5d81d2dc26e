package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"testing"

	"github.com/swapstudio/swapstudio-api/internal/storage"
)

func newTestCompressor(t *testing.T, opts ...CompressorOption) *FFmpegCompressor {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewFFmpegCompressor(store, logger, opts...)
}

func TestCompress_SkipsSmallVideo(t *testing.T) {
	c := newTestCompressor(t)

	small := base64.StdEncoding.EncodeToString([]byte("tiny video"))
	got, err := c.Compress(context.Background(), small)
	if err != nil {
		t.Fatalf("Compress() failed: %v", err)
	}
	if got != DataURI("video/mp4", small) {
		t.Errorf("expected original re-wrapped as data URI, got %q", got)
	}
}

func TestCompress_StripsDataURIPrefix(t *testing.T) {
	c := newTestCompressor(t)

	small := base64.StdEncoding.EncodeToString([]byte("tiny video"))
	got, err := c.Compress(context.Background(), "data:video/mp4;base64,"+small)
	if err != nil {
		t.Fatalf("Compress() failed: %v", err)
	}
	if got != DataURI("video/mp4", small) {
		t.Errorf("expected stripped payload re-wrapped, got %q", got)
	}
}

func TestCompress_InvalidBase64(t *testing.T) {
	c := newTestCompressor(t)

	if _, err := c.Compress(context.Background(), "not-valid-base64!!!"); err == nil {
		t.Error("expected error for undecodable input")
	}
}

func TestCompress_ToolMissingFallsBack(t *testing.T) {
	// A threshold of 1 byte forces the transcode path; an unresolvable binary
	// simulates ffmpeg not being installed.
	c := newTestCompressor(t,
		WithFFmpegPath("/nonexistent/ffmpeg-binary"),
		WithMinSizeBytes(1),
	)

	payload := base64.StdEncoding.EncodeToString([]byte("big enough video"))
	got, err := c.Compress(context.Background(), payload)
	if err != nil {
		t.Fatalf("Compress() must not fail when ffmpeg is missing: %v", err)
	}
	if got != DataURI("video/mp4", payload) {
		t.Errorf("expected original bytes on fallback, got %q", got)
	}
}

func TestCompress_ToolFailureFallsBack(t *testing.T) {
	// "false" exits non-zero without producing output.
	c := newTestCompressor(t,
		WithFFmpegPath("false"),
		WithMinSizeBytes(1),
	)

	payload := base64.StdEncoding.EncodeToString([]byte("big enough video"))
	got, err := c.Compress(context.Background(), payload)
	if err != nil {
		t.Fatalf("Compress() must not fail on transcode error: %v", err)
	}
	if got != DataURI("video/mp4", payload) {
		t.Errorf("expected original bytes on fallback, got %q", got)
	}
}
