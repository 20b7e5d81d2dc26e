package storage

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLocalStorage_SaveTemp(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	path, err := store.SaveTemp(ctx, "input", strings.NewReader("video-bytes"))
	if err != nil {
		t.Fatalf("SaveTemp() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalStorage_SaveTemp_CancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.SaveTemp(ctx, "input", strings.NewReader("x")); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestLocalStorage_CleanupTemp(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	path, err := store.SaveTemp(ctx, "input", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("SaveTemp() failed: %v", err)
	}

	if err := store.CleanupTemp(ctx, []string{path, "/nonexistent/file"}); err != nil {
		t.Errorf("CleanupTemp() failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected temp file to be removed")
	}
}

func TestLocalStorage_ArchiveNotConfigured(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	_, err = store.Archive(context.Background(), "outputs/x.mp4", strings.NewReader("x"))
	if !errors.Is(err, ErrArchiveNotConfigured) {
		t.Errorf("expected ErrArchiveNotConfigured, got %v", err)
	}
}
