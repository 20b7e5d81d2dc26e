package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRegistry_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	j := New(KindSwap, ModeCharacterSwap, ProviderFal)
	if err := r.Create(ctx, j); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := r.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ID != j.ID {
		t.Errorf("expected ID %s, got %s", j.ID, got.ID)
	}
}

func TestMemoryRegistry_GetReturnsLiveAggregate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	j := New(KindSwap, ModeCharacterSwap, ProviderFal)
	if err := r.Create(ctx, j); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// Mutations through the aggregate are visible to subsequent reads;
	// the registry is the single source of truth.
	_ = j.Start()
	j.UpdateProgress(50)

	got, err := r.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.GetStatus() != StatusProcessing {
		t.Errorf("expected processing, got %s", got.GetStatus())
	}
	if got.GetProgress() != 50 {
		t.Errorf("expected progress 50, got %d", got.GetProgress())
	}
}

func TestMemoryRegistry_GetNotFound(t *testing.T) {
	r := NewMemoryRegistry()

	_, err := r.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRegistry_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	j := New(KindSwap, ModeCharacterSwap, ProviderFal)
	if err := r.Create(ctx, j); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := r.Create(ctx, j); !errors.Is(err, ErrDuplicateJobID) {
		t.Errorf("expected ErrDuplicateJobID, got %v", err)
	}
}

func TestMemoryRegistry_List(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	for i := 0; i < 3; i++ {
		if err := r.Create(ctx, New(KindSwap, ModeMotionControl, ProviderKling)); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	jobs, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(jobs) != 3 {
		t.Errorf("expected 3 jobs, got %d", len(jobs))
	}
}
