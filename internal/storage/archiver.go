package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrOutputURLRequired is returned when the output URL is empty.
var ErrOutputURLRequired = errors.New("archiver: output URL is required")

// OutputArchiver downloads a succeeded job's output from the provider and
// re-uploads it to the archive backend, returning the archive URL.
// Provider output URLs are typically short-lived; the archive copy is not.
type OutputArchiver struct {
	store      Storage
	httpClient *http.Client
}

// NewOutputArchiver creates an OutputArchiver backed by the given storage.
func NewOutputArchiver(store Storage, httpClient *http.Client) *OutputArchiver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &OutputArchiver{store: store, httpClient: httpClient}
}

// Archive fetches outputURL and stores it under outputs/<jobID>.mp4.
func (a *OutputArchiver) Archive(ctx context.Context, jobID, outputURL string) (string, error) {
	if outputURL == "" {
		return "", ErrOutputURLRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, outputURL, nil)
	if err != nil {
		return "", fmt.Errorf("archiver: create download request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("archiver: download output: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("archiver: download failed with status %d", resp.StatusCode)
	}

	key := fmt.Sprintf("outputs/%s.mp4", jobID)
	url, err := a.store.Archive(ctx, key, resp.Body)
	if err != nil {
		return "", fmt.Errorf("archiver: store output: %w", err)
	}

	return url, nil
}
