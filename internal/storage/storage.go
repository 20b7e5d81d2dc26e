// Package storage provides scratch-file storage for media processing and an
// optional S3 archive for finished provider outputs.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for scratch files and output archiving.
// The compressor uses scratch files while transcoding; the orchestrator
// archives succeeded outputs when an archive backend is configured.
type Storage interface {
	// SaveTemp saves data to a scratch file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// CleanupTemp removes the specified scratch files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// Archive stores data under the given key and returns a public URL.
	// Returns ErrArchiveNotConfigured if no archive backend is configured.
	Archive(ctx context.Context, key string, data io.Reader) (url string, err error)
}
