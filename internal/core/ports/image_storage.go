package ports

import (
	"context"
	"io"
)

// ImageStorage stores uploaded part images and serves them back by reference.
type ImageStorage interface {
	// Store persists the content and returns a public reference such as "/img/<name>".
	// Failures wrap domain.ErrStorage.
	Store(ctx context.Context, originalName string, content io.Reader) (string, error)
	// Open returns a reader for a stored image name, or domain.ErrImageNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes a stored image. A missing image yields domain.ErrImageNotFound.
	Delete(ctx context.Context, name string) error
}
