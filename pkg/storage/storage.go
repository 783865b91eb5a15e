// Package storage is the filesystem abstraction used for product images and
// generated invoices.
//
// Two drivers are available:
//   - "local"  local filesystem (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	mgr, _ := storage.New(ctx, storage.FromConfig())
//	disk := mgr.Default()
//	disk.PutStream(ctx, "data/invoice/invoice-42.pdf", r)
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get/GetStream when nothing is stored at path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface. Every driver must implement this.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// PutStream writes from r to path. It consumes r until EOF or error.
	PutStream(ctx context.Context, path string, r io.Reader) error

	Get(ctx context.Context, path string) ([]byte, error)

	// GetStream returns a ReadCloser for the file. Caller must close it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	Exists(ctx context.Context, path string) bool

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
