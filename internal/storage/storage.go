// Package storage puts photo bytes somewhere durable and hands back an
// opaque {url, key} pair. The rest of the system never cares where the
// bytes actually live.
package storage

import (
	"context"
	"io"
)

// UploadResult is what callers persist alongside the photo row.
type UploadResult struct {
	// URL is where the object can be fetched from.
	URL string
	// Key identifies the object for deletion and presigning.
	Key string
}

// ObjectStore stores and serves photo objects.
type ObjectStore interface {
	// Put streams body into the store under a fresh key.
	Put(ctx context.Context, contentType string, body io.Reader) (UploadResult, error)

	// PresignGet returns a short-lived signed URL for a stored object.
	PresignGet(ctx context.Context, key string) (string, error)

	// Delete removes a stored object.
	Delete(ctx context.Context, key string) error
}
