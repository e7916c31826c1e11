// Package storage defines the object-store contract used by the files
// client. Implementations live in subpackages (s3, minio, gcs, memory) and
// are selected by the provider package.
package storage

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Method selects what a presigned URL allows.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// Object describes a stored blob.
type Object struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// Store is a flat key/blob store.
//
// Implementations must be safe for concurrent use and must report a missing
// object as an error matching common.ErrorNotFound.
type Store interface {
	// Put writes r under key. size is -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)

	// Get opens the blob at key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, *Object, error)

	// Delete removes the blob at key.
	Delete(ctx context.Context, key string) error

	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// PresignURL returns a URL granting method on key until expiry elapses.
	PresignURL(ctx context.Context, method Method, key string, expiry time.Duration) (string, error)
}
