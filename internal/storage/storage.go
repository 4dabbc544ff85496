package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains object storage abstractions for S3-compatible buckets.
// Implementations never touch local disk; uploads stream from the caller's reader.

// ErrUnavailable is returned when a storage call does not finish within its deadline.
var ErrUnavailable = errors.New("storage unavailable")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Implementations are safe for concurrent use.
type Storage interface {
	// Put uploads an object under the given key, overwriting any existing object.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key. A key that does not exist is not an error.
	Delete(ctx context.Context, key string) error
	// DeleteBatch removes all keys in one request. Per-key "no such key" results are
	// dropped; only failures of the operation itself are returned.
	DeleteBatch(ctx context.Context, keys []string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
