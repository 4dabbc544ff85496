package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

type timeoutStorage struct {
	next    Storage
	timeout time.Duration
}

// WithTimeout bounds every call on s by d. Calls that run out of time fail with
// ErrUnavailable instead of hanging the request. A non-positive d returns s unchanged.
func WithTimeout(s Storage, d time.Duration) Storage {
	if d <= 0 {
		return s
	}
	return &timeoutStorage{next: s, timeout: d}
}

func (t *timeoutStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	info, err := t.next.Put(ctx, key, r, opt)
	return info, t.classify(ctx, "put", err)
}

func (t *timeoutStorage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.classify(ctx, "delete", t.next.Delete(ctx, key))
}

func (t *timeoutStorage) DeleteBatch(ctx context.Context, keys []string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.classify(ctx, "delete batch", t.next.DeleteBatch(ctx, keys))
}

func (t *timeoutStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	u, err := t.next.PresignGet(ctx, key, expiry)
	return u, t.classify(ctx, "presign", err)
}

func (t *timeoutStorage) classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s exceeded %s: %v", ErrUnavailable, op, t.timeout, err)
	}
	return err
}
