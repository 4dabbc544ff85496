package storage

import (
	"context"
	"io"
	"time"
)

// stubStorage lets tests script each call; unset funcs succeed.
type stubStorage struct {
	put         func(ctx context.Context, key string) error
	delete      func(ctx context.Context, key string) error
	deleteBatch func(ctx context.Context, keys []string) error
	presign     func(ctx context.Context, key string) (string, error)
}

func (s *stubStorage) Put(ctx context.Context, key string, _ io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if s.put != nil {
		if err := s.put(ctx, key); err != nil {
			return ObjectInfo{}, err
		}
	}
	return ObjectInfo{Key: key, Size: opt.Size}, nil
}

func (s *stubStorage) Delete(ctx context.Context, key string) error {
	if s.delete != nil {
		return s.delete(ctx, key)
	}
	return nil
}

func (s *stubStorage) DeleteBatch(ctx context.Context, keys []string) error {
	if s.deleteBatch != nil {
		return s.deleteBatch(ctx, keys)
	}
	return nil
}

func (s *stubStorage) PresignGet(ctx context.Context, key string, _ time.Duration) (string, error) {
	if s.presign != nil {
		return s.presign(ctx, key)
	}
	return "https://bucket.example/" + key, nil
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
