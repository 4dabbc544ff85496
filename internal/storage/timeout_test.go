package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()
	slow := &stubStorage{
		put:         func(ctx context.Context, _ string) error { return blockUntilDone(ctx) },
		delete:      func(ctx context.Context, _ string) error { return blockUntilDone(ctx) },
		deleteBatch: func(ctx context.Context, _ []string) error { return blockUntilDone(ctx) },
		presign: func(ctx context.Context, _ string) (string, error) {
			return "", blockUntilDone(ctx)
		},
	}
	s := WithTimeout(slow, 20*time.Millisecond)

	t.Run("put", func(t *testing.T) {
		_, err := s.Put(ctx, "k", strings.NewReader("x"), PutObjectOptions{Size: 1})
		assert.ErrorIs(t, err, ErrUnavailable)
	})
	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, s.Delete(ctx, "k"), ErrUnavailable)
	})
	t.Run("delete batch", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteBatch(ctx, []string{"a", "b"}), ErrUnavailable)
	})
	t.Run("presign", func(t *testing.T) {
		_, err := s.PresignGet(ctx, "k", time.Minute)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestWithTimeout_PassesThrough(t *testing.T) {
	boom := errors.New("access denied")
	s := WithTimeout(&stubStorage{
		delete: func(context.Context, string) error { return boom },
	}, time.Second)

	err := s.Delete(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnavailable)

	u, err := s.PresignGet(context.Background(), "k", time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, "https://bucket.example/k", u)
}

func TestWithTimeout_Disabled(t *testing.T) {
	inner := &stubStorage{}
	assert.Same(t, Storage(inner), WithTimeout(inner, 0))
}
