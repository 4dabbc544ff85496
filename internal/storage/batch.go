package storage

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Object is an in-memory payload destined for key.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
}

// PutAll uploads objs concurrently and returns their keys in input order once every
// upload has succeeded. If any upload fails, the ones that did succeed are removed
// with a single best-effort DeleteBatch and the first upload error is returned.
func PutAll(ctx context.Context, s Storage, objs []Object, log *zap.Logger) ([]string, error) {
	if len(objs) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		uploaded = make([]string, 0, len(objs))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, o := range objs {
		g.Go(func() error {
			_, err := s.Put(gctx, o.Key, bytes.NewReader(o.Body), PutObjectOptions{
				Size:        int64(len(o.Body)),
				ContentType: o.ContentType,
			})
			if err != nil {
				return fmt.Errorf("put %q: %w", o.Key, err)
			}
			mu.Lock()
			uploaded = append(uploaded, o.Key)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if len(uploaded) > 0 {
			if delErr := s.DeleteBatch(context.WithoutCancel(ctx), uploaded); delErr != nil {
				log.Warn("fan-out cleanup failed, objects orphaned",
					zap.Strings("keys", uploaded),
					zap.Error(delErr),
				)
			}
		}
		return nil, err
	}

	keys := make([]string, len(objs))
	for i, o := range objs {
		keys[i] = o.Key
	}
	return keys, nil
}
