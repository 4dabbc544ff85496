package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"catalogapi/internal/storage"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrImageRequired  = errors.New("please select an image")
	ErrImagesRequired = errors.New("please select images")
	ErrFilesLimit     = errors.New("files limit reached")
	ErrStorage        = errors.New("object storage failure")
	ErrPersistence    = errors.New("persistence failure")
)

func notFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// reportOrphans records objects (or object references) left inconsistent between the
// bucket and the database. Nothing is rolled back here; the log line and span event
// are what an operator reconciles from.
func reportOrphans(ctx context.Context, log *zap.Logger, reason string, keys []string, cause error) {
	log.Warn("object storage and database out of sync",
		zap.String("reason", reason),
		zap.Strings("keys", keys),
		zap.Error(cause),
	)
	trace.SpanFromContext(ctx).AddEvent("orphaned_objects", trace.WithAttributes(
		attribute.String("reason", reason),
		attribute.StringSlice("object.keys", keys),
	))
}

// discard removes freshly uploaded objects that no committed row references.
// Failure to remove them is reported, not returned.
func discard(ctx context.Context, store storage.Storage, log *zap.Logger, reason string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := store.DeleteBatch(context.WithoutCancel(ctx), keys); err != nil {
		reportOrphans(ctx, log, reason, keys, err)
		return
	}
	log.Info("removed unreferenced uploads", zap.String("reason", reason), zap.Strings("keys", keys))
}
