package storage

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type instrumentedStorage struct {
	next     Storage
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// WithMetrics records a counter and a latency histogram per storage operation on reg.
func WithMetrics(s Storage, reg prometheus.Registerer) (Storage, error) {
	m := &instrumentedStorage{
		next: s,
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "object_storage_operations_total",
				Help: "Total number of object storage operations by result.",
			},
			[]string{"operation", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "object_storage_operation_duration_seconds",
				Help:    "Latency of object storage operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	if err := reg.Register(m.ops); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *instrumentedStorage) observe(op string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ops.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *instrumentedStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	start := time.Now()
	info, err := m.next.Put(ctx, key, r, opt)
	m.observe("put", start, err)
	return info, err
}

func (m *instrumentedStorage) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	m.observe("delete", start, err)
	return err
}

func (m *instrumentedStorage) DeleteBatch(ctx context.Context, keys []string) error {
	start := time.Now()
	err := m.next.DeleteBatch(ctx, keys)
	m.observe("delete_batch", start, err)
	return err
}

func (m *instrumentedStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	start := time.Now()
	u, err := m.next.PresignGet(ctx, key, expiry)
	m.observe("presign", start, err)
	return u, err
}
