package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"catalogapi/internal/config"
)

// cosStorage implements Storage on Tencent Cloud Object Storage.
type cosStorage struct {
	client    *cos.Client
	secretID  string
	secretKey string
}

// NewCOS creates a COS client for the bucket at
// https://<bucket>-<appid>.cos.<region>.myqcloud.com and checks that it is reachable.
func NewCOS(cfg config.StorageConfig) (Storage, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}
	if cfg.Bucket == "" || cfg.AppID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("cos bucket, app id and region are required")
	}

	raw := fmt.Sprintf("https://%s-%s.cos.%s.myqcloud.com", cfg.Bucket, cfg.AppID, cfg.Region)
	bucketURL, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse cos bucket url %q: %w", raw, err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Bucket.Head(ctx); err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}

	return &cosStorage{client: client, secretID: cfg.AccessKey, secretKey: cfg.SecretKey}, nil
}

func (s *cosStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	headers := &cos.ObjectPutHeaderOptions{ContentType: opt.ContentType}
	if opt.Size >= 0 {
		headers.ContentLength = opt.Size
	}
	resp, err := s.client.Object.Put(ctx, key, r, &cos.ObjectPutOptions{ObjectPutHeaderOptions: headers})
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         opt.Size,
		ETag:         resp.Header.Get("ETag"),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (s *cosStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.Object.Delete(ctx, key)
	if err != nil && cos.IsNotFoundError(err) {
		return nil
	}
	return err
}

// DeleteBatch uses COS quiet mode, where the response lists failures only.
func (s *cosStorage) DeleteBatch(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]cos.Object, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, cos.Object{Key: k})
	}
	res, _, err := s.client.Object.DeleteMulti(ctx, &cos.ObjectDeleteMultiOptions{
		Quiet:   true,
		Objects: objects,
	})
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		if e.Code == noSuchKey {
			continue
		}
		return fmt.Errorf("remove %q: %s: %s", e.Key, e.Code, e.Message)
	}
	return nil
}

func (s *cosStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.Object.GetPresignedURL(ctx, http.MethodGet, key, s.secretID, s.secretKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
