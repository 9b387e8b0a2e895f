package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/cubetrack/wcifhistoryapi/internal/apperror"
	"github.com/cubetrack/wcifhistoryapi/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const clientSetupTimeout = 10 * time.Second

// MinioStore is a BlobStore over any S3-compatible endpoint (Cloudflare
// R2, MinIO, AWS). The client is constructed once at startup and shared
// process-wide.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to the configured S3 endpoint and ensures the
// bucket exists.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL == "true",
	})
	if err != nil {
		return nil, apperror.Storage("failed to create s3 client", err)
	}

	store := &MinioStore{client: client, bucket: cfg.S3Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), clientSetupTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, apperror.Storage("failed to check bucket", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperror.Storage("failed to create bucket", err)
		}
	}

	return store, nil
}

// Put writes payload bytes under key
func (s *MinioStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return apperror.Storage("failed to upload blob "+key, err)
	}
	return nil
}

// Get returns the payload bytes stored under key
func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperror.Storage("failed to get blob "+key, err)
	}
	defer object.Close()

	payload, err := io.ReadAll(object)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, apperror.NotFound("blob", key)
		}
		return nil, apperror.Storage("failed to read blob "+key, err)
	}
	return payload, nil
}

// Delete removes the payload under key. S3 treats removal of an absent
// key as success, which matches the sweep's idempotency expectation.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return apperror.Storage("failed to delete blob "+key, err)
	}
	return nil
}
