package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/moviecollections/apiserver/config"
)

// MinioClient stores catalog snapshots in a MinIO (or any S3-compatible) bucket.
type MinioClient struct {
	client *minio.Client
	bucket string
}

// NewMinioClient constructs a MinIO client from config.
func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("minio endpoint is required")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" || strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("minio access key and secret key are required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &MinioClient{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the snapshot bucket on first use.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
}

// PutIfAbsent skips the upload when the key is already stored. Keys are
// content hashes, so an existing object holds the same payload.
func (m *MinioClient) PutIfAbsent(ctx context.Context, snapshot Snapshot) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, snapshot.Key, minio.StatObjectOptions{})
	if err == nil {
		return false, nil
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return false, err
	}

	_, err = m.client.PutObject(ctx, m.bucket, snapshot.Key, bytes.NewReader(snapshot.Data), int64(len(snapshot.Data)), minio.PutObjectOptions{
		ContentType:  snapshot.ContentType,
		CacheControl: snapshotCacheControl,
		UserMetadata: map[string]string{metadataChecksum: snapshot.SHA256},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *MinioClient) Bucket() string {
	return m.bucket
}
