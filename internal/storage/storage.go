package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"

	"github.com/moviecollections/apiserver/config"
)

const (
	BackendNone  = ""
	BackendMinio = "minio"
	BackendGCS   = "gcs"

	snapshotPrefix      = "catalog"
	snapshotContentType = "application/json"

	// metadataChecksum names the object metadata entry holding the
	// payload's hex SHA-256.
	metadataChecksum = "sha256"

	// snapshotCacheControl marks snapshots as never changing.
	snapshotCacheControl = "public, max-age=31536000, immutable"
)

// Snapshot is an immutable object written once under its content key.
type Snapshot struct {
	Key         string
	Data        []byte
	ContentType string
	SHA256      string
}

// ObjectStorage defines the write-once operations the snapshot archive
// needs from a backend.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	// PutIfAbsent stores the snapshot unless its key already exists and
	// reports whether it wrote anything.
	PutIfAbsent(ctx context.Context, snapshot Snapshot) (bool, error)
	Bucket() string
}

// Storage archives catalog payloads in a content-addressed layout on top
// of an ObjectStorage backend.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Open builds the configured backend and makes sure its bucket exists.
// It returns nil when no backend is configured.
func Open(ctx context.Context, cfg config.StorageConfig) (*Storage, error) {
	var (
		backend ObjectStorage
		err     error
	)
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendMinio:
		backend, err = NewMinioClient(cfg.Minio)
	case BackendGCS:
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewStorage(backend), nil
}

// SnapshotKey returns the object key for a catalog payload.
func SnapshotKey(data []byte) string {
	return snapshotKey(digest(data))
}

func snapshotKey(sum string) string {
	return path.Join(snapshotPrefix, sum+".json")
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PutSnapshot stores the payload under its SHA-256 key unless an identical
// snapshot is already present. It returns the key and whether it uploaded.
func (s *Storage) PutSnapshot(ctx context.Context, data []byte) (string, bool, error) {
	sum := digest(data)
	snapshot := Snapshot{
		Key:         snapshotKey(sum),
		Data:        data,
		ContentType: snapshotContentType,
		SHA256:      sum,
	}
	uploaded, err := s.backend.PutIfAbsent(ctx, snapshot)
	if err != nil {
		return snapshot.Key, false, err
	}
	return snapshot.Key, uploaded, nil
}

// Bucket returns the configured bucket name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
