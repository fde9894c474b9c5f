package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/moviecollections/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackend struct {
	objects map[string]Snapshot
	puts    int
	failPut error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{objects: map[string]Snapshot{}}
}

func (m *memoryBackend) EnsureBucket(ctx context.Context) error { return nil }

func (m *memoryBackend) PutIfAbsent(ctx context.Context, snapshot Snapshot) (bool, error) {
	if m.failPut != nil {
		return false, m.failPut
	}
	if _, ok := m.objects[snapshot.Key]; ok {
		return false, nil
	}
	m.objects[snapshot.Key] = snapshot
	m.puts++
	return true, nil
}

func (m *memoryBackend) Bucket() string { return "snapshots" }

func TestSnapshotKey(t *testing.T) {
	key := SnapshotKey([]byte(`{"results":[]}`))
	assert.Regexp(t, `^catalog/[0-9a-f]{64}\.json$`, key)
	assert.Equal(t, key, SnapshotKey([]byte(`{"results":[]}`)))
	assert.NotEqual(t, key, SnapshotKey([]byte(`{"results":[1]}`)))
}

func TestPutSnapshotIsContentAddressed(t *testing.T) {
	backend := newMemoryBackend()
	s := NewStorage(backend)
	payload := []byte(`{"count":1}`)

	key, uploaded, err := s.PutSnapshot(context.Background(), payload)
	require.NoError(t, err)
	assert.True(t, uploaded)
	stored := backend.objects[key]
	assert.Equal(t, payload, stored.Data)
	assert.Equal(t, "application/json", stored.ContentType)
	assert.Equal(t, "catalog/"+stored.SHA256+".json", key)

	again, uploaded, err := s.PutSnapshot(context.Background(), payload)
	require.NoError(t, err)
	assert.False(t, uploaded)
	assert.Equal(t, key, again)
	assert.Equal(t, 1, backend.puts)
}

func TestPutSnapshotPropagatesBackendError(t *testing.T) {
	backend := newMemoryBackend()
	backend.failPut = errors.New("bucket gone")

	_, uploaded, err := NewStorage(backend).PutSnapshot(context.Background(), []byte(`{}`))
	assert.EqualError(t, err, "bucket gone")
	assert.False(t, uploaded)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = Open(context.Background(), config.StorageConfig{Backend: "ftp"})
	assert.EqualError(t, err, `unknown storage backend "ftp"`)

	_, err = Open(context.Background(), config.StorageConfig{Backend: BackendMinio})
	assert.EqualError(t, err, "minio endpoint is required")
}
