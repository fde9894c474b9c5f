package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/moviecollections/apiserver/internal/catalog"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/metrics"
)

// CatalogFetcher retrieves the raw movie catalog.
type CatalogFetcher interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
}

// SnapshotArchive keeps a copy of each distinct catalog payload.
type SnapshotArchive interface {
	PutSnapshot(ctx context.Context, data []byte) (string, bool, error)
}

// CatalogService serves the external catalog and archives what it fetched.
type CatalogService struct {
	fetcher CatalogFetcher
	archive SnapshotArchive
}

// NewCatalogService builds the service. archive may be nil.
func NewCatalogService(fetcher CatalogFetcher, archive SnapshotArchive) *CatalogService {
	return &CatalogService{fetcher: fetcher, archive: archive}
}

func (s *CatalogService) Fetch(ctx context.Context) (json.RawMessage, error) {
	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrMissingCredentials) {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if s.archive != nil {
		key, uploaded, err := s.archive.PutSnapshot(ctx, body)
		metrics.RecordSnapshot(err)
		if err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("archive catalog snapshot")
		} else if uploaded {
			logging.Info().Str("key", key).Int("bytes", len(body)).Msg("archived catalog snapshot")
		}
	}
	return body, nil
}
