package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalMovies(t *testing.T) {
	id := uuid.New()

	movies, err := unmarshalMovies(id, []byte(`[{"title":"One","genres":"Action"}]`))
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "One", movies[0]["title"])

	movies, err = unmarshalMovies(id, nil)
	assert.NoError(t, err)
	assert.Nil(t, movies)

	_, err = unmarshalMovies(id, []byte(`{"title":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), id.String())
}

type fakeRow struct{ movies []byte }

func (r fakeRow) Scan(dest ...any) error {
	*dest[4].(*[]byte) = r.movies
	return nil
}

func TestScanCollectionRejectsCorruptMovies(t *testing.T) {
	_, err := scanCollection(fakeRow{movies: []byte(`not json`)})
	assert.ErrorContains(t, err, "decode movies")

	collection, err := scanCollection(fakeRow{movies: []byte(`[]`)})
	require.NoError(t, err)
	assert.Empty(t, collection.Movies)
	assert.Nil(t, collection.UserID)
}
