package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovieGenres(t *testing.T) {
	tests := []struct {
		name  string
		movie Movie
		want  []string
	}{
		{name: "comma separated", movie: Movie{"genres": "Action,Comedy"}, want: []string{"Action", "Comedy"}},
		{name: "whitespace trimmed", movie: Movie{"genres": " Drama , Horror"}, want: []string{"Drama", "Horror"}},
		{name: "empty labels dropped", movie: Movie{"genres": "Action,,"}, want: []string{"Action"}},
		{name: "missing field", movie: Movie{"title": "Heat"}, want: nil},
		{name: "non-string field", movie: Movie{"genres": 42.0}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.movie.Genres())
		})
	}
}

func TestCollectionOwnedBy(t *testing.T) {
	owner := 7
	assert.True(t, Collection{UserID: &owner}.OwnedBy(7))
	assert.False(t, Collection{UserID: &owner}.OwnedBy(8))
	assert.False(t, Collection{}.OwnedBy(7))
}

func TestEventChannel(t *testing.T) {
	assert.Equal(t, "user-events", EventUserDeleted.Channel())
	assert.Equal(t, "collection-events", EventCollectionCreated.Channel())
}
