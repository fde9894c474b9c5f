package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection is a named list of movies saved by a user.
type Collection struct {
	// UUID identifies the collection. It is assigned once on creation
	// and never reused.
	UUID uuid.UUID `json:"uuid" db:"uuid"`

	// UserID references the owning user. It is nil only between creation
	// and the claim step that attaches the requester.
	UserID *int `json:"user_id,omitempty" db:"user_id"`

	// Title is the human-readable name of the collection.
	Title string `json:"title" db:"title"`

	// Description is a free-form summary of the collection.
	Description string `json:"description" db:"description"`

	// Movies is the ordered list of movie records in the collection.
	Movies []Movie `json:"movies" db:"movies"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether the collection belongs to the given user.
func (c Collection) OwnedBy(userID int) bool {
	return c.UserID != nil && *c.UserID == userID
}

// Movie is an arbitrary movie record as returned by the catalog. Only the
// "genres" field is interpreted.
type Movie map[string]any

// Genres returns the movie's genre labels. The catalog encodes them as a
// single comma-separated string.
func (m Movie) Genres() []string {
	raw, _ := m["genres"].(string)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	genres := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			genres = append(genres, part)
		}
	}
	return genres
}
