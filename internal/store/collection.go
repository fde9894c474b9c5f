package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moviecollections/apiserver/types"
)

// CollectionRepository handles persistence for movie collections.
type CollectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

const collectionColumns = `uuid, user_id, title, description, movies, created_at, updated_at`

func scanCollection(row interface{ Scan(...any) error }) (types.Collection, error) {
	var (
		collection types.Collection
		userID     sql.NullInt64
		moviesJSON []byte
	)
	if err := row.Scan(
		&collection.UUID,
		&userID,
		&collection.Title,
		&collection.Description,
		&moviesJSON,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	); err != nil {
		return types.Collection{}, err
	}
	if userID.Valid {
		id := int(userID.Int64)
		collection.UserID = &id
	}
	movies, err := unmarshalMovies(collection.UUID, moviesJSON)
	if err != nil {
		return types.Collection{}, err
	}
	collection.Movies = movies
	return collection, nil
}

func unmarshalMovies(id uuid.UUID, data []byte) ([]types.Movie, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var movies []types.Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, fmt.Errorf("decode movies for %s: %w", id, err)
	}
	return movies, nil
}

func (r *CollectionRepository) Get(ctx context.Context, id uuid.UUID) (types.Collection, error) {
	collection, err := scanCollection(r.db.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM collections WHERE uuid = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Collection{}, ErrNotFound
		}
		return types.Collection{}, err
	}
	return collection, nil
}

// ListByUser returns the user's collections, oldest first.
func (r *CollectionRepository) ListByUser(ctx context.Context, userID int) ([]types.Collection, error) {
	const query = `SELECT ` + collectionColumns + ` FROM collections WHERE user_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := make([]types.Collection, 0)
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *CollectionRepository) Create(ctx context.Context, collection types.Collection) (types.Collection, error) {
	now := time.Now()
	collection.CreatedAt = now
	collection.UpdatedAt = now

	moviesJSON, err := marshalMovies(collection.Movies)
	if err != nil {
		return types.Collection{}, err
	}

	const query = `
		INSERT INTO collections (uuid, user_id, title, description, movies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		collection.UUID,
		nullableUserID(collection.UserID),
		collection.Title,
		collection.Description,
		moviesJSON,
		collection.CreatedAt,
		collection.UpdatedAt,
	); err != nil {
		return types.Collection{}, translateError(err)
	}
	return collection, nil
}

// Update writes title, description and movies. Ownership is changed only
// through SetOwner.
func (r *CollectionRepository) Update(ctx context.Context, collection types.Collection) (types.Collection, error) {
	collection.UpdatedAt = time.Now()

	moviesJSON, err := marshalMovies(collection.Movies)
	if err != nil {
		return types.Collection{}, err
	}

	const query = `
		UPDATE collections
		SET title = $1,
			description = $2,
			movies = $3,
			updated_at = $4
		WHERE uuid = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		collection.Title,
		collection.Description,
		moviesJSON,
		collection.UpdatedAt,
		collection.UUID,
	)
	if err != nil {
		return types.Collection{}, err
	}
	if err := requireAffected(result); err != nil {
		return types.Collection{}, err
	}
	return collection, nil
}

func (r *CollectionRepository) SetOwner(ctx context.Context, id uuid.UUID, userID int) error {
	const query = `UPDATE collections SET user_id = $1, updated_at = $2 WHERE uuid = $3`
	result, err := r.db.ExecContext(ctx, query, userID, time.Now(), id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *CollectionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE uuid = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func marshalMovies(movies []types.Movie) ([]byte, error) {
	if movies == nil {
		movies = []types.Movie{}
	}
	return json.Marshal(movies)
}

func nullableUserID(userID *int) sql.NullInt64 {
	if userID == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*userID), Valid: true}
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
