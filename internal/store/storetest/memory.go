// Package storetest provides in-memory repositories that mirror the
// Postgres schema constraints, for use in tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moviecollections/apiserver/internal/store"
	"github.com/moviecollections/apiserver/types"
)

// DB holds users, profiles and collections. Deleting a user cascades to
// the profile and owned collections, like the ON DELETE CASCADE keys.
type DB struct {
	mu          sync.Mutex
	nextUserID  int
	users       map[int]types.User
	profiles    map[int]types.UserProfile
	collections map[uuid.UUID]types.Collection
	order       []uuid.UUID
}

func New() *DB {
	return &DB{
		nextUserID:  1,
		users:       make(map[int]types.User),
		profiles:    make(map[int]types.UserProfile),
		collections: make(map[uuid.UUID]types.Collection),
	}
}

// Users returns a repository over the user tables.
func (db *DB) Users() *Users { return &Users{db: db} }

// Collections returns a repository over the collections table.
func (db *DB) Collections() *Collections { return &Collections{db: db} }

type Users struct{ db *DB }

func (r *Users) List(ctx context.Context) ([]types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	users := make([]types.User, 0, len(r.db.users))
	for _, user := range r.db.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *Users) GetByID(ctx context.Context, id int) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *Users) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, user := range r.db.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *Users) Create(ctx context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	user.ID = r.db.nextUserID
	r.db.nextUserID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.db.users[user.ID] = user
	r.db.profiles[user.ID] = types.UserProfile{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
	return user, nil
}

func (r *Users) Delete(ctx context.Context, id int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.db.users, id)
	delete(r.db.profiles, id)
	for key, collection := range r.db.collections {
		if collection.OwnedBy(id) {
			r.db.removeCollection(key)
		}
	}
	return nil
}

type Collections struct{ db *DB }

func (r *Collections) Get(ctx context.Context, id uuid.UUID) (types.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	collection, ok := r.db.collections[id]
	if !ok {
		return types.Collection{}, store.ErrNotFound
	}
	return collection, nil
}

func (r *Collections) ListByUser(ctx context.Context, userID int) ([]types.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	collections := make([]types.Collection, 0)
	for _, id := range r.db.order {
		if collection := r.db.collections[id]; collection.OwnedBy(userID) {
			collections = append(collections, collection)
		}
	}
	return collections, nil
}

// Len reports how many collections are stored, owned or not.
func (r *Collections) Len() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.collections)
}

func (r *Collections) Create(ctx context.Context, collection types.Collection) (types.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, exists := r.db.collections[collection.UUID]; exists {
		return types.Collection{}, store.ErrConflict
	}
	if collection.UserID != nil {
		if _, ok := r.db.users[*collection.UserID]; !ok {
			return types.Collection{}, store.ErrNotFound
		}
	}
	collection.CreatedAt = time.Now()
	collection.UpdatedAt = collection.CreatedAt
	r.db.collections[collection.UUID] = collection
	r.db.order = append(r.db.order, collection.UUID)
	return collection, nil
}

func (r *Collections) Update(ctx context.Context, collection types.Collection) (types.Collection, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.collections[collection.UUID]
	if !ok {
		return types.Collection{}, store.ErrNotFound
	}
	existing.Title = collection.Title
	existing.Description = collection.Description
	existing.Movies = collection.Movies
	existing.UpdatedAt = time.Now()
	r.db.collections[collection.UUID] = existing
	return existing, nil
}

func (r *Collections) SetOwner(ctx context.Context, id uuid.UUID, userID int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	collection, ok := r.db.collections[id]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := r.db.users[userID]; !ok {
		return store.ErrNotFound
	}
	collection.UserID = &userID
	r.db.collections[id] = collection
	return nil
}

func (r *Collections) Delete(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.collections[id]; !ok {
		return store.ErrNotFound
	}
	r.db.removeCollection(id)
	return nil
}

func (db *DB) removeCollection(id uuid.UUID) {
	delete(db.collections, id)
	for i, existing := range db.order {
		if existing == id {
			db.order = append(db.order[:i], db.order[i+1:]...)
			return
		}
	}
}
