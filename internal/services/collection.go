package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/validation"
	"github.com/moviecollections/apiserver/types"
)

// CollectionRepository defines persistence operations for collections.
type CollectionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (types.Collection, error)
	ListByUser(ctx context.Context, userID int) ([]types.Collection, error)
	Create(ctx context.Context, collection types.Collection) (types.Collection, error)
	Update(ctx context.Context, collection types.Collection) (types.Collection, error)
	SetOwner(ctx context.Context, id uuid.UUID, userID int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CollectionInput carries collection fields from a request body. Nil
// fields were absent from the payload.
type CollectionInput struct {
	Title       *string        `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string        `json:"description" validate:"omitnil,min=1,max=255"`
	Movies      *[]types.Movie `json:"movies" validate:"omitnil"`
}

type newCollection struct {
	Title       string        `json:"title" validate:"required,max=255"`
	Description string        `json:"description" validate:"required,max=255"`
	Movies      []types.Movie `json:"movies" validate:"required"`
}

// UserCollection is a user's collection together with its favourite genres.
// Collection is nil when the user has not saved anything yet.
type UserCollection struct {
	Collection      *types.Collection
	FavouriteGenres []string
}

// CollectionService encapsulates collection use-cases.
type CollectionService struct {
	repo   CollectionRepository
	events EventPublisher
}

func NewCollectionService(repo CollectionRepository, events EventPublisher) *CollectionService {
	return &CollectionService{repo: repo, events: events}
}

// ParseID parses a collection identifier. Malformed ids are reported as
// not found, the same as ids that do not exist.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

// ForUser returns the user's first collection and the top genres across
// its movies.
func (s *CollectionService) ForUser(ctx context.Context, userID int) (UserCollection, error) {
	collections, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return UserCollection{}, err
	}
	if len(collections) == 0 {
		return UserCollection{}, nil
	}

	first := collections[0]
	return UserCollection{
		Collection:      &first,
		FavouriteGenres: TopGenres(first.Movies, FavouriteGenreCount),
	}, nil
}

// Create stores a new unowned collection under a fresh UUID, then claims it
// for userID.
func (s *CollectionService) Create(ctx context.Context, userID int, in CollectionInput) (types.Collection, error) {
	candidate := newCollection{}
	if in.Title != nil {
		candidate.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		candidate.Description = strings.TrimSpace(*in.Description)
	}
	if in.Movies != nil {
		candidate.Movies = *in.Movies
		if candidate.Movies == nil {
			candidate.Movies = []types.Movie{}
		}
	}
	if err := validateInput(candidate); err != nil {
		return types.Collection{}, err
	}

	collection, err := s.repo.Create(ctx, types.Collection{
		UUID:        uuid.New(),
		Title:       candidate.Title,
		Description: candidate.Description,
		Movies:      candidate.Movies,
	})
	if err != nil {
		return types.Collection{}, err
	}
	if err := s.claim(ctx, &collection, userID); err != nil {
		if delErr := s.repo.Delete(ctx, collection.UUID); delErr != nil {
			logging.Error().Err(delErr).Str("collection", collection.UUID.String()).Msg("remove unclaimed collection")
		}
		return types.Collection{}, err
	}

	s.publish(ctx, types.EventCollectionCreated, userID, collection.UUID)
	return collection, nil
}

// Update applies the fields present in the input, then claims the
// collection for userID.
func (s *CollectionService) Update(ctx context.Context, userID int, id uuid.UUID, in CollectionInput) (types.Collection, error) {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
	if in.Description != nil {
		trimmed := strings.TrimSpace(*in.Description)
		in.Description = &trimmed
	}
	if err := validateInput(in); err != nil {
		return types.Collection{}, err
	}

	collection, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Collection{}, err
	}
	if in.Title != nil {
		collection.Title = *in.Title
	}
	if in.Description != nil {
		collection.Description = *in.Description
	}
	if in.Movies != nil {
		collection.Movies = *in.Movies
	}

	collection, err = s.repo.Update(ctx, collection)
	if err != nil {
		return types.Collection{}, err
	}
	if err := s.claim(ctx, &collection, userID); err != nil {
		return types.Collection{}, err
	}

	s.publish(ctx, types.EventCollectionUpdated, userID, collection.UUID)
	return collection, nil
}

func (s *CollectionService) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, types.EventCollectionDeleted, userID, id)
	return nil
}

// Detail returns the collection only when userID owns it.
func (s *CollectionService) Detail(ctx context.Context, userID int, id uuid.UUID) (types.Collection, error) {
	collection, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Collection{}, err
	}
	if !collection.OwnedBy(userID) {
		return types.Collection{}, ErrNotFound
	}
	return collection, nil
}

func (s *CollectionService) claim(ctx context.Context, collection *types.Collection, userID int) error {
	if err := s.repo.SetOwner(ctx, collection.UUID, userID); err != nil {
		return err
	}
	collection.UserID = &userID
	return nil
}

func (s *CollectionService) publish(ctx context.Context, eventType types.EventType, userID int, id uuid.UUID) {
	if s.events != nil {
		s.events.Publish(ctx, types.Event{Type: eventType, UserID: userID, CollectionUUID: id.String()})
	}
}

func validateInput(in any) error {
	err := validation.Struct(in)
	if err == nil {
		return nil
	}
	var verrs *validation.Errors
	if errors.As(err, &verrs) {
		return invalid(verrs.Messages...)
	}
	return err
}
