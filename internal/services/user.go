package services

import (
	"context"
	"errors"
	"strings"

	"github.com/moviecollections/apiserver/internal/logging"
	"github.com/moviecollections/apiserver/internal/validation"
	"github.com/moviecollections/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// EventPublisher receives lifecycle events. Implementations must not block
// the caller on broker failures.
type EventPublisher interface {
	Publish(ctx context.Context, event types.Event)
}

// CreateUserInput is the payload accepted by CreateUser.
type CreateUserInput struct {
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=72"`
	Email     string `json:"email" validate:"required,account_email"`
	FirstName string `json:"first_name" validate:"max=30"`
	LastName  string `json:"last_name" validate:"max=30"`
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo           UserRepository
	events         EventPublisher
	implicitSignup bool
	hashCost       int
}

func NewUserService(repo UserRepository, events EventPublisher, implicitSignup bool) *UserService {
	return &UserService{
		repo:           repo,
		events:         events,
		implicitSignup: implicitSignup,
		hashCost:       bcrypt.DefaultCost,
	}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates the input, hashes the password and stores the account.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (types.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	var problems []string
	if err := validation.Struct(in); err != nil {
		var verrs *validation.Errors
		if !errors.As(err, &verrs) {
			return types.User{}, err
		}
		problems = append(problems, verrs.Messages...)
	}
	if in.Password != "" {
		problems = append(problems, validation.Password(in.Password, in.Username)...)
	}
	if len(problems) > 0 {
		return types.User{}, invalid(problems...)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashed),
	})
	if err != nil {
		return types.User{}, err
	}

	s.publish(ctx, types.Event{Type: types.EventUserCreated, UserID: user.ID, Username: user.Username})
	return user, nil
}

// Delete removes the user with all owned collections and returns the
// removed account.
func (s *UserService) Delete(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return types.User{}, err
	}

	s.publish(ctx, types.Event{Type: types.EventUserDeleted, UserID: user.ID, Username: user.Username})
	return user, nil
}

// Authenticate resolves the account a token is issued for. Unknown
// usernames are registered on the spot when implicit signup is enabled;
// the second return value reports that case.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.User{}, false, invalid("Please enter valid username and password")
	}

	user, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return types.User{}, false, ErrInvalidCredentials
		}
		return user, false, nil
	case !errors.Is(err, ErrNotFound):
		return types.User{}, false, err
	case !s.implicitSignup:
		return types.User{}, false, ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return types.User{}, false, err
	}
	user, err = s.repo.Create(ctx, types.User{Username: username, PasswordHash: string(hashed)})
	if err != nil {
		return types.User{}, false, err
	}

	logging.Warn().Str("username", username).Int("user_id", user.ID).Msg("account created implicitly during token issuance")
	s.publish(ctx, types.Event{Type: types.EventUserCreated, UserID: user.ID, Username: user.Username})
	return user, true, nil
}

func (s *UserService) publish(ctx context.Context, event types.Event) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}
