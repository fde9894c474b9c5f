package services

import (
	"errors"
	"strings"

	"github.com/moviecollections/apiserver/internal/store"
)

var (
	// ErrNotFound is returned for unknown or inaccessible records.
	ErrNotFound = store.ErrNotFound

	// ErrConflict is returned when a username is already taken.
	ErrConflict = store.ErrConflict

	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConfig is returned when required process configuration is missing.
	ErrConfig = errors.New("configuration error")

	// ErrUpstream is returned when an external service fails.
	ErrUpstream = errors.New("upstream error")
)

// ValidationError lists every input rule a request violated.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid request"
	}
	return strings.Join(e.Problems, " ")
}

func invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}
