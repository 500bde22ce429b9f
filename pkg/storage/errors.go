package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested object was not found
	ErrNotFound = errors.New("storage: object not found")

	// ErrAccessDenied indicates access was denied
	ErrAccessDenied = errors.New("storage: access denied")

	// ErrInvalidURI indicates a string that is not an object-store URL
	ErrInvalidURI = errors.New("storage: invalid object URI")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("storage: invalid configuration")
)

// Error carries the operation and object behind a store failure.
type Error struct {
	Op       string
	Path     string
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("storage %s: %s failed for %s: %v", e.Provider, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("storage %s: %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new storage error
func NewError(op, path, provider string, err error) error {
	return &Error{
		Op:       op,
		Path:     path,
		Provider: provider,
		Err:      err,
	}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
