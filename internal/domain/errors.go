package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRepository matches any *RepositoryError via errors.Is
	ErrRepository = errors.New("document repository unavailable")
)

// RepositoryError reports that the document repository was unreachable,
// timed out, or returned malformed data. It is the only failure the search
// core propagates to callers; nothing retries it internally.
type RepositoryError struct {
	Op  string // Repository operation, e.g. "fetch candidates"
	Err error
}

// NewRepositoryError wraps err unless it already is a RepositoryError.
func NewRepositoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}
	return &RepositoryError{Op: op, Err: err}
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// Is allows errors.Is() to match against ErrRepository
func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepository
}
