package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates a referenced asset does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("asset not found")
	// ErrConflict indicates the operation would violate link or lock state.
	ErrConflict = errors.New("asset conflict")
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("asset validation")
	// ErrExternal wraps failures of the merge/image backends.
	ErrExternal = errors.New("external service")
)

// NotFoundError tags an error as a missing-resource failure.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as a link/lock conflict.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// ValidationError tags an error as input validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// ExternalError tags an underlying adapter error as external. These are
// downgraded to warnings on the clone/sync paths rather than surfaced.
func ExternalError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrExternal, err)
}
