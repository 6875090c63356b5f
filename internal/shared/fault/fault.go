// Package fault holds the error taxonomy shared by every bounded context.
// Application services wrap their causes with one of these sentinels so that
// transports can classify a failure with errors.Is without knowing the domain.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that violates a domain invariant (empty cart, missing fields).
	ErrValidation = errors.New("validation error")
	// ErrAuth marks bad credentials or an unreachable identity service.
	ErrAuth = errors.New("authentication error")
	// ErrForbidden marks an authenticated caller lacking the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrPersistence marks a failed read, write or delete against the document store.
	ErrPersistence = errors.New("persistence error")
	// ErrConflict marks a request that contradicts previously stored state.
	ErrConflict = errors.New("conflict")
)

// Validation wraps err as a validation failure.
func Validation(err error) error {
	return wrap(ErrValidation, err)
}

// Auth wraps err as an authentication failure.
func Auth(err error) error {
	return wrap(ErrAuth, err)
}

// Persistence wraps err as a store failure.
func Persistence(err error) error {
	return wrap(ErrPersistence, err)
}

// Conflict wraps err as a state conflict.
func Conflict(err error) error {
	return wrap(ErrConflict, err)
}

func wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
