package model

import (
	"errors"
	"fmt"
)

// Error categories. Every specific error below wraps exactly one of these,
// so callers can branch on either the specific error or its category.
var (
	ErrValidation    = errors.New("validation failed")
	ErrAuthorization = errors.New("not authorized")
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("state conflict")
	ErrPersistence   = errors.New("persistence failure")
)

var (
	// Validation errors
	ErrEmptyName           = fmt.Errorf("%w: display name is required", ErrValidation)
	ErrInvalidSessionCode  = fmt.Errorf("%w: invalid session code", ErrValidation)
	ErrInsufficientPlayers = fmt.Errorf("%w: not enough players to start", ErrValidation)
	ErrInvalidRequest      = fmt.Errorf("%w: invalid request", ErrValidation)
	ErrInvalidSettings     = fmt.Errorf("%w: invalid settings", ErrValidation)
	ErrInvalidWords        = fmt.Errorf("%w: invalid word list", ErrValidation)

	// Authorization errors
	ErrNotHost       = fmt.Errorf("%w: player is not the host", ErrAuthorization)
	ErrNotRegistered = fmt.Errorf("%w: connection has no registered player", ErrAuthorization)
	ErrForbidden     = fmt.Errorf("%w: operation not permitted for this player", ErrAuthorization)

	// Not found errors
	ErrPlayerNotFound   = fmt.Errorf("%w: player not found", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("%w: session not found", ErrNotFound)
	ErrNotInSession     = fmt.Errorf("%w: player is not in session", ErrNotFound)
	ErrSettingsNotFound = fmt.Errorf("%w: settings not stored", ErrNotFound)

	// State conflict errors
	ErrAlreadyStarted = fmt.Errorf("%w: session already started", ErrStateConflict)
	ErrNotWaiting     = fmt.Errorf("%w: session is not waiting", ErrStateConflict)
	ErrNotPlaying     = fmt.Errorf("%w: session is not playing", ErrStateConflict)
	ErrNotFinished    = fmt.Errorf("%w: session is not finished", ErrStateConflict)

	// Role assignment errors
	ErrNoMembers = fmt.Errorf("%w: no members to assign roles to", ErrValidation)
	ErrNoWords   = fmt.Errorf("%w: no words available", ErrValidation)
)

// PersistenceError wraps a storage driver failure in the persistence category
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
