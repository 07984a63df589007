package protocol

import (
	"errors"

	"github.com/mcoot/spyword/internal/model"
)

// Error codes reported to clients
const (
	CodeValidation    = "VALIDATION"
	CodeNotHost       = "NOT_HOST"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeStateConflict = "STATE_CONFLICT"
	CodePersistence   = "PERSISTENCE"
	CodeInternal      = "INTERNAL"
)

// ErrorFor converts an error into the body sent to the client.
// Internal failures never expose their message.
func ErrorFor(err error) *ErrorBody {
	switch {
	case errors.Is(err, model.ErrNotHost):
		return &ErrorBody{CodeNotHost, err.Error()}
	case errors.Is(err, model.ErrForbidden):
		return &ErrorBody{CodeForbidden, err.Error()}
	case errors.Is(err, model.ErrAuthorization):
		return &ErrorBody{CodeUnauthorized, err.Error()}
	case errors.Is(err, model.ErrValidation):
		return &ErrorBody{CodeValidation, err.Error()}
	case errors.Is(err, model.ErrNotFound):
		return &ErrorBody{CodeNotFound, err.Error()}
	case errors.Is(err, model.ErrStateConflict):
		return &ErrorBody{CodeStateConflict, err.Error()}
	case errors.Is(err, model.ErrPersistence):
		return &ErrorBody{CodePersistence, "the session could not be saved"}
	default:
		return &ErrorBody{CodeInternal, "internal error"}
	}
}
