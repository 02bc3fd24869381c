package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/jd-refiner/internal/prompts"
	"github.com/jonathan/jd-refiner/internal/session"
)

// ErrSessionNotFound indicates the session ID has no live session
type ErrSessionNotFound struct {
	ID uuid.UUID
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// ErrInvalidSessionID indicates the path's session ID is not a UUID
type ErrInvalidSessionID struct {
	Raw string
}

func (e *ErrInvalidSessionID) Error() string {
	return fmt.Sprintf("invalid session ID: %q", e.Raw)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notFound *ErrSessionNotFound
	var badID *ErrInvalidSessionID
	var badReq *ErrValidation
	var missingVar *prompts.MissingVariableError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &badID), errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrEmptyDescription):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoDescription),
		errors.Is(err, session.ErrRoundComplete),
		errors.Is(err, session.ErrNoNextRound),
		errors.Is(err, session.ErrFinalized):
		return http.StatusConflict
	case errors.As(err, &missingVar):
		// Contract defect in the prompt catalog bindings.
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
