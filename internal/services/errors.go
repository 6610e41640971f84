package services

import (
	"errors"
	"fmt"

	"hospital-app-server/internal/authz"
	"hospital-app-server/internal/repository"
)

// ServiceError is a failure the caller can correct by changing its request.
type ServiceError string

func (e ServiceError) Error() string { return string(e) }

const (
	ErrAlreadyProcessed     ServiceError = "appointment has already been processed"
	ErrMissingRequiredField ServiceError = "missing required field"
	ErrNotFound             ServiceError = "not found"
	ErrPreconditionFailed   ServiceError = "precondition failed"
	ErrInvalidStatusValue   ServiceError = "invalid status value"
	ErrForbidden            ServiceError = "you do not have permission to perform this action"
	ErrInvalidInput         ServiceError = "invalid input"
	ErrConflict             ServiceError = "conflict"
	ErrUnauthorized         ServiceError = "unauthorized"
)

var codes = map[ServiceError]string{
	ErrAlreadyProcessed:     "AlreadyProcessed",
	ErrMissingRequiredField: "MissingRequiredField",
	ErrNotFound:             "NotFound",
	ErrPreconditionFailed:   "PreconditionFailed",
	ErrInvalidStatusValue:   "InvalidStatusValue",
	ErrForbidden:            "Forbidden",
	ErrInvalidInput:         "InvalidInput",
	ErrConflict:             "Conflict",
	ErrUnauthorized:         "Unauthorized",
}

// Code returns the error kind carried by err, or "" for unexpected failures.
func Code(err error) string {
	var se ServiceError
	if errors.As(err, &se) {
		return codes[se]
	}
	return ""
}

func authorize(actor authz.Actor, action authz.Action) error {
	if !actor.Can(action) {
		return fmt.Errorf("%w: %s", ErrForbidden, action)
	}
	return nil
}

// notFound turns a repository miss into ErrNotFound naming what was missing and
// wraps anything else.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
