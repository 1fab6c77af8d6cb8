// Package errors holds the sentinel errors shared by every layer and the
// mapping from those errors to REST status codes and real-time error kinds.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrActionPanic = fmt.Errorf("action panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrInvalidAction  = fmt.Errorf("invalid action")
	ErrUnknownAction  = fmt.Errorf("unknown action")
	ErrInvalidMessage = fmt.Errorf("invalid message")
	ErrSenderMismatch = fmt.Errorf("sender does not match connection identity")
	ErrBackpressure   = fmt.Errorf("action queue is full")

	ErrGroupNotFound      = fmt.Errorf("chat group not found")
	ErrGroupAlreadyExists = fmt.Errorf("chat group already exists")
	ErrNotGroupMember     = fmt.Errorf("user is not a member of the group")
	ErrNoGroups           = fmt.Errorf("no chat group found")
	ErrNoMessages         = fmt.Errorf("no chat found")
	ErrUserNotFound       = fmt.Errorf("user not found")

	ErrAlreadyBound = fmt.Errorf("connection already bound to another identity")
	ErrNotBound     = fmt.Errorf("connection is not bound")
	ErrSlowConsumer = fmt.Errorf("connection send buffer is full")

	ErrMissingToken = fmt.Errorf("authorization token is missing")
	ErrInvalidToken = fmt.Errorf("invalid or expired token")
	ErrForbidden    = fmt.Errorf("forbidden")
)

// Kind classifies a failed real-time action so a client knows whether a retry can help.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindForbidden   Kind = "forbidden"
	KindUnavailable Kind = "unavailable"
)

// Is forwards to the standard library so callers only import this package.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As forwards to the standard library so callers only import this package.
func As(err error, target any) bool { return stderrors.As(err, target) }

func isValidation(err error) bool {
	var validationErrors validator.ValidationErrors
	return stderrors.As(err, &validationErrors) ||
		stderrors.Is(err, ErrInvalidAction) ||
		stderrors.Is(err, ErrUnknownAction) ||
		stderrors.Is(err, ErrInvalidMessage)
}

// KindOf returns the client-facing classification of an action failure.
// Anything not recognised is reported as unavailable, which invites a retry.
func KindOf(err error) Kind {
	switch {
	case isValidation(err):
		return KindValidation
	case stderrors.Is(err, ErrGroupNotFound), stderrors.Is(err, ErrUserNotFound):
		return KindNotFound
	case stderrors.Is(err, ErrSenderMismatch), stderrors.Is(err, ErrNotGroupMember),
		stderrors.Is(err, ErrForbidden), stderrors.Is(err, ErrAlreadyBound):
		return KindForbidden
	default:
		return KindUnavailable
	}
}

// HTTPStatus maps a domain error to the status code returned by the REST layer.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isValidation(err):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrMissingToken), stderrors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrForbidden), stderrors.Is(err, ErrNotGroupMember):
		return http.StatusForbidden
	case stderrors.Is(err, ErrGroupNotFound), stderrors.Is(err, ErrNoGroups),
		stderrors.Is(err, ErrNoMessages), stderrors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrGroupAlreadyExists):
		return http.StatusConflict
	case stderrors.Is(err, ErrBackpressure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
