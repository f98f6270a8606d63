// Package apperr defines the error kinds surfaced by the core packages and how
// they map onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Internal Kind = iota
	Unauthorized
	SessionRevoked
	Forbidden
	NotFound
	InvalidArgument
	Conflict
)

var kindNames = map[Kind]string{
	Internal:        "INTERNAL",
	Unauthorized:    "UNAUTHORIZED",
	SessionRevoked:  "SESSION_REVOKED",
	Forbidden:       "FORBIDDEN",
	NotFound:        "NOT_FOUND",
	InvalidArgument: "INVALID_ARGUMENT",
	Conflict:        "CONFLICT",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Internal]
}

// Sentinels usable with errors.Is to test only the kind of an error.
var (
	ErrInternal        = &Error{Kind: Internal}
	ErrUnauthorized    = &Error{Kind: Unauthorized}
	ErrSessionRevoked  = &Error{Kind: SessionRevoked}
	ErrForbidden       = &Error{Kind: Forbidden}
	ErrNotFound        = &Error{Kind: NotFound}
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrConflict        = &Error{Kind: Conflict}
)

// Error is an application error with a kind, a client-safe message and an
// optional cause that is never shown to clients.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind. A target without a message
// matches every error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// New returns an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf formats the message of a new error.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and client-safe message to cause.
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Internalf wraps an unexpected failure.
func Internalf(cause error, format string, args ...any) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the kind of err. Errors outside the taxonomy are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" && appErr.Kind != Internal {
		return appErr.Message
	}
	if errors.As(err, &appErr) && appErr.Kind != Internal {
		return http.StatusText(HTTPStatus(appErr.Kind))
	}
	return "internal server error"
}

// HTTPStatus maps a kind onto the status code returned to clients.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthorized, SessionRevoked:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case InvalidArgument:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
