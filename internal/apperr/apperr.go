// Package apperr defines the error taxonomy shared by the service and
// HTTP layers. Every error that crosses a package boundary is one of
// these kinds; the HTTP layer maps kinds to status codes exactly once.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown    Kind = iota
	KindValidation      // malformed or missing input, client-fixable
	KindAuth            // missing, invalid or expired credentials/session
	KindForbidden       // authenticated but insufficient role or scope
	KindConflict        // uniqueness violation
	KindNotFound        // referenced entity absent
	KindStore           // collaborator failure, never retried
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match on kind, so callers can compare against the
// kind sentinels below without caring about the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == ""
}

var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrStore      = &Error{Kind: KindStore}
)

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Auth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Store(err error) error {
	return &Error{Kind: KindStore, Message: "store failure", Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the client-facing message for err, or fallback when
// err carries none (foreign errors never leak their text to clients).
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
