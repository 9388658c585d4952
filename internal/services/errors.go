package services

import "errors"

// Error kinds. Callers match with errors.Is; the wrapped message says what failed.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrIncidentNotFound = wrapKind(ErrNotFound, "incident not found")
	ErrAppealNotFound   = wrapKind(ErrNotFound, "appeal not found")
	ErrListingNotFound  = wrapKind(ErrNotFound, "listing not found")
	ErrUserNotFound     = wrapKind(ErrNotFound, "user not found")
)

type kindError struct {
	kind error
	msg  string
}

func wrapKind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }
