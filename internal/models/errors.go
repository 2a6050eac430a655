package models

import "errors"

// Sentinel errors returned by repositories and the dead-letter store, and
// wrapped by peers inside apperrors.Error values. Handlers match them with
// errors.Is; internal/apperrors does not map them onto Kinds.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("resource conflict")
	ErrInvalidPlatform = errors.New("invalid platform")
	ErrUpstreamFailed  = errors.New("upstream request failed")
)
