package services

import "errors"

// Errors returned by the link service. Handlers translate these into
// HTTP status codes; anything else is an internal failure.
var (
	ErrInvalidInput        = errors.New("long URL cannot be empty")
	ErrCodeConflict        = errors.New("custom short code already exists")
	ErrAllocationExhausted = errors.New("could not allocate a unique short code")
	ErrNotFound            = errors.New("short code not found")
	ErrLinkExpired         = errors.New("link has expired")
	ErrPasswordRequired    = errors.New("link requires a password")
	ErrWrongPassword       = errors.New("wrong link password")
)
