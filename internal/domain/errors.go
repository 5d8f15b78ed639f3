package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, coordinate out of range).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUpstream is returned when the external assistant service rejects a
// request (bad credential, quota, malformed tool schema).
// Handlers should map this to HTTP 502.
var ErrUpstream = errors.New("upstream assistant error")

// ErrNotConfigured is returned when an operation requires the assistant
// credential and none has been stored.
// Handlers should map this to HTTP 503.
var ErrNotConfigured = errors.New("assistant credential not configured")
