package models

import "errors"

// Error kinds surfaced by the answer path. Handlers map these to HTTP status
// codes; services wrap them with context via fmt.Errorf and %w.
var (
	// ErrInvalidRequest marks a malformed query: empty question or an
	// unknown mode, model or tone. Never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrModelMismatch means the query embedding model differs from the
	// model the index was built with; the operator must rebuild.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrIndexUnavailable means rag mode was requested but no index
	// snapshot exists. Recovered locally by answering without context.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrRecordNotFound is returned by the record store for unknown IDs.
	ErrRecordNotFound = errors.New("record not found")

	// Provider failure kinds, surfaced after the adapter's own bounded
	// retries are exhausted.
	ErrProviderTimeout     = errors.New("provider timeout")
	ErrProviderRateLimited = errors.New("provider rate limited")
	ErrProviderFailed      = errors.New("provider request failed")
)
