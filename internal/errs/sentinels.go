// Package errs contains sentinel and typed errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client layers.
var (
	// ErrNotFound indicates the requested entity does not exist locally or remotely.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing or rejected session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates a temporary sign-in lock after repeated failures.
	ErrRateLimited = errors.New("rate limited")

	// ErrInFlight indicates the same mutation is already pending for the entity.
	ErrInFlight = errors.New("operation already in progress")

	// ErrUnsupported indicates the server deployment does not offer the operation.
	ErrUnsupported = errors.New("not supported by server")

	// ErrStale indicates the mutation committed remotely but the follow-up read failed,
	// so local state may lag behind the server until the next refresh.
	ErrStale = errors.New("local state is stale")
)
