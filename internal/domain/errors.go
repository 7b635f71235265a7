package domain

import "errors"

var (
	// ErrTenantNotFound is returned when the tenant store has no such
	// tenant. Surfaced to the client as 404, never retried.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrProfileNotFound is returned by the profile store when no profile
	// row exists; the signal resolver maps it to empty signals.
	ErrProfileNotFound = errors.New("user profile not found")
)
