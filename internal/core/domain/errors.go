package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInactive indicates an entity exists but is disabled.
	// Extraction never runs against inactive projects, sources or credentials.
	ErrInactive = errors.New("inactive")

	// ErrUnsupportedPlatform indicates an unknown platform identifier.
	// Returned by the platform registry for lookups it cannot resolve.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrCredentialValidation indicates the platform rejected the credentials.
	ErrCredentialValidation = errors.New("credential validation failed")

	// ErrMissingFields indicates a credential payload is missing required fields.
	// The shape check fails before any network call is made.
	ErrMissingFields = errors.New("missing required credential fields")

	// ErrNoData indicates a platform call succeeded but returned zero records.
	// Distinct from configuration errors so callers can tell "nothing
	// happened" apart from "something is misconfigured".
	ErrNoData = errors.New("no data returned from platform")

	// ErrWebhookExpired indicates a webhook key is past its expiry.
	ErrWebhookExpired = errors.New("webhook expired")

	// ErrRateLimited indicates a webhook exceeded its hourly request cap.
	ErrRateLimited = errors.New("rate limited")
)
