package domain

import "errors"

// Domain errors represent business logic failures.
// None of these escape the resolver to its caller; they are logged and the
// caller receives the last-known manifest entry or nothing.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLicenseRejected indicates a candidate lacked a license or failed
	// the allow-pattern. The candidate is dropped, never surfaced.
	ErrLicenseRejected = errors.New("license rejected")

	// ErrProviderUnavailable indicates a single provider's fetch failed.
	// The provider contributes zero candidates; federation continues.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrStyleFailure indicates image decode or draw failed.
	// Callers fall back to the unstyled URL.
	ErrStyleFailure = errors.New("style pipeline failed")

	// ErrManifestVersion indicates the persisted manifest document carries
	// an unknown schema version. The store loads empty rather than failing.
	ErrManifestVersion = errors.New("unknown manifest schema version")
)
