package tracker

import "errors"

// Error kinds surfaced by the service layer. Callers classify failures with
// errors.Is; each layer adds context with fmt.Errorf("...: %w", err) so the
// kind survives wrapping.
var (
	// ErrNotFound means a resource id did not resolve.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the acting user is authenticated but lacks the
	// required role or relationship. Never returned for a missing resource.
	ErrUnauthorized = errors.New("not authorized")

	// ErrValidation means required input was missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means a uniqueness constraint was violated (duplicate
	// email, project key, or ticket number after retries).
	ErrConflict = errors.New("conflict")
)
