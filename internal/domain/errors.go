package domain

import "errors"

// Error taxonomy shared across services, repositories, and handlers.
// Callers match with errors.Is; repositories wrap storage causes with
// fmt.Errorf("...: %w", ...) so the sentinel stays matchable.
var (
	// ErrInvalidCredentialFormat covers malformed, empty, or oversized
	// password input.
	ErrInvalidCredentialFormat = errors.New("invalid credential format")

	// ErrTenantAlreadyExists is returned when an organization name is taken,
	// either by the pre-check or by the store's unique index on the name.
	ErrTenantAlreadyExists = errors.New("organization already exists")

	// ErrEmailAlreadyRegistered is returned when an admin email is held by
	// the admin of another organization.
	ErrEmailAlreadyRegistered = errors.New("email already registered")

	ErrTenantNotFound = errors.New("organization not found")
	ErrAdminNotFound  = errors.New("admin not found")

	// ErrUnauthorized covers missing, invalid, or expired credentials. Login
	// failures collapse into it so responses never reveal whether an email
	// is registered.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the caller is authenticated but does not own the
	// target organization.
	ErrForbidden = errors.New("forbidden")

	// ErrTooManyAttempts is returned when the login rate limiter trips.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrStorage wraps store failures. They are surfaced as-is, never
	// retried internally; the caller decides on retry policy.
	ErrStorage = errors.New("storage failure")
)
