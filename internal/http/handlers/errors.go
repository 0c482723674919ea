// Package handlers defines HTTP-layer error codes used across all API
// endpoints. These symbolic constants are mapped to HTTP responses via
// the fail() helper and give clients a stable, machine-readable error
// taxonomy alongside the human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes mirror common HTTP status semantics.
//   - Domain-specific codes cover registry outcomes a status code alone
//     cannot convey.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeRegisterFailed   = "register_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeLifecycleFailed  = "lifecycle_failed"
	ErrCodeBadRequestKey    = "bad_request_key"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
