// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes give
// clients a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless noted.
//   - Generic codes (bad_request, unauthorized, forbidden, not_found,
//     conflict) mirror common HTTP status semantics.
//   - Domain-specific codes (invalid_transition, campaign_paused) are
//     reserved for business rules that the status alone cannot convey.
//   - upstream_failure covers persistent-store errors; the response never
//     carries the underlying driver message.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"
	ErrCodeUpstream     = "upstream_failure"

	// Domain-specific:
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeCampaignPaused    = "campaign_paused"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
