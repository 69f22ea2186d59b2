package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrInvalidState marks a transition attempted from a status that does not
	// allow it (draft/accepted/rejected from the client's perspective).
	ErrInvalidState = errors.New("invalid state for action")

	// One-time code verification failures. Each gets its own sentinel because
	// the confirm endpoint answers with a distinct message per kind.
	ErrCodeInvalid          = errors.New("invalid code")
	ErrCodeExpired          = errors.New("code expired")
	ErrCodeUsed             = errors.New("code already used")
	ErrCodeAttemptsExceeded = errors.New("too many attempts")
	ErrPayloadMismatch      = errors.New("code bound to a different quotation")

	// ErrDelivery marks a failed outbound notification during issuance.
	// Issuance fails end-to-end when the code cannot be delivered.
	ErrDelivery = errors.New("delivery failure")
)
