package shared

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrGatewayUnavailable indicates the Tally gateway could not be reached.
	ErrGatewayUnavailable = errors.New("tally gateway unavailable")
	// ErrIdempotencyConflict indicates a duplicate idempotency key.
	ErrIdempotencyConflict = errors.New("idempotent request already processed")
)

// UserSafeMessage maps internal errors to messages that can be shown to API
// clients without leaking infrastructure details.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "resource not found"
	case errors.Is(err, ErrGatewayUnavailable):
		return "accounting gateway unavailable, retry later"
	case errors.Is(err, ErrIdempotencyConflict):
		return "request already processed"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	default:
		return "internal error"
	}
}
