package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// collaborator details to the browser.
var (
	// ErrTokenNotFound covers both unknown and already-redeemed tokens; the
	// two are deliberately indistinguishable to the caller.
	ErrTokenNotFound = errors.New("token invalid or already used")

	// ErrDMClosed is returned when a member refuses direct messages and the
	// join handler should fall back to a guild channel.
	ErrDMClosed = errors.New("direct messages closed")

	// ErrNotConnected is returned for platform operations attempted before
	// the gateway session is ready.
	ErrNotConnected = errors.New("bot not connected")

	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)
