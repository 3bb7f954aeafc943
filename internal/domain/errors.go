package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Reward errors
	ErrInvalidInput = errors.New("invalid input")

	// Spending errors
	ErrInsufficientPoints = errors.New("not enough stat points")

	// Queue errors
	ErrQueueClosed = errors.New("session queue is closed")
)
