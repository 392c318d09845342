package engine

import "errors"

var (
	// ErrValidation marks a structurally invalid order, rejected before any
	// state change.
	ErrValidation = errors.New("order validation failed")

	// ErrRiskLimitExceeded marks an order that would breach the active risk
	// policy, rejected before any state change.
	ErrRiskLimitExceeded = errors.New("order exceeds risk limits")

	// ErrInsufficientPosition marks a sell for more than the held quantity.
	// The ledger and cash are left untouched.
	ErrInsufficientPosition = errors.New("insufficient position for sell order")
)
