package engine

import "fmt"

// validateOrder checks structural validity of an order request. It has no
// side effects and consults no engine state.
func validateOrder(ord PaperOrder) error {
	if ord.Side == "" {
		return fmt.Errorf("%w: missing side", ErrValidation)
	}
	if ord.Instrument == "" {
		return fmt.Errorf("%w: missing instrument", ErrValidation)
	}
	if ord.Quantity <= 0 {
		return fmt.Errorf("%w: qty must be positive, got %v", ErrValidation, ord.Quantity)
	}
	if ord.Side != SideBuy && ord.Side != SideSell {
		return fmt.Errorf("%w: unsupported side %q", ErrValidation, ord.Side)
	}
	return nil
}
