package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// defaultPolicyKey is the only active policy slot. Setting a limit replaces
// the previous one; no history is kept.
const defaultPolicyKey = "default"

// SetRiskLimit replaces the active risk policy, stamping UpdatedAt.
func (e *Engine) SetRiskLimit(limit RiskLimit) RiskLimit {
	now := e.now()
	if limit.CreatedAt.IsZero() {
		limit.CreatedAt = now
	}
	limit.UpdatedAt = now

	e.mu.Lock()
	e.limits[defaultPolicyKey] = limit
	e.mu.Unlock()

	e.log.Info("risk limit updated", zap.String("policy", limit.Policy))
	return limit
}

// RiskLimit returns the active policy, if any.
func (e *Engine) RiskLimit() (RiskLimit, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	limit, ok := e.limits[defaultPolicyKey]
	return limit, ok
}

// checkRiskLimits evaluates the order against the active policy. The check
// is fail-open: an internal error while evaluating the policy allows the
// order rather than blocking it (availability over strict enforcement for a
// simulator). The VaR cap is checked against the pre-trade portfolio, not a
// projected post-trade one. Caller holds the write lock.
func (e *Engine) checkRiskLimits(ord PaperOrder, refPrice float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("risk check failed internally, allowing order", zap.Any("cause", r))
			err = nil
		}
	}()

	limit, ok := e.limits[defaultPolicyKey]
	if !ok {
		return nil
	}

	if limit.MaxPositionSize != nil {
		notional := ord.Quantity * refPrice
		if notional > *limit.MaxPositionSize {
			return fmt.Errorf("%w: notional %.2f exceeds max position size %.2f (policy %q)",
				ErrRiskLimitExceeded, notional, *limit.MaxPositionSize, limit.Policy)
		}
	}

	if limit.MaxVaR != nil {
		current := e.portfolioVaR()
		if current > *limit.MaxVaR {
			return fmt.Errorf("%w: portfolio VaR %.4f exceeds cap %.4f (policy %q)",
				ErrRiskLimitExceeded, current, *limit.MaxVaR, limit.Policy)
		}
	}

	return nil
}

// Float64Ptr is a convenience for building RiskLimit caps.
func Float64Ptr(v float64) *float64 { return &v }
