package engine

import "sort"

// VaR model constants: 95% one-day with a hard-coded 2% daily volatility
// assumption. The volatility is not estimated from data.
const (
	dailyVolatility = 0.02
	var95Multiplier = 1.645
	defaultVaR      = 0.05

	// defaultRefPrice is used when the oracle has no price for an
	// instrument. Oracle unavailability is never fatal.
	defaultRefPrice = 100.0
)

// Portfolio recomputes the portfolio summary from the ledger, cash and
// current oracle prices. It is a pure read: concurrent calls are safe and
// two calls with no intervening mutation return identical results (modulo
// the timestamp and oracle movement).
func (e *Engine) Portfolio() PortfolioSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	totalValue := e.cash
	totalPnL := 0.0
	positions := make([]Position, 0, len(e.positions))

	for _, pos := range e.positions {
		current := e.referencePrice(pos.Instrument)
		totalValue += pos.Quantity * current

		snapshot := *pos
		snapshot.UnrealizedPnL = (current - pos.AvgPrice) * pos.Quantity
		totalPnL += snapshot.UnrealizedPnL
		positions = append(positions, snapshot)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Instrument < positions[j].Instrument
	})

	pnlPercent := 0.0
	if denom := totalValue - totalPnL; denom > 0 {
		pnlPercent = totalPnL / denom
	}

	return PortfolioSummary{
		TotalValue:      roundTo(totalValue, 2),
		Cash:            roundTo(e.cash, 2),
		Positions:       positions,
		TotalPnL:        roundTo(totalPnL, 2),
		TotalPnLPercent: roundTo(pnlPercent, 4),
		Greeks:          e.greeks.Aggregate(positions),
		VaR:             roundTo(e.portfolioVaR(), 4),
		Timestamp:       e.now(),
	}
}

// portfolioVaR returns the simplified 95% one-day VaR as a fraction of total
// portfolio value. Caller holds at least the read lock.
func (e *Engine) portfolioVaR() float64 {
	value := e.cash
	for _, pos := range e.positions {
		value += pos.Quantity * e.referencePrice(pos.Instrument)
	}
	if value <= 0 {
		return defaultVaR
	}
	var95 := value * dailyVolatility * var95Multiplier
	return var95 / value
}

// referencePrice consults the oracle, falling back to a fixed default when
// the instrument is unknown.
func (e *Engine) referencePrice(instrument string) float64 {
	if price, ok := e.prices.PriceOf(instrument); ok && price > 0 {
		return price
	}
	return defaultRefPrice
}
