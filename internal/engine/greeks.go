package engine

import "strings"

// GreeksModel aggregates option sensitivities across a set of positions.
type GreeksModel interface {
	Aggregate(positions []Position) Greeks
}

// HeuristicGreeksModel assigns fixed per-unit sensitivities by instrument
// kind. It is a placeholder, not a pricing model: calls and puts contribute
// hard-coded constants per unit, everything else contributes delta only
// (1.0 per unit). A real model can replace it behind the GreeksModel
// contract without touching the engine.
type HeuristicGreeksModel struct{}

// Per-unit sensitivities for the placeholder model.
const (
	callDelta = 0.6
	callGamma = 0.001
	callTheta = -50.0
	callVega  = 100.0
	callRho   = 10.0

	putDelta = -0.4
	putGamma = 0.001
	putTheta = -45.0
	putVega  = 95.0
	putRho   = -8.0
)

func (HeuristicGreeksModel) Aggregate(positions []Position) Greeks {
	var g Greeks
	for _, pos := range positions {
		switch optionKind(pos.Instrument) {
		case "C":
			g.Delta += pos.Quantity * callDelta
			g.Gamma += pos.Quantity * callGamma
			g.Theta += pos.Quantity * callTheta
			g.Vega += pos.Quantity * callVega
			g.Rho += pos.Quantity * callRho
		case "P":
			g.Delta += pos.Quantity * putDelta
			g.Gamma += pos.Quantity * putGamma
			g.Theta += pos.Quantity * putTheta
			g.Vega += pos.Quantity * putVega
			g.Rho += pos.Quantity * putRho
		default:
			g.Delta += pos.Quantity
		}
	}
	g.Delta = roundTo(g.Delta, 3)
	g.Gamma = roundTo(g.Gamma, 4)
	g.Theta = roundTo(g.Theta, 1)
	g.Vega = roundTo(g.Vega, 1)
	g.Rho = roundTo(g.Rho, 1)
	return g
}

// optionKind reports "C" or "P" for instruments named with a trailing
// call/put marker segment (Deribit style, e.g. BTC-27JUN25-50000-C), and ""
// for everything else.
func optionKind(instrument string) string {
	parts := strings.Split(instrument, "-")
	if len(parts) < 2 {
		return ""
	}
	switch parts[len(parts)-1] {
	case "C", "c":
		return "C"
	case "P", "p":
		return "P"
	}
	return ""
}
