package engine

import (
	"math"
	"math/rand"
	"time"
)

// Fill simulation parameters.
const (
	slippageRange     = 0.001  // uniform slippage in [-0.1%, +0.1%]
	impactPerThousand = 0.0001 // market impact per 1000 units
	partialThreshold  = 100.0  // orders above this split into partial fills
	partialMin        = 10     // partial fill size bounds
	partialMax        = 50
	partialJitter     = 0.0005 // extra per-fill perturbation for partials
)

// simulateFills turns an accepted order into one or more simulated fills
// around basePrice. Slippage is a uniform perturbation, market impact scales
// with order size (added for buys, subtracted for sells), and orders above
// partialThreshold split into randomly sized partial fills, each with its
// own small perturbation. Prices are rounded to 4 decimals.
//
// The rand source is owned by the caller; the engine serializes access.
func simulateFills(ord PaperOrder, basePrice float64, rng *rand.Rand, now func() time.Time) []Fill {
	slippage := -slippageRange + rng.Float64()*2*slippageRange
	impact := (ord.Quantity / 1000) * impactPerThousand

	var fillPrice float64
	if ord.Side == SideBuy {
		fillPrice = basePrice * (1 + slippage + impact)
	} else {
		fillPrice = basePrice * (1 + slippage - impact)
	}

	if ord.Quantity <= partialThreshold {
		return []Fill{{
			Quantity:  ord.Quantity,
			Price:     roundTo(fillPrice, 4),
			Timestamp: now(),
		}}
	}

	var fills []Fill
	remaining := ord.Quantity
	for remaining > 0 {
		qty := math.Min(remaining, float64(partialMin+rng.Intn(partialMax-partialMin+1)))
		jitter := -partialJitter + rng.Float64()*2*partialJitter
		fills = append(fills, Fill{
			Quantity:  qty,
			Price:     roundTo(fillPrice*(1+jitter), 4),
			Timestamp: now(),
		})
		remaining -= qty
	}
	return fills
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
