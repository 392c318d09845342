package engine

import (
	"fmt"
	"time"
)

// applyFills commits a batch of fills to the ledger and cash balance.
// The whole batch is atomic: a sell that exceeds the held quantity is
// rejected before any mutation. Caller holds the write lock.
func (e *Engine) applyFills(ord PaperOrder, fills []Fill, now time.Time) error {
	var totalQty, totalValue float64
	for _, f := range fills {
		totalQty += f.Quantity
		totalValue += f.Quantity * f.Price
	}
	avgPrice := totalValue / totalQty

	if ord.Side == SideBuy {
		if pos, ok := e.positions[ord.Instrument]; ok {
			newQty := pos.Quantity + totalQty
			pos.AvgPrice = (pos.Quantity*pos.AvgPrice + totalValue) / newQty
			pos.Quantity = newQty
			pos.LastUpdate = now
		} else {
			e.positions[ord.Instrument] = &Position{
				Instrument: ord.Instrument,
				Quantity:   totalQty,
				AvgPrice:   avgPrice,
				EntryTime:  now,
				LastUpdate: now,
			}
		}
		e.cash -= totalValue
		return nil
	}

	// Sell. Short positions are not modeled: the full batch must be covered
	// by the held quantity.
	pos, ok := e.positions[ord.Instrument]
	if !ok {
		return fmt.Errorf("%w: %s not held", ErrInsufficientPosition, ord.Instrument)
	}
	if pos.Quantity < totalQty {
		return fmt.Errorf("%w: %s held %v, sell %v",
			ErrInsufficientPosition, ord.Instrument, pos.Quantity, totalQty)
	}

	pos.RealizedPnL += (avgPrice - pos.AvgPrice) * totalQty
	pos.Quantity -= totalQty
	pos.LastUpdate = now
	if pos.Quantity == 0 {
		delete(e.positions, ord.Instrument)
	}
	e.cash += totalValue
	return nil
}
