package engine

import "time"

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// PaperOrder is an order request submitted to the engine. It is not persisted
// beyond the record produced when it executes.
type PaperOrder struct {
	Side        Side    `json:"side"`
	Instrument  string  `json:"instrument"`
	Quantity    float64 `json:"qty"`
	Price       float64 `json:"price,omitempty"`
	OrderType   string  `json:"type,omitempty"`
	TimeInForce string  `json:"time_in_force,omitempty"`
}

// Fill is a single simulated execution of part of an order.
type Fill struct {
	Quantity  float64   `json:"qty"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// Position is one currently held instrument. Quantity is always positive
// while the position is in the ledger; a position that reaches exactly zero
// is removed.
type Position struct {
	Instrument    string    `json:"instrument"`
	Quantity      float64   `json:"qty"`
	AvgPrice      float64   `json:"avg_px"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	RealizedPnL   float64   `json:"realized_pnl"`
	EntryTime     time.Time `json:"entry_time"`
	LastUpdate    time.Time `json:"last_update"`
}

// RiskLimit is a named risk policy. Nil caps are unconstrained.
type RiskLimit struct {
	Policy          string    `json:"policy"`
	MaxPositionSize *float64  `json:"max_position_size,omitempty"`
	MaxVaR          *float64  `json:"max_var,omitempty"`
	MaxDrawdown     *float64  `json:"max_drawdown,omitempty"`
	MaxLeverage     *float64  `json:"max_leverage,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OrderResult is returned to the caller after a successful execution.
type OrderResult struct {
	OrderID      string    `json:"order_id"`
	Status       string    `json:"status"`
	Fills        []Fill    `json:"fills"`
	TotalFilled  float64   `json:"total_filled"`
	AvgFillPrice float64   `json:"avg_fill_price"`
	Commission   float64   `json:"commission"`
	Timestamp    time.Time `json:"timestamp"`
}

// OrderRecord is the stored result of an executed order. Records are created
// at execution time and never mutated or deleted.
type OrderRecord struct {
	OrderID   string     `json:"order_id"`
	Order     PaperOrder `json:"order"`
	Fills     []Fill     `json:"fills"`
	Status    string     `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// Greeks are aggregate option sensitivities for the portfolio.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// PortfolioSummary is a point-in-time view of the portfolio, recomputed on
// demand from the ledger, cash and current oracle prices.
type PortfolioSummary struct {
	TotalValue      float64    `json:"total_value"`
	Cash            float64    `json:"cash"`
	Positions       []Position `json:"positions"`
	TotalPnL        float64    `json:"total_pnl"`
	TotalPnLPercent float64    `json:"total_pnl_percent"`
	Greeks          Greeks     `json:"greeks"`
	VaR             float64    `json:"var"`
	Timestamp       time.Time  `json:"timestamp"`
}

// PriceSource provides a reference price for an instrument. Implementations
// must be cheap to call; the engine consults it inside its read paths.
// The second return reports whether a price is known.
type PriceSource interface {
	PriceOf(instrument string) (float64, bool)
}
