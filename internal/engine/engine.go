// Package engine implements the paper-trading risk engine: order validation,
// risk-limit enforcement, stochastic fill simulation, atomic position-ledger
// accounting and portfolio summarization.
package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultInitialCash = 100000.0

// Options configures a new Engine.
type Options struct {
	// Prices is the instrument price oracle. Required.
	Prices PriceSource
	// InitialCash is the starting cash balance. Defaults to 100000.
	InitialCash float64
	// Rand is the randomness source for fill simulation. Seed it in tests to
	// pin outputs. Defaults to a time-seeded source.
	Rand *rand.Rand
	// Greeks overrides the portfolio greeks model. Defaults to
	// HeuristicGreeksModel.
	Greeks GreeksModel
	// Logger defaults to zap.NewNop().
	Logger *zap.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine is the single owner of the position ledger, cash balance, risk
// limits and order records. All mutation is serialized behind the write
// lock; reads take consistent snapshots under the read lock.
type Engine struct {
	mu sync.RWMutex

	prices PriceSource
	greeks GreeksModel
	rng    *rand.Rand
	log    *zap.Logger
	now    func() time.Time

	cash         float64
	positions    map[string]*Position
	limits       map[string]RiskLimit
	orders       map[string]OrderRecord
	orderCounter int
}

// New creates an Engine with an empty ledger and no active risk policy.
func New(opts Options) *Engine {
	if opts.Prices == nil {
		panic("engine: Options.Prices is required")
	}
	cash := opts.InitialCash
	if cash <= 0 {
		cash = defaultInitialCash
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	greeks := opts.Greeks
	if greeks == nil {
		greeks = HeuristicGreeksModel{}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		prices:    opts.Prices,
		greeks:    greeks,
		rng:       rng,
		log:       log,
		now:       now,
		cash:      cash,
		positions: make(map[string]*Position),
		limits:    make(map[string]RiskLimit),
		orders:    make(map[string]OrderRecord),
	}
}

// ExecuteOrder runs an order through validate → risk check → fill simulation
// → ledger update → record. A failure at any step aborts with no state
// change. Only successful orders consume an order id, so ids are dense and
// strictly increasing in completion order.
func (e *Engine) ExecuteOrder(ord PaperOrder) (OrderResult, error) {
	if err := validateOrder(ord); err != nil {
		return OrderResult{}, err
	}

	// The oracle lookup happens before the write lock so a slow price feed
	// never stalls readers or other writers.
	basePrice := e.referencePrice(ord.Instrument)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkRiskLimits(ord, basePrice); err != nil {
		return OrderResult{}, err
	}

	fills := simulateFills(ord, basePrice, e.rng, e.now)

	now := e.now()
	if err := e.applyFills(ord, fills, now); err != nil {
		return OrderResult{}, err
	}

	e.orderCounter++
	orderID := fmt.Sprintf("PAPER_%06d", e.orderCounter)
	e.orders[orderID] = OrderRecord{
		OrderID:   orderID,
		Order:     ord,
		Fills:     fills,
		Status:    "filled",
		Timestamp: now,
	}

	var totalFilled, totalNotional float64
	for _, f := range fills {
		totalFilled += f.Quantity
		totalNotional += f.Quantity * f.Price
	}

	e.log.Info("paper order filled",
		zap.String("order_id", orderID),
		zap.String("instrument", ord.Instrument),
		zap.String("side", string(ord.Side)),
		zap.Float64("qty", totalFilled),
		zap.Float64("avg_px", totalNotional/totalFilled),
		zap.Int("fills", len(fills)),
	)

	return OrderResult{
		OrderID:      orderID,
		Status:       "filled",
		Fills:        fills,
		TotalFilled:  totalFilled,
		AvgFillPrice: totalNotional / totalFilled,
		Commission:   0, // paper trading charges no commission
		Timestamp:    now,
	}, nil
}

// Order returns a stored order record by id.
func (e *Engine) Order(orderID string) (OrderRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rec, ok := e.orders[orderID]
	return rec, ok
}

// Orders returns all stored order records, newest last.
func (e *Engine) Orders() []OrderRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]OrderRecord, 0, len(e.orders))
	for i := 1; i <= e.orderCounter; i++ {
		if rec, ok := e.orders[fmt.Sprintf("PAPER_%06d", i)]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Cash returns the current cash balance.
func (e *Engine) Cash() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cash
}
