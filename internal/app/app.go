// Package app wires the trader together: price oracle, paper engine,
// journal, notifications and metrics.
package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aiiq-trading/aiiq-trader/internal/config"
	"github.com/aiiq-trading/aiiq-trader/internal/engine"
	"github.com/aiiq-trading/aiiq-trader/internal/journal"
	"github.com/aiiq-trading/aiiq-trader/internal/metrics"
	"github.com/aiiq-trading/aiiq-trader/internal/notify"
	"github.com/aiiq-trading/aiiq-trader/internal/oracle"
)

// Notifier defines the alert methods the app uses.
type Notifier interface {
	NotifyOrderFilled(ctx context.Context, orderID, instrument, side string, qty, avgPrice float64, fills int) error
	NotifyOrderRejected(ctx context.Context, instrument, side, reason string) error
	NotifyRiskLimitSet(ctx context.Context, policy string) error
	NotifyDailySummary(ctx context.Context, totalValue, cash, pnl float64, openPositions, orders int) error
}

type App struct {
	cfg    config.Config
	log    *zap.Logger
	engine *engine.Engine

	cache    *oracle.Cache       // non-nil in deribit mode
	feed     *oracle.DeribitFeed // non-nil in deribit mode
	journal  *journal.Journal    // nil when disabled
	notifier Notifier

	mu      sync.RWMutex
	running bool
}

// New builds the app from configuration.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{cfg: cfg, log: log}

	var prices engine.PriceSource
	switch cfg.Oracle.Mode {
	case "deribit":
		a.cache = oracle.NewCache()
		a.feed = oracle.NewDeribitFeed(oracle.DeribitConfig{
			URL:              cfg.Oracle.DeribitURL,
			Instruments:      cfg.Oracle.Instruments,
			ReconnectBackoff: cfg.Oracle.Reconnect,
		}, a.cache, log.Named("deribit"))
		prices = a.cache
	default:
		var rng *rand.Rand
		if cfg.Paper.RandomSeed != 0 {
			rng = rand.New(rand.NewSource(cfg.Paper.RandomSeed))
		}
		prices = oracle.NewMock(rng)
	}

	var engineRng *rand.Rand
	if cfg.Paper.RandomSeed != 0 {
		engineRng = rand.New(rand.NewSource(cfg.Paper.RandomSeed))
	}
	a.engine = engine.New(engine.Options{
		Prices:      prices,
		InitialCash: cfg.Paper.InitialCash,
		Rand:        engineRng,
		Logger:      log.Named("engine"),
	})

	if cfg.Risk.Enabled {
		limit := engine.RiskLimit{Policy: cfg.Risk.Policy}
		if cfg.Risk.MaxPositionSize > 0 {
			limit.MaxPositionSize = engine.Float64Ptr(cfg.Risk.MaxPositionSize)
		}
		if cfg.Risk.MaxVaR > 0 {
			limit.MaxVaR = engine.Float64Ptr(cfg.Risk.MaxVaR)
		}
		if cfg.Risk.MaxDrawdown > 0 {
			limit.MaxDrawdown = engine.Float64Ptr(cfg.Risk.MaxDrawdown)
		}
		if cfg.Risk.MaxLeverage > 0 {
			limit.MaxLeverage = engine.Float64Ptr(cfg.Risk.MaxLeverage)
		}
		a.engine.SetRiskLimit(limit)
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Dir)
		if err != nil {
			return nil, err
		}
		a.journal = j
	}

	a.notifier = notify.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	return a, nil
}

// Run blocks until ctx is cancelled, keeping the oracle feed alive in
// deribit mode.
func (a *App) Run(ctx context.Context) error {
	a.setRunning(true)
	defer a.setRunning(false)

	if a.feed != nil {
		go func() {
			if err := a.feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error("oracle feed stopped", zap.Error(err))
			}
		}()
	}

	<-ctx.Done()
	return ctx.Err()
}

func (a *App) setRunning(v bool) {
	a.mu.Lock()
	a.running = v
	a.mu.Unlock()
}

// IsRunning reports whether Run is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// OracleMode reports the configured price source.
func (a *App) OracleMode() string {
	if a.cfg.Oracle.Mode == "" {
		return "mock"
	}
	return a.cfg.Oracle.Mode
}

// Instruments lists instruments with live prices in deribit mode, or the
// configured set in mock mode.
func (a *App) Instruments() []string {
	if a.cache != nil {
		return a.cache.Instruments()
	}
	return a.cfg.Oracle.Instruments
}

// PlaceOrder executes a paper order, then journals, notifies and counts it.
func (a *App) PlaceOrder(ctx context.Context, ord engine.PaperOrder) (engine.OrderResult, error) {
	res, err := a.engine.ExecuteOrder(ord)
	if err != nil {
		reason := rejectionReason(err)
		metrics.OrdersRejected.WithLabelValues(reason).Inc()
		if nerr := a.notifier.NotifyOrderRejected(ctx, ord.Instrument, string(ord.Side), reason); nerr != nil {
			a.log.Warn("rejection notification failed", zap.Error(nerr))
		}
		return engine.OrderResult{}, err
	}

	metrics.OrdersFilled.Inc()
	metrics.FillsGenerated.Add(float64(len(res.Fills)))
	metrics.TradedNotional.Add(res.TotalFilled * res.AvgFillPrice)
	a.Portfolio()

	if a.journal != nil {
		if rec, ok := a.engine.Order(res.OrderID); ok {
			if err := a.journal.WriteOrder(res.OrderID, rec); err != nil {
				a.log.Warn("journal write failed", zap.String("order_id", res.OrderID), zap.Error(err))
			}
		}
	}
	if err := a.notifier.NotifyOrderFilled(ctx, res.OrderID, ord.Instrument, string(ord.Side), res.TotalFilled, res.AvgFillPrice, len(res.Fills)); err != nil {
		a.log.Warn("fill notification failed", zap.Error(err))
	}
	return res, nil
}

// Portfolio returns the current summary and refreshes the gauges.
func (a *App) Portfolio() engine.PortfolioSummary {
	summary := a.engine.Portfolio()
	metrics.CashBalance.Set(summary.Cash)
	metrics.PortfolioValue.Set(summary.TotalValue)
	metrics.PortfolioVaR.Set(summary.VaR)
	metrics.OpenPositions.Set(float64(len(summary.Positions)))
	return summary
}

// SetRiskLimit replaces the active policy and confirms via notification.
func (a *App) SetRiskLimit(ctx context.Context, limit engine.RiskLimit) engine.RiskLimit {
	applied := a.engine.SetRiskLimit(limit)
	if err := a.notifier.NotifyRiskLimitSet(ctx, applied.Policy); err != nil {
		a.log.Warn("risk limit notification failed", zap.Error(err))
	}
	return applied
}

// RiskLimit returns the active policy, if any.
func (a *App) RiskLimit() (engine.RiskLimit, bool) {
	return a.engine.RiskLimit()
}

// Orders returns all executed order records.
func (a *App) Orders() []engine.OrderRecord {
	return a.engine.Orders()
}

// WriteSnapshot journals the current portfolio state and pushes a summary
// notification.
func (a *App) WriteSnapshot(ctx context.Context) error {
	summary := a.Portfolio()
	if err := a.notifier.NotifyDailySummary(ctx, summary.TotalValue, summary.Cash,
		summary.TotalPnL, len(summary.Positions), len(a.Orders())); err != nil {
		a.log.Warn("summary notification failed", zap.Error(err))
	}
	if a.journal == nil {
		return nil
	}
	return a.journal.WriteSnapshot(time.Now().UTC(), summary)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return metrics.ReasonValidation
	case errors.Is(err, engine.ErrRiskLimitExceeded):
		return metrics.ReasonRiskLimit
	case errors.Is(err, engine.ErrInsufficientPosition):
		return metrics.ReasonInsufficientPosition
	}
	return "internal"
}
