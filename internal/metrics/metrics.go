// Package metrics exposes Prometheus collectors for the paper-trading
// engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrdersFilled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paper_orders_filled_total",
		Help: "Total paper orders executed successfully.",
	})

	OrdersRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paper_orders_rejected_total",
		Help: "Total paper orders rejected, by reason.",
	}, []string{"reason"})

	FillsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paper_fills_total",
		Help: "Total simulated fills generated.",
	})

	TradedNotional = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paper_traded_notional_total",
		Help: "Total traded notional across all paper orders.",
	})

	CashBalance = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paper_cash_balance",
		Help: "Current paper cash balance.",
	})

	PortfolioValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paper_portfolio_value",
		Help: "Current mark-to-market portfolio value.",
	})

	PortfolioVaR = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paper_portfolio_var",
		Help: "Current portfolio VaR as a fraction of total value.",
	})

	OpenPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "paper_open_positions",
		Help: "Number of open positions in the ledger.",
	})
)

// Rejection reasons used as label values.
const (
	ReasonValidation           = "validation"
	ReasonRiskLimit            = "risk_limit"
	ReasonInsufficientPosition = "insufficient_position"
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		OrdersFilled,
		OrdersRejected,
		FillsGenerated,
		TradedNotional,
		CashBalance,
		PortfolioValue,
		PortfolioVaR,
		OpenPositions,
	)
}
