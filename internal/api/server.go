// Package api exposes the paper trader over HTTP: order placement,
// portfolio reads, risk policy management, pAIt scoring and Prometheus
// metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aiiq-trading/aiiq-trader/internal/engine"
	"github.com/aiiq-trading/aiiq-trader/internal/pait"
)

// AppState exposes the trading app's state for the API layer.
type AppState interface {
	IsRunning() bool
	OracleMode() string
	Instruments() []string
	PlaceOrder(ctx context.Context, ord engine.PaperOrder) (engine.OrderResult, error)
	Portfolio() engine.PortfolioSummary
	SetRiskLimit(ctx context.Context, limit engine.RiskLimit) engine.RiskLimit
	RiskLimit() (engine.RiskLimit, bool)
	Orders() []engine.OrderRecord
}

// Server is a lightweight HTTP API for the paper trader.
type Server struct {
	httpServer *http.Server
	appState   AppState
	emitter    *pait.Emitter
	log        *zap.Logger
	startedAt  time.Time
}

// NewServer creates a new API server bound to addr.
func NewServer(addr string, appState AppState, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		appState:  appState,
		emitter:   pait.NewEmitter("api", log.Named("pait")),
		log:       log,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/ready", s.handleReady)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/risk", s.handleRisk)
	mux.HandleFunc("/paper/order", s.handlePaperOrder)
	mux.HandleFunc("/paper/portfolio", s.handlePortfolio)
	mux.HandleFunc("/risk/limit", s.handleRiskLimit)
	mux.HandleFunc("/pait/score", s.handlePaitScore)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info("api server listening", zap.String("addr", s.httpServer.Addr))
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("api server", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// GET /api/health — liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"uptime_s": time.Since(s.startedAt).Seconds(),
	})
}

// GET /api/ready — readiness probe.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	ready := s.appState.IsRunning()
	resp := map[string]interface{}{
		"ready":       ready,
		"oracle_mode": s.appState.OracleMode(),
		"uptime_s":    time.Since(s.startedAt).Seconds(),
	}
	status := http.StatusOK
	if !ready {
		resp["reason"] = "app_not_running"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}

// GET /api/status — overall system status.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	summary := s.appState.Portfolio()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"running":     s.appState.IsRunning(),
		"oracle_mode": s.appState.OracleMode(),
		"uptime_s":    time.Since(s.startedAt).Seconds(),
		"orders":      len(s.appState.Orders()),
		"cash":        summary.Cash,
		"total_value": summary.TotalValue,
		"total_pnl":   summary.TotalPnL,
		"instruments": s.appState.Instruments(),
	})
}

// GET /api/orders — executed order records.
func (s *Server) handleOrders(w http.ResponseWriter, _ *http.Request) {
	orders := s.appState.Orders()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	})
}

// GET /api/risk — the active risk policy, if any.
func (s *Server) handleRisk(w http.ResponseWriter, _ *http.Request) {
	limit, ok := s.appState.RiskLimit()
	if !ok {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"active": false})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"active": true,
		"limit":  limit,
	})
}

// POST /paper/order — execute a paper order.
func (s *Server) handlePaperOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var ord engine.PaperOrder
	if err := json.NewDecoder(r.Body).Decode(&ord); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.appState.PlaceOrder(r.Context(), ord)
	if err != nil {
		s.writeError(w, orderErrorStatus(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func orderErrorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrRiskLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInsufficientPosition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// GET /paper/portfolio — current portfolio summary.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.appState.Portfolio())
}

// POST /risk/limit — set the active risk policy.
func (s *Server) handleRiskLimit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var limit engine.RiskLimit
	if err := json.NewDecoder(r.Body).Decode(&limit); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	applied := s.appState.SetRiskLimit(r.Context(), limit)
	s.writeJSON(w, http.StatusOK, applied)
}

type paitScoreRequest struct {
	Name                string   `json:"name"`
	MonthlyReturn       *float64 `json:"monthly_return"`
	Avg24MonthReturn    *float64 `json:"avg_24_month_return"`
	StrategyConsistency *float64 `json:"strategy_consistency"`
	RiskManagement      *float64 `json:"risk_management"`
	Focus               string   `json:"focus"`
	CNBCAppearances     int      `json:"cnbc_appearances"`
	PublicStatements    int      `json:"public_statements"`
	PortfolioHoldings   int      `json:"portfolio_holdings"`
	RecentMoves         int      `json:"recent_moves"`
	LastUpdated         string   `json:"last_updated"` // RFC 3339, optional
}

// POST /pait/score — score a commentator or strategy profile.
func (s *Server) handlePaitScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req paitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	profile := pait.Profile{
		Name:                req.Name,
		MonthlyReturn:       req.MonthlyReturn,
		Avg24MonthReturn:    req.Avg24MonthReturn,
		StrategyConsistency: req.StrategyConsistency,
		RiskManagement:      req.RiskManagement,
		Focus:               req.Focus,
		CNBCAppearances:     req.CNBCAppearances,
		PublicStatements:    req.PublicStatements,
		PortfolioHoldings:   req.PortfolioHoldings,
		RecentMoves:         req.RecentMoves,
	}
	if req.LastUpdated != "" {
		ts, err := time.Parse(time.RFC3339, req.LastUpdated)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		profile.LastUpdated = ts
	}

	breakdown := pait.Score(profile, time.Now().UTC())
	ev := s.emitter.Emit("pait_score", map[string]any{
		"name":      profile.Name,
		"composite": breakdown.Composite,
		"rating":    breakdown.Rating,
		"grade":     breakdown.Grade,
	})

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":       profile.Name,
		"breakdown":  breakdown,
		"event_id":   ev.EventID,
		"session_id": ev.SessionID,
	})
}
