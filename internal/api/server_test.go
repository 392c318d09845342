package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aiiq-trading/aiiq-trader/internal/engine"
)

type staticPrices map[string]float64

func (p staticPrices) PriceOf(instrument string) (float64, bool) {
	px, ok := p[instrument]
	return px, ok
}

// mockAppState backs the API with a real engine so error mapping and JSON
// shapes are exercised end to end.
type mockAppState struct {
	engine  *engine.Engine
	running bool
	mode    string
}

func newMockAppState() *mockAppState {
	return &mockAppState{
		engine: engine.New(engine.Options{
			Prices: staticPrices{"BTC-PERPETUAL": 43000, "ETH-PERPETUAL": 2650},
			Rand:   rand.New(rand.NewSource(7)),
		}),
		running: true,
		mode:    "mock",
	}
}

func (m *mockAppState) IsRunning() bool       { return m.running }
func (m *mockAppState) OracleMode() string    { return m.mode }
func (m *mockAppState) Instruments() []string { return []string{"BTC-PERPETUAL", "ETH-PERPETUAL"} }
func (m *mockAppState) PlaceOrder(_ context.Context, ord engine.PaperOrder) (engine.OrderResult, error) {
	return m.engine.ExecuteOrder(ord)
}
func (m *mockAppState) Portfolio() engine.PortfolioSummary { return m.engine.Portfolio() }
func (m *mockAppState) SetRiskLimit(_ context.Context, limit engine.RiskLimit) engine.RiskLimit {
	return m.engine.SetRiskLimit(limit)
}
func (m *mockAppState) RiskLimit() (engine.RiskLimit, bool) { return m.engine.RiskLimit() }
func (m *mockAppState) Orders() []engine.OrderRecord        { return m.engine.Orders() }

func testServer(t *testing.T) (*Server, *mockAppState) {
	t.Helper()
	state := newMockAppState()
	return NewServer(":0", state, nil), state
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["ok"] != true {
		t.Error("expected ok=true")
	}
}

func TestHandleReadyNotRunning(t *testing.T) {
	s, state := testServer(t)
	state.running = false

	w := doRequest(s, http.MethodGet, "/api/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["reason"] != "app_not_running" {
		t.Errorf("expected reason=app_not_running, got %v", resp["reason"])
	}
}

func TestHandleStatus(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodGet, "/api/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["running"] != true {
		t.Error("expected running=true")
	}
	if resp["oracle_mode"] != "mock" {
		t.Errorf("expected oracle_mode=mock, got %v", resp["oracle_mode"])
	}
	if resp["cash"].(float64) != 100000 {
		t.Errorf("expected cash=100000, got %v", resp["cash"])
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodPost, "/paper/order",
		`{"side":"buy","instrument":"BTC-PERPETUAL","qty":10}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["order_id"] != "PAPER_000001" {
		t.Errorf("expected order_id=PAPER_000001, got %v", resp["order_id"])
	}
	if resp["status"] != "filled" {
		t.Errorf("expected status=filled, got %v", resp["status"])
	}
}

func TestPlaceOrderValidationError(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodPost, "/paper/order",
		`{"side":"buy","instrument":"BTC-PERPETUAL","qty":-5}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestPlaceOrderInsufficientPosition(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodPost, "/paper/order",
		`{"side":"sell","instrument":"BTC-PERPETUAL","qty":5}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestPlaceOrderRiskLimitExceeded(t *testing.T) {
	s, state := testServer(t)
	state.engine.SetRiskLimit(engine.RiskLimit{
		Policy:          "tiny",
		MaxPositionSize: engine.Float64Ptr(1000),
	})

	w := doRequest(s, http.MethodPost, "/paper/order",
		`{"side":"buy","instrument":"BTC-PERPETUAL","qty":10}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestPlaceOrderMalformedBody(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodPost, "/paper/order", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPlaceOrderMethodNotAllowed(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodGet, "/paper/order", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestPortfolioAfterOrder(t *testing.T) {
	s, _ := testServer(t)
	if w := doRequest(s, http.MethodPost, "/paper/order",
		`{"side":"buy","instrument":"ETH-PERPETUAL","qty":2}`); w.Code != http.StatusOK {
		t.Fatalf("order failed: %d", w.Code)
	}

	w := doRequest(s, http.MethodGet, "/paper/portfolio", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	positions := resp["positions"].([]interface{})
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	pos := positions[0].(map[string]interface{})
	if pos["instrument"] != "ETH-PERPETUAL" {
		t.Errorf("expected ETH-PERPETUAL position, got %v", pos["instrument"])
	}
}

func TestRiskLimitRoundTrip(t *testing.T) {
	s, _ := testServer(t)

	w := doRequest(s, http.MethodGet, "/api/risk", "")
	if resp := decodeBody(t, w); resp["active"] != false {
		t.Error("expected no active policy initially")
	}

	w = doRequest(s, http.MethodPost, "/risk/limit",
		`{"policy":"Max 1% per trade","max_position_size":5000,"max_var":0.05}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["policy"] != "Max 1% per trade" {
		t.Errorf("expected policy echoed back, got %v", resp["policy"])
	}
	if resp["created_at"] == nil {
		t.Error("expected created_at to be stamped")
	}

	w = doRequest(s, http.MethodGet, "/api/risk", "")
	if resp := decodeBody(t, w); resp["active"] != true {
		t.Error("expected active policy after set")
	}
}

func TestOrdersListing(t *testing.T) {
	s, _ := testServer(t)
	for i := 0; i < 3; i++ {
		if w := doRequest(s, http.MethodPost, "/paper/order",
			`{"side":"buy","instrument":"BTC-PERPETUAL","qty":1}`); w.Code != http.StatusOK {
			t.Fatalf("order %d failed: %d", i, w.Code)
		}
	}

	w := doRequest(s, http.MethodGet, "/api/orders", "")
	resp := decodeBody(t, w)
	if int(resp["count"].(float64)) != 3 {
		t.Errorf("expected 3 orders, got %v", resp["count"])
	}
}

func TestPaitScore(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodPost, "/pait/score",
		`{"name":"Test Commentator","monthly_return":25,"strategy_consistency":85,"risk_management":90,"cnbc_appearances":12,"public_statements":45,"portfolio_holdings":15,"recent_moves":8,"focus":"AI Technology Stocks"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	breakdown := resp["breakdown"].(map[string]interface{})
	if breakdown["composite"].(float64) <= 0 {
		t.Error("expected positive composite score")
	}
	if resp["event_id"] == "" {
		t.Error("expected telemetry event id")
	}
}

func TestPaitScoreBadTimestamp(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodPost, "/pait/score",
		`{"name":"X","last_updated":"not-a-time"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := testServer(t)
	w := doRequest(s, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
