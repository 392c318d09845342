// Package notify sends trading alerts to a Telegram chat via the Bot API.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Notifier sends alerts to a Telegram chat. It is inert when credentials are
// missing, so callers never need to branch on configuration.
type Notifier struct {
	botToken   string
	chatID     string
	httpClient *http.Client
	enabled    bool
	baseURL    string // overridable for testing; defaults to Telegram API
}

// NewNotifier creates a Notifier. Notifications are enabled only when both
// botToken and chatID are non-empty.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken:   botToken,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		enabled:    botToken != "" && chatID != "",
	}
}

// Enabled reports whether the notifier is active.
func (n *Notifier) Enabled() bool { return n.enabled }

// Send posts a message to the configured Telegram chat.
func (n *Notifier) Send(ctx context.Context, msg string) error {
	if !n.enabled {
		return nil
	}

	endpoint := n.baseURL
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	}
	vals := url.Values{
		"chat_id":    {n.chatID},
		"text":       {msg},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.URL.RawQuery = vals.Encode()

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("notify: telegram %d: %s", resp.StatusCode, body.Description)
	}
	return nil
}

// NotifyOrderFilled sends an execution alert for a completed paper order.
func (n *Notifier) NotifyOrderFilled(ctx context.Context, orderID, instrument, side string, qty, avgPrice float64, fills int) error {
	msg := fmt.Sprintf(
		"<b>Paper Fill</b>\nOrder: <code>%s</code>\nInstrument: <code>%s</code>\nSide: %s\nQty: %.4f\nAvg Px: %.4f\nFills: %d",
		orderID, instrument, side, qty, avgPrice, fills,
	)
	return n.Send(ctx, msg)
}

// NotifyOrderRejected sends a rejection alert (validation, risk limit or
// insufficient position).
func (n *Notifier) NotifyOrderRejected(ctx context.Context, instrument, side, reason string) error {
	msg := fmt.Sprintf(
		"<b>Order Rejected</b>\nInstrument: <code>%s</code>\nSide: %s\nReason: %s",
		instrument, side, reason,
	)
	return n.Send(ctx, msg)
}

// NotifyRiskLimitSet confirms a new active risk policy.
func (n *Notifier) NotifyRiskLimitSet(ctx context.Context, policy string) error {
	return n.Send(ctx, fmt.Sprintf("<b>Risk Policy Updated</b>\nPolicy: %s", policy))
}

// NotifyDailySummary sends a daily portfolio summary.
func (n *Notifier) NotifyDailySummary(ctx context.Context, totalValue, cash, pnl float64, openPositions, orders int) error {
	msg := fmt.Sprintf(
		"<b>Daily Summary</b>\nTotal Value: %.2f\nCash: %.2f\nPnL: %.2f\nOpen Positions: %d\nOrders: %d",
		totalValue, cash, pnl, openPositions, orders,
	)
	return n.Send(ctx, msg)
}
