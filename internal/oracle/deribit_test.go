package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestDeribitFeedUpdatesCache(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Consume the subscribe request, then push one ticker update.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		tick := map[string]any{
			"method": "subscription",
			"params": map[string]any{
				"channel": "ticker.BTC-PERPETUAL.100ms",
				"data": map[string]any{
					"instrument_name": "BTC-PERPETUAL",
					"last_price":      43123.5,
				},
			},
		}
		_ = conn.WriteJSON(tick)
		// Hold the connection open until the client goes away.
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	cache := NewCache()
	feed := NewDeribitFeed(DeribitConfig{
		URL:         "ws" + strings.TrimPrefix(srv.URL, "http"),
		Instruments: []string{"BTC-PERPETUAL"},
	}, cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	require.Eventually(t, func() bool {
		p, ok := cache.PriceOf("BTC-PERPETUAL")
		return ok && p == 43123.5
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop on context cancel")
	}
}

func TestDeribitFeedIgnoresGarbage(t *testing.T) {
	cache := NewCache()
	feed := NewDeribitFeed(DeribitConfig{}, cache, nil)

	feed.handleMessage([]byte("not json"))
	feed.handleMessage([]byte(`{"method":"heartbeat"}`))
	feed.handleMessage([]byte(`{"method":"subscription","params":{"channel":"x","data":{"instrument_name":"ETH-PERPETUAL","last_price":0}}}`))

	require.Empty(t, cache.Instruments())
}
