package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultDeribitURL       = "wss://www.deribit.com/ws/api/v2"
	defaultReconnectBackoff = 5 * time.Second
	deribitReadTimeout      = 30 * time.Second
)

// DeribitConfig configures the public ticker feed.
type DeribitConfig struct {
	URL              string
	Instruments      []string
	ReconnectBackoff time.Duration
}

// DeribitFeed subscribes to public ticker channels over Deribit's JSON-RPC
// websocket and writes last prices into a Cache. Only public data is used;
// no authentication.
type DeribitFeed struct {
	cfg   DeribitConfig
	cache *Cache
	log   *zap.Logger

	nextID int
}

func NewDeribitFeed(cfg DeribitConfig, cache *Cache, log *zap.Logger) *DeribitFeed {
	if cfg.URL == "" {
		cfg.URL = defaultDeribitURL
	}
	if cfg.ReconnectBackoff <= 0 {
		cfg.ReconnectBackoff = defaultReconnectBackoff
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DeribitFeed{cfg: cfg, cache: cache, log: log}
}

type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params,omitempty"`
}

type rpcMessage struct {
	Method string `json:"method"`
	Params struct {
		Channel string `json:"channel"`
		Data    struct {
			InstrumentName string  `json:"instrument_name"`
			LastPrice      float64 `json:"last_price"`
			MarkPrice      float64 `json:"mark_price"`
		} `json:"data"`
	} `json:"params"`
}

// Run connects and pumps ticker updates into the cache until ctx is
// cancelled, reconnecting with a fixed backoff on any failure.
func (f *DeribitFeed) Run(ctx context.Context) error {
	for {
		if err := f.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn("deribit feed disconnected", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.cfg.ReconnectBackoff):
		}
	}
}

func (f *DeribitFeed) runOnce(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, f.cfg.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.cfg.URL, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	if err := f.subscribe(conn); err != nil {
		return err
	}
	f.log.Info("deribit feed connected",
		zap.String("url", f.cfg.URL),
		zap.Strings("instruments", f.cfg.Instruments),
	)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(deribitReadTimeout)); err != nil {
			return err
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		f.handleMessage(payload)
	}
}

func (f *DeribitFeed) subscribe(conn *websocket.Conn) error {
	channels := make([]string, 0, len(f.cfg.Instruments))
	for _, ins := range f.cfg.Instruments {
		channels = append(channels, "ticker."+ins+".100ms")
	}
	f.nextID++
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      f.nextID,
		Method:  "public/subscribe",
		Params:  map[string]any{"channels": channels},
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

func (f *DeribitFeed) handleMessage(payload []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		f.log.Debug("deribit: unparseable message", zap.Error(err))
		return
	}
	if msg.Method != "subscription" || msg.Params.Data.InstrumentName == "" {
		return
	}
	price := msg.Params.Data.LastPrice
	if price <= 0 {
		price = msg.Params.Data.MarkPrice
	}
	if price <= 0 {
		return
	}
	f.cache.Set(msg.Params.Data.InstrumentName, price)
}
