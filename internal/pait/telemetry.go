package pait

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is one telemetry record emitted during scoring or trading, carrying
// a content hash of its payload for later audit.
type Event struct {
	Agent     string         `json:"agent"`
	Component string         `json:"component"`
	EventType string         `json:"event_type"`
	EventID   string         `json:"event_id"`
	SessionID string         `json:"session_id"`
	Payload   map[string]any `json:"payload"`
	FactsHash string         `json:"facts_hash"`
	TS        time.Time      `json:"ts"`
}

// Emitter assigns session-scoped event ids and logs events. Forwarding to a
// remote collector is out of scope here; callers get the event back and can
// ship it wherever they like.
type Emitter struct {
	mu        sync.Mutex
	component string
	sessionID string
	counter   int
	log       *zap.Logger
}

func NewEmitter(component string, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{
		component: component,
		sessionID: fmt.Sprintf("aiiq_%d_%s", time.Now().Unix(), uuid.NewString()[:8]),
		log:       log,
	}
}

// SessionID returns the emitter's session identifier.
func (e *Emitter) SessionID() string {
	return e.sessionID
}

// Emit builds and logs an event. Event ids are dense within a session.
func (e *Emitter) Emit(eventType string, payload map[string]any) Event {
	e.mu.Lock()
	id := fmt.Sprintf("%s_%06d", e.sessionID, e.counter)
	e.counter++
	e.mu.Unlock()

	ev := Event{
		Agent:     "claudia",
		Component: e.component,
		EventType: eventType,
		EventID:   id,
		SessionID: e.sessionID,
		Payload:   payload,
		FactsHash: hashFacts(payload),
		TS:        time.Now().UTC(),
	}
	e.log.Info("pait event",
		zap.String("event_type", ev.EventType),
		zap.String("event_id", ev.EventID),
		zap.String("facts_hash", ev.FactsHash),
	)
	return ev
}

func hashFacts(payload map[string]any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
