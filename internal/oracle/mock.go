package oracle

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// mockBase maps underlyings to reference prices. Instruments match by
// substring, so derivative names like BTC-PERP or ETH-26SEP25-3000-P
// resolve to their underlying.
var mockBase = []struct {
	underlying string
	price      float64
}{
	{"BTC", 43000},
	{"ETH", 2650},
	{"SOL", 98},
	{"SPY", 468},
	{"QQQ", 398},
}

const (
	mockDefaultPrice = 100.0
	mockJitter       = 0.02 // ±2% per lookup
)

// Mock is a random-walk price source for paper trading without a live feed.
// Each lookup perturbs the base price by up to ±2%.
type Mock struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMock creates a Mock. A nil rng gets a time-seeded source; pass a seeded
// one to pin prices in tests.
func NewMock(rng *rand.Rand) *Mock {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Mock{rng: rng}
}

func (m *Mock) PriceOf(instrument string) (float64, bool) {
	for _, base := range mockBase {
		if strings.Contains(instrument, base.underlying) {
			return base.price * (1 + m.jitter()), true
		}
	}
	return mockDefaultPrice, true
}

func (m *Mock) jitter() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return -mockJitter + m.rng.Float64()*2*mockJitter
}
