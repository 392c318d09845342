package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Millisecond)
		return at
	}
}

func TestSmallOrderSingleFill(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ord := PaperOrder{Side: SideBuy, Instrument: "SPY", Quantity: 100}

	fills := simulateFills(ord, 468, rng, fixedClock())
	require.Len(t, fills, 1)
	assert.Equal(t, 100.0, fills[0].Quantity)
	assert.InEpsilon(t, 468.0, fills[0].Price, 0.01)
}

func TestLargeOrderSplitsIntoPartials(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	ord := PaperOrder{Side: SideBuy, Instrument: "BTC", Quantity: 150}

	fills := simulateFills(ord, 43000, rng, fixedClock())
	require.Greater(t, len(fills), 1, "qty above 100 must produce partial fills")

	var total float64
	for _, f := range fills {
		total += f.Quantity
		assert.InEpsilon(t, 43000.0, f.Price, 0.01, "fill price out of band")
		assert.False(t, f.Timestamp.IsZero())
	}
	assert.Equal(t, 150.0, total, "fill quantities must sum to the order quantity")
}

func TestFillSumLawAcrossSizes(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, qty := range []float64{1, 37.5, 100, 101, 250, 1000} {
		fills := simulateFills(PaperOrder{Side: SideSell, Instrument: "ETH", Quantity: qty}, 2650, rng, fixedClock())
		require.NotEmpty(t, fills)

		var total float64
		for _, f := range fills {
			total += f.Quantity
		}
		assert.InDelta(t, qty, total, 1e-9, "qty=%v", qty)
	}
}

func TestPartialFillSizesBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	fills := simulateFills(PaperOrder{Side: SideBuy, Instrument: "BTC", Quantity: 500}, 43000, rng, fixedClock())

	for i, f := range fills {
		if i < len(fills)-1 {
			assert.GreaterOrEqual(t, f.Quantity, float64(partialMin))
			assert.LessOrEqual(t, f.Quantity, float64(partialMax))
		} else {
			// The last fill takes whatever remains.
			assert.Greater(t, f.Quantity, 0.0)
			assert.LessOrEqual(t, f.Quantity, float64(partialMax))
		}
	}
}

func TestSeededFillsAreReproducible(t *testing.T) {
	ord := PaperOrder{Side: SideBuy, Instrument: "BTC", Quantity: 300}
	clock := func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	a := simulateFills(ord, 43000, rand.New(rand.NewSource(99)), clock)
	b := simulateFills(ord, 43000, rand.New(rand.NewSource(99)), clock)
	assert.Equal(t, a, b)
}

func TestTimestampsNonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	fills := simulateFills(PaperOrder{Side: SideBuy, Instrument: "BTC", Quantity: 400}, 43000, rng, fixedClock())

	for i := 1; i < len(fills); i++ {
		assert.False(t, fills[i].Timestamp.Before(fills[i-1].Timestamp))
	}
}

func TestPricesRoundedToFourDecimals(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	fills := simulateFills(PaperOrder{Side: SideBuy, Instrument: "SOL", Quantity: 250}, 98.123456, rng, fixedClock())

	for _, f := range fills {
		assert.Equal(t, roundTo(f.Price, 4), f.Price)
	}
}
