package returns

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/marketdata"
)

func floatPtr(v float64) *float64 { return &v }

func TestForPositionEquity(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	pos := domain.Position{
		Symbol:      "AAPL",
		Kind:        domain.KindLongEquity,
		Quantity:    100,
		Multiplier:  1,
		MarketValue: 20000,
	}
	closes := []marketdata.ClosePoint{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 102},
	}

	ps := b.ForPosition(pos, closes)

	assert.False(t, ps.DeltaAdjusted)
	assert.False(t, ps.Degraded)
	require.Equal(t, 1, ps.Series.Len())
	assert.InDelta(t, 0.02, ps.Series.Values[0], 1e-9)
}

func TestForPositionPutFlipsSign(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	// Long put, delta -0.5: the underlying rallying 2% must produce a
	// -2% return on the position's exposure series.
	pos := domain.Position{
		Symbol:      "SPY250620P00500000",
		Underlying:  "SPY",
		Kind:        domain.KindLongPut,
		Quantity:    1,
		Multiplier:  100,
		MarketValue: 1500,
		Delta:       floatPtr(-0.5),
	}
	closes := []marketdata.ClosePoint{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 102},
	}

	ps := b.ForPosition(pos, closes)

	assert.True(t, ps.DeltaAdjusted)
	assert.False(t, ps.Degraded)
	require.Equal(t, 1, ps.Series.Len())
	assert.InDelta(t, -0.02, ps.Series.Values[0], 1e-9)
}

func TestForPositionCallTracksUnderlying(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	pos := domain.Position{
		Symbol:      "SPY250620C00500000",
		Underlying:  "SPY",
		Kind:        domain.KindLongCall,
		Quantity:    2,
		Multiplier:  100,
		MarketValue: 3000,
		Delta:       floatPtr(0.6),
	}
	closes := []marketdata.ClosePoint{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 101},
	}

	ps := b.ForPosition(pos, closes)

	// Constant delta cancels out of the ratio; the series is the
	// underlying's return with delta's sign.
	require.Equal(t, 1, ps.Series.Len())
	assert.InDelta(t, 0.01, ps.Series.Values[0], 1e-9)
}

func TestForPositionOptionWithoutDelta(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	pos := domain.Position{
		Symbol:      "SPY250620C00500000",
		Underlying:  "SPY",
		Kind:        domain.KindLongCall,
		Quantity:    1,
		Multiplier:  100,
		MarketValue: 1500,
	}
	closes := []marketdata.ClosePoint{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 102},
	}

	ps := b.ForPosition(pos, closes)

	assert.True(t, ps.Degraded)
	assert.False(t, ps.DeltaAdjusted)
	require.Equal(t, 1, ps.Series.Len())
	assert.InDelta(t, 0.02, ps.Series.Values[0], 1e-9)
}
