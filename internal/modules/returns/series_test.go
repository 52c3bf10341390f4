package returns

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/modules/marketdata"
)

func TestFromCloses(t *testing.T) {
	points := []marketdata.ClosePoint{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 101},
		{Date: "2025-01-06", Close: 102.01},
	}

	s := FromCloses(points)

	require.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"2025-01-03", "2025-01-06"}, s.Dates)
	assert.InDelta(t, 0.01, s.Values[0], 1e-9)
	assert.InDelta(t, 0.01, s.Values[1], 1e-9)
}

func TestFromClosesMissingPrice(t *testing.T) {
	// One missing price must produce exactly one missing observation; the
	// next observed day carries the return over the whole gap.
	points := []marketdata.ClosePoint{
		{Date: "2025-01-02", Close: 100},
		{Date: "2025-01-03", Close: 101},
		{Date: "2025-01-06", Missing: true},
		{Date: "2025-01-07", Close: 103},
	}

	s := FromCloses(points)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Observed())
	assert.InDelta(t, 0.01, s.Values[0], 1e-9)
	assert.True(t, math.IsNaN(s.Values[1]))
	assert.InDelta(t, 103.0/101.0-1, s.Values[2], 1e-9)
}

func TestFromClosesLeadingMissing(t *testing.T) {
	points := []marketdata.ClosePoint{
		{Date: "2025-01-02", Missing: true},
		{Date: "2025-01-03", Close: 100},
		{Date: "2025-01-06", Close: 102},
	}

	s := FromCloses(points)

	require.Equal(t, 2, s.Len())
	assert.True(t, math.IsNaN(s.Values[0]))
	assert.InDelta(t, 0.02, s.Values[1], 1e-9)
}

func TestFromClosesTooShort(t *testing.T) {
	assert.Equal(t, 0, FromCloses(nil).Len())
	assert.Equal(t, 0, FromCloses([]marketdata.ClosePoint{{Date: "2025-01-02", Close: 100}}).Len())
}

func TestAlign(t *testing.T) {
	a := Series{
		Dates:  []string{"2025-01-02", "2025-01-03", "2025-01-06", "2025-01-07"},
		Values: []float64{0.01, math.NaN(), 0.02, 0.03},
	}
	b := Series{
		Dates:  []string{"2025-01-02", "2025-01-03", "2025-01-06"},
		Values: []float64{0.005, 0.01, math.NaN()},
	}

	x, y := Align(a, b)

	// Only 2025-01-02 survives: the 3rd is NaN in a, the 6th NaN in b,
	// the 7th absent from b entirely.
	require.Len(t, x, 1)
	require.Len(t, y, 1)
	assert.InDelta(t, 0.01, x[0], 1e-9)
	assert.InDelta(t, 0.005, y[0], 1e-9)
}

func TestAlignDisjointDates(t *testing.T) {
	a := Series{Dates: []string{"2025-01-02"}, Values: []float64{0.01}}
	b := Series{Dates: []string{"2025-01-03"}, Values: []float64{0.02}}

	x, y := Align(a, b)
	assert.Empty(t, x)
	assert.Empty(t, y)
}
