package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func deltaPtr(v float64) *float64 { return &v }

func TestPositionKind(t *testing.T) {
	tests := []struct {
		kind     PositionKind
		valid    bool
		isOption bool
		isShort  bool
		sign     float64
	}{
		{KindLongEquity, true, false, false, 1},
		{KindShortEquity, true, false, true, -1},
		{KindLongCall, true, true, false, 1},
		{KindLongPut, true, true, false, 1},
		{KindShortCall, true, true, true, -1},
		{KindShortPut, true, true, true, -1},
		{PositionKind("futures"), false, false, false, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.kind.Valid())
			assert.Equal(t, tt.isOption, tt.kind.IsOption())
			assert.Equal(t, tt.isShort, tt.kind.IsShort())
			assert.Equal(t, tt.sign, tt.kind.Sign())
		})
	}
}

func TestSignedExposure(t *testing.T) {
	long := Position{Symbol: "AAPL", Kind: KindLongEquity, MarketValue: 100000}
	short := Position{Symbol: "XYZ", Kind: KindShortEquity, MarketValue: 30000}

	assert.Equal(t, 100000.0, long.SignedExposure())
	assert.Equal(t, -30000.0, short.SignedExposure())
}

func TestRegressionSymbol(t *testing.T) {
	equity := Position{Symbol: "AAPL", Kind: KindLongEquity}
	option := Position{Symbol: "SPY250620C00500000", Underlying: "SPY", Kind: KindLongCall}

	assert.Equal(t, "AAPL", equity.RegressionSymbol())
	assert.Equal(t, "SPY", option.RegressionSymbol())
}

func TestPositionValidate(t *testing.T) {
	tests := []struct {
		name    string
		pos     Position
		wantErr bool
	}{
		{
			name:    "valid equity",
			pos:     Position{Symbol: "AAPL", Kind: KindLongEquity, Quantity: 100, Multiplier: 1, MarketValue: 10000},
			wantErr: false,
		},
		{
			name:    "valid option",
			pos:     Position{Symbol: "OPT", Underlying: "SPY", Kind: KindShortPut, Quantity: 1, Multiplier: 100, MarketValue: 1500, Delta: deltaPtr(-0.4)},
			wantErr: false,
		},
		{
			name:    "unknown kind",
			pos:     Position{Symbol: "AAPL", Kind: "futures", Multiplier: 1, MarketValue: 100},
			wantErr: true,
		},
		{
			name:    "negative market value",
			pos:     Position{Symbol: "AAPL", Kind: KindLongEquity, Multiplier: 1, MarketValue: -1},
			wantErr: true,
		},
		{
			name:    "zero multiplier",
			pos:     Position{Symbol: "AAPL", Kind: KindLongEquity, Multiplier: 0, MarketValue: 100},
			wantErr: true,
		},
		{
			name:    "option without underlying",
			pos:     Position{Symbol: "OPT", Kind: KindLongCall, Multiplier: 100, MarketValue: 100},
			wantErr: true,
		},
		{
			name:    "option delta out of range",
			pos:     Position{Symbol: "OPT", Underlying: "SPY", Kind: KindLongCall, Multiplier: 100, MarketValue: 100, Delta: deltaPtr(1.5)},
			wantErr: true,
		},
		{
			name:    "equity carrying a delta",
			pos:     Position{Symbol: "AAPL", Kind: KindLongEquity, Multiplier: 1, MarketValue: 100, Delta: deltaPtr(0.5)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.pos.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFactorTable(t *testing.T) {
	factors := Factors()
	assert.Len(t, factors, 8)

	f, ok := FactorByName("Market")
	assert.True(t, ok)
	assert.Equal(t, "SPY", f.ProxySymbol)

	_, ok = FactorByName("Momentum")
	assert.False(t, ok)

	// Returned slice is a copy; mutating it must not corrupt the table
	factors[0].ProxySymbol = "HACK"
	f, _ = FactorByName("Market")
	assert.Equal(t, "SPY", f.ProxySymbol)
}
