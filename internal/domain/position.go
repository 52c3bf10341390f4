package domain

import "fmt"

// PositionKind identifies one of the six supported holding types.
type PositionKind string

const (
	KindLongEquity  PositionKind = "long_equity"
	KindShortEquity PositionKind = "short_equity"
	KindLongCall    PositionKind = "long_call"
	KindLongPut     PositionKind = "long_put"
	KindShortCall   PositionKind = "short_call"
	KindShortPut    PositionKind = "short_put"
)

// AllPositionKinds is the closed set of kinds the engine understands.
var AllPositionKinds = []PositionKind{
	KindLongEquity,
	KindShortEquity,
	KindLongCall,
	KindLongPut,
	KindShortCall,
	KindShortPut,
}

// Valid reports whether k is one of the six supported kinds.
func (k PositionKind) Valid() bool {
	switch k {
	case KindLongEquity, KindShortEquity, KindLongCall, KindLongPut, KindShortCall, KindShortPut:
		return true
	}
	return false
}

// IsOption reports whether the kind is an options contract.
func (k PositionKind) IsOption() bool {
	switch k {
	case KindLongCall, KindLongPut, KindShortCall, KindShortPut:
		return true
	}
	return false
}

// IsShort reports whether the kind represents a short holding.
func (k PositionKind) IsShort() bool {
	switch k {
	case KindShortEquity, KindShortCall, KindShortPut:
		return true
	}
	return false
}

// Sign returns -1 for short kinds and +1 otherwise.
func (k PositionKind) Sign() float64 {
	if k.IsShort() {
		return -1
	}
	return 1
}

// Position represents a single portfolio holding. Equities carry no delta;
// options always do (Delta is nil for equities).
type Position struct {
	PortfolioID string       `json:"portfolio_id"`
	Symbol      string       `json:"symbol"`
	Underlying  string       `json:"underlying,omitempty"`
	Kind        PositionKind `json:"kind"`
	Quantity    float64      `json:"quantity"`
	Multiplier  float64      `json:"multiplier"`
	MarketValue float64      `json:"market_value"`
	Delta       *float64     `json:"delta,omitempty"`
}

// SignedExposure returns the position's market value with sign flipped for
// short positions.
func (p Position) SignedExposure() float64 {
	return p.MarketValue * p.Kind.Sign()
}

// RegressionSymbol returns the instrument whose price history drives the
// position's return series: the underlying for options, the instrument
// itself for equities.
func (p Position) RegressionSymbol() string {
	if p.Kind.IsOption() && p.Underlying != "" {
		return p.Underlying
	}
	return p.Symbol
}

// Validate checks the structural invariants of a position.
func (p Position) Validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: unknown position kind %q", ErrConfiguration, p.Kind)
	}
	if p.MarketValue < 0 {
		return fmt.Errorf("%w: market value must be non-negative, got %f", ErrConfiguration, p.MarketValue)
	}
	if p.Multiplier <= 0 {
		return fmt.Errorf("%w: multiplier must be positive, got %f", ErrConfiguration, p.Multiplier)
	}
	if p.Kind.IsOption() {
		if p.Underlying == "" {
			return fmt.Errorf("%w: option position %s missing underlying", ErrConfiguration, p.Symbol)
		}
		if p.Delta != nil && (*p.Delta < -1 || *p.Delta > 1) {
			return fmt.Errorf("%w: option delta must be in [-1, 1], got %f", ErrConfiguration, *p.Delta)
		}
	} else if p.Delta != nil {
		return fmt.Errorf("%w: equity position %s must not carry a delta", ErrConfiguration, p.Symbol)
	}
	return nil
}
