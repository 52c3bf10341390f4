package domain

import "errors"

// Error taxonomy for the calculation engine. Per-position and per-factor
// failures degrade to quality flags and never abort a portfolio
// recalculation; these sentinels classify the failures that do surface.
var (
	// ErrDataInsufficient - too few aligned observations for a reliable fit.
	ErrDataInsufficient = errors.New("insufficient aligned observations")

	// ErrDataMissingUpstream - a price or position feed had no data at all.
	ErrDataMissingUpstream = errors.New("upstream market data unavailable")

	// ErrNumericDegenerate - zero-variance series or other degenerate input.
	// Treated the same as insufficient data by the estimators.
	ErrNumericDegenerate = errors.New("degenerate numeric input")

	// ErrConfiguration - malformed scenario, unknown factor, invalid position.
	// Fails the single request, never the batch.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrPortfolioNotFound - the portfolio does not exist or has no positions.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrNotCalculated - no committed result set exists for the as-of date yet.
	ErrNotCalculated = errors.New("no calculation results for as-of date")
)
