// Package beta estimates per-position factor sensitivities by univariate
// OLS regression and gates the results by fit quality.
//
// A joint multivariate fit across all factors was evaluated and rejected:
// the factor proxies are severely collinear (pairwise correlations up to
// ~0.96), which makes a simultaneous fit numerically unstable and prone to
// sign-flipping coefficients. One factor at a time is the stable baseline.
package beta

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/returns"
)

// Estimator runs single-variable OLS regressions of position returns
// against factor proxy returns.
type Estimator struct {
	minDays int
	log     zerolog.Logger
}

// NewEstimator creates a new beta estimator. minDays below the absolute
// floor of 20 aligned trading days is raised to the floor.
func NewEstimator(minDays int, log zerolog.Logger) *Estimator {
	if minDays < 20 {
		minDays = 20
	}
	return &Estimator{
		minDays: minDays,
		log:     log.With().Str("component", "beta_estimator").Logger(),
	}
}

// MinDays returns the effective minimum sample requirement.
func (e *Estimator) MinDays() int {
	return e.minDays
}

// Estimate regresses a position's return series on a factor proxy's return
// series: position_return = alpha + beta * factor_return + eps.
//
// Below the minimum sample requirement, or for a degenerate (zero
// variance) factor series, it reports beta = 0 with fit_quality low_data
// rather than fabricating a coefficient.
func (e *Estimator) Estimate(portfolioID, symbol, factor, asOf string, position, proxy returns.Series) domain.PositionFactorBeta {
	x, y := returns.Align(proxy, position)

	row := domain.PositionFactorBeta{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Factor:      factor,
		AsOf:        asOf,
		NObs:        len(x),
	}

	if len(x) < e.minDays {
		e.log.Debug().
			Str("symbol", symbol).
			Str("factor", factor).
			Int("n_observations", len(x)).
			Int("min_days", e.minDays).
			Msg("Insufficient aligned history for regression")
		row.FitQuality = domain.FitLowData
		return row
	}

	if stat.Variance(x, nil) == 0 {
		// Degenerate factor series, treated the same as insufficient data
		e.log.Warn().
			Str("factor", factor).
			Msg("Zero-variance factor series, degrading to low_data")
		row.FitQuality = domain.FitLowData
		return row
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)

	row.Beta = beta
	row.RSquared = stat.RSquared(x, y, nil, alpha, beta)
	row.StdError = slopeStdError(x, y, alpha, beta)
	row.FitQuality = domain.FitOK

	if math.IsNaN(row.Beta) || math.IsInf(row.Beta, 0) {
		row.Beta = 0
		row.RSquared = 0
		row.StdError = 0
		row.FitQuality = domain.FitLowData
	}

	return row
}

// slopeStdError computes the standard error of the OLS slope:
// sqrt( (SSE / (n-2)) / sum((x - mean(x))^2) ).
func slopeStdError(x, y []float64, alpha, beta float64) float64 {
	n := len(x)
	if n <= 2 {
		return 0
	}

	xMean := stat.Mean(x, nil)

	var sse, sxx float64
	for i := range x {
		resid := y[i] - (alpha + beta*x[i])
		sse += resid * resid
		dx := x[i] - xMean
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0
	}

	return math.Sqrt(sse / float64(n-2) / sxx)
}
