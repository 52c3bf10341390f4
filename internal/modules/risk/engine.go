// Package risk computes portfolio-level risk metrics: annualized
// volatility, Sharpe ratio, maximum drawdown, and factor-model VaR.
package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/pkg/formulas"
)

// One-sided z-scores for the supported VaR confidence levels.
const (
	Z95 = 1.645
	Z99 = 2.326
)

// MinFullWindowObs is the return-series length below which metrics are
// flagged as computed on a short window.
const MinFullWindowObs = 252

// Engine computes risk metrics for one portfolio and as-of date.
type Engine struct {
	riskFreeRate float64
	log          zerolog.Logger
}

// NewEngine creates a new risk metrics engine. riskFreeRate is annual.
func NewEngine(riskFreeRate float64, log zerolog.Logger) *Engine {
	return &Engine{
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("component", "risk_engine").Logger(),
	}
}

// Compute derives the full metrics row from the portfolio's daily return
// series, its factor exposures, and the factor covariance matrix.
// VaR figures are one-day dollar amounts.
func (e *Engine) Compute(
	portfolioID, asOf string,
	portfolioReturns []float64,
	exposures []domain.PortfolioFactorExposure,
	cov FactorCovariance,
) (domain.RiskMetricsResult, error) {
	result := domain.RiskMetricsResult{
		PortfolioID:        portfolioID,
		AsOf:               asOf,
		NObs:               len(portfolioReturns),
		CovarianceDiagonal: cov.Diagonal,
	}

	if len(portfolioReturns) < 2 {
		return result, fmt.Errorf("%w: %d portfolio return observations", domain.ErrDataInsufficient, len(portfolioReturns))
	}

	if len(portfolioReturns) < MinFullWindowObs {
		result.WindowShort = true
		e.log.Warn().
			Str("portfolio_id", portfolioID).
			Int("n_observations", len(portfolioReturns)).
			Msg("Short return window, metrics degraded")
	}

	result.Volatility = formulas.AnnualizedVolatility(portfolioReturns)
	result.Sharpe = formulas.SharpeRatio(portfolioReturns, e.riskFreeRate)
	result.MaxDrawdown = formulas.MaxDrawdown(portfolioReturns)

	var95, err := e.FactorModelVaR(exposures, cov, Z95, 1)
	if err != nil {
		return result, err
	}
	var99, err := e.FactorModelVaR(exposures, cov, Z99, 1)
	if err != nil {
		return result, err
	}
	result.VaR95 = var95
	result.VaR99 = var99

	return result, nil
}

// FactorModelVaR computes Value-at-Risk algebraically from the dollar
// exposure vector and the factor covariance matrix:
//
//	portfolio_variance = e' * Cov * e
//	VaR = sqrt(portfolio_variance) * z * sqrt(horizonDays)
//
// Exposures are already in dollars per factor, so the beta matrix of the
// textbook formulation collapses into the exposure vector.
func (e *Engine) FactorModelVaR(
	exposures []domain.PortfolioFactorExposure,
	cov FactorCovariance,
	z float64,
	horizonDays float64,
) (float64, error) {
	n := len(cov.Factors)
	if n == 0 {
		return 0, fmt.Errorf("%w: empty covariance matrix", domain.ErrDataInsufficient)
	}

	byFactor := make(map[string]float64, len(exposures))
	for _, ex := range exposures {
		byFactor[ex.Factor] = ex.DollarExposure
	}

	vec := mat.NewVecDense(n, nil)
	for i, name := range cov.Factors {
		vec.SetVec(i, byFactor[name])
	}

	covMat := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			covMat.SetSym(i, j, cov.Matrix[i][j])
		}
	}

	variance := mat.Inner(vec, covMat, vec)
	if variance < 0 || math.IsNaN(variance) {
		return 0, fmt.Errorf("%w: portfolio variance %f", domain.ErrNumericDegenerate, variance)
	}

	return math.Sqrt(variance) * z * math.Sqrt(horizonDays), nil
}
