package risk

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
)

func singleFactorCov(variance float64) FactorCovariance {
	return FactorCovariance{
		Factors: []string{"Market"},
		Matrix:  [][]float64{{variance}},
	}
}

func TestFactorModelVaRSingleFactor(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	exposures := []domain.PortfolioFactorExposure{
		{Factor: "Market", DollarExposure: 1_000_000},
	}
	// variance 1e-4 -> daily sigma 1% of exposure = $10,000
	cov := singleFactorCov(1e-4)

	var95, err := e.FactorModelVaR(exposures, cov, Z95, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10000*Z95, var95, 1e-6)

	var99, err := e.FactorModelVaR(exposures, cov, Z99, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10000*Z99, var99, 1e-6)
	assert.Greater(t, var99, var95)
}

func TestFactorModelVaRHorizonScaling(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	exposures := []domain.PortfolioFactorExposure{
		{Factor: "Market", DollarExposure: 1_000_000},
	}
	cov := singleFactorCov(1e-4)

	oneDay, err := e.FactorModelVaR(exposures, cov, Z95, 1)
	require.NoError(t, err)
	fourDay, err := e.FactorModelVaR(exposures, cov, Z95, 4)
	require.NoError(t, err)

	// Square-root-of-time: 4-day VaR is exactly twice the 1-day VaR
	assert.InDelta(t, 2*oneDay, fourDay, 1e-6)
}

func TestFactorModelVaRCovarianceTerm(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	exposures := []domain.PortfolioFactorExposure{
		{Factor: "Market", DollarExposure: 100},
		{Factor: "SmallCap", DollarExposure: 100},
	}
	cov := FactorCovariance{
		Factors: []string{"Market", "SmallCap"},
		Matrix: [][]float64{
			{1e-4, 5e-5},
			{5e-5, 1e-4},
		},
	}

	got, err := e.FactorModelVaR(exposures, cov, Z95, 1)
	require.NoError(t, err)

	// e' Cov e = 100^2 * (1e-4 + 2*5e-5 + 1e-4) = 3.0
	expected := math.Sqrt(3.0) * Z95
	assert.InDelta(t, expected, got, 1e-9)
}

func TestFactorModelVaRDegenerate(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	exposures := []domain.PortfolioFactorExposure{
		{Factor: "Market", DollarExposure: 1000},
	}
	cov := singleFactorCov(-1)

	_, err := e.FactorModelVaR(exposures, cov, Z95, 1)
	assert.ErrorIs(t, err, domain.ErrNumericDegenerate)
}

func TestComputeFullMetrics(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	rets := make([]float64, 300)
	for i := range rets {
		rets[i] = 0.001 * float64(i%5-2)
	}
	exposures := []domain.PortfolioFactorExposure{
		{Factor: "Market", DollarExposure: 500000},
	}

	result, err := e.Compute("p1", "2025-06-30", rets, exposures, singleFactorCov(1e-4))
	require.NoError(t, err)

	assert.Equal(t, 300, result.NObs)
	assert.False(t, result.WindowShort)
	assert.Greater(t, result.Volatility, 0.0)
	assert.Less(t, result.MaxDrawdown, 0.0)
	assert.Greater(t, result.VaR95, 0.0)
	assert.Greater(t, result.VaR99, result.VaR95)
}

func TestComputeShortWindowFlagged(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	rets := make([]float64, 100)
	for i := range rets {
		rets[i] = 0.001 * float64(i%3-1)
	}
	exposures := []domain.PortfolioFactorExposure{
		{Factor: "Market", DollarExposure: 500000},
	}

	result, err := e.Compute("p1", "2025-06-30", rets, exposures, singleFactorCov(1e-4))
	require.NoError(t, err)
	assert.True(t, result.WindowShort)
}

func TestComputeInsufficientReturns(t *testing.T) {
	e := NewEngine(0.04, zerolog.Nop())

	_, err := e.Compute("p1", "2025-06-30", []float64{0.01}, nil, singleFactorCov(1e-4))
	assert.ErrorIs(t, err, domain.ErrDataInsufficient)
}
