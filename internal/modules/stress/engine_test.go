package stress

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
)

func marketExposure(dollars float64) []domain.PortfolioFactorExposure {
	return []domain.PortfolioFactorExposure{
		{PortfolioID: "p1", Factor: "Market", DollarExposure: dollars},
	}
}

func TestRunSimpleScenario(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	scenario := domain.StressScenario{
		Name:   "custom",
		Shocks: map[string]float64{"Market": -0.10},
	}

	result, err := e.Run("p1", "2025-06-30", scenario, marketExposure(500000), 1_000_000)
	require.NoError(t, err)

	assert.InDelta(t, -50000, result.EstimatedPnL, 1e-6)
	assert.False(t, result.Floored)
	require.Len(t, result.Contributions, 1)
	assert.Equal(t, "Market", result.Contributions[0].Factor)
	assert.InDelta(t, -50000, result.Contributions[0].PnL, 1e-6)
}

func TestRunAggregateFloor(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Leveraged exposure: unclipped loss of -$200k against a $100k
	// portfolio. The total clips at -99% of value; the per-factor
	// contribution keeps the unclipped number.
	scenario := domain.StressScenario{
		Name:   "custom",
		Shocks: map[string]float64{"Market": -0.20},
	}

	result, err := e.Run("p1", "2025-06-30", scenario, marketExposure(1_000_000), 100_000)
	require.NoError(t, err)

	assert.True(t, result.Floored)
	assert.InDelta(t, -99000, result.EstimatedPnL, 1e-6)
	require.Len(t, result.Contributions, 1)
	assert.InDelta(t, -200000, result.Contributions[0].PnL, 1e-6)
}

func TestRunGainsAreNotFloored(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	scenario := domain.StressScenario{
		Name:   "custom",
		Shocks: map[string]float64{"Market": 0.10},
	}

	result, err := e.Run("p1", "2025-06-30", scenario, marketExposure(2_000_000), 100_000)
	require.NoError(t, err)

	assert.False(t, result.Floored)
	assert.InDelta(t, 200000, result.EstimatedPnL, 1e-6)
}

func TestRunUnknownFactor(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	scenario := domain.StressScenario{
		Name:   "bad",
		Shocks: map[string]float64{"Momentum": -0.10},
	}

	_, err := e.Run("p1", "2025-06-30", scenario, marketExposure(500000), 1_000_000)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunEmptyShocks(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	_, err := e.Run("p1", "2025-06-30", domain.StressScenario{Name: "empty"}, marketExposure(500000), 1_000_000)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRunMissingExposureContributesZero(t *testing.T) {
	e := NewEngine(zerolog.Nop())

	// Scenario shocks a factor the portfolio has no exposure row for
	scenario := domain.StressScenario{
		Name:   "custom",
		Shocks: map[string]float64{"Market": -0.10, "Gold": 0.05},
	}

	result, err := e.Run("p1", "2025-06-30", scenario, marketExposure(500000), 1_000_000)
	require.NoError(t, err)

	require.Len(t, result.Contributions, 2)
	assert.InDelta(t, -50000, result.EstimatedPnL, 1e-6)
}

func TestBuiltinScenariosReferenceKnownFactors(t *testing.T) {
	for _, s := range Scenarios() {
		require.NotEmpty(t, s.Shocks, s.Name)
		for factor := range s.Shocks {
			_, ok := domain.FactorByName(factor)
			assert.True(t, ok, "scenario %s references unknown factor %s", s.Name, factor)
		}
	}
}

func TestScenarioByName(t *testing.T) {
	s, err := ScenarioByName("market_down_10")
	require.NoError(t, err)
	assert.InDelta(t, -0.10, s.Shocks["Market"], 1e-9)

	_, err = ScenarioByName("nope")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
