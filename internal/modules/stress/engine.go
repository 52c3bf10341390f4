// Package stress estimates scenario P&L by applying per-factor shocks to
// the portfolio's factor dollar exposures.
package stress

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// LossFloorFraction caps the total estimated loss at -99% of portfolio
// value. The floor is applied to the aggregate sum only; clipping
// individual factor contributions would erase the differentiation between
// scenarios that the whole exercise exists to produce.
const LossFloorFraction = 0.99

// Engine runs stress scenarios against factor exposures.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new stress test engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "stress_engine").Logger(),
	}
}

// Run estimates scenario P&L as the sum over factors of
// dollar_exposure(factor) x shock(factor). A shock naming an unknown
// factor fails the request with a configuration error.
func (e *Engine) Run(
	portfolioID, asOf string,
	scenario domain.StressScenario,
	exposures []domain.PortfolioFactorExposure,
	portfolioValue float64,
) (domain.StressResult, error) {
	if len(scenario.Shocks) == 0 {
		return domain.StressResult{}, fmt.Errorf("%w: scenario %q has no shocks", domain.ErrConfiguration, scenario.Name)
	}

	for name := range scenario.Shocks {
		if _, ok := domain.FactorByName(name); !ok {
			return domain.StressResult{}, fmt.Errorf("%w: unknown factor %q in scenario %q", domain.ErrConfiguration, name, scenario.Name)
		}
	}

	byFactor := make(map[string]domain.PortfolioFactorExposure, len(exposures))
	for _, ex := range exposures {
		byFactor[ex.Factor] = ex
	}

	result := domain.StressResult{
		PortfolioID: portfolioID,
		Scenario:    scenario.Name,
		AsOf:        asOf,
	}

	total := 0.0
	for _, factor := range domain.FactorNames() {
		shock, ok := scenario.Shocks[factor]
		if !ok {
			continue
		}
		ex := byFactor[factor]
		pnl := ex.DollarExposure * shock
		total += pnl
		result.Contributions = append(result.Contributions, domain.FactorContribution{
			Factor:         factor,
			DollarExposure: ex.DollarExposure,
			Shock:          shock,
			PnL:            pnl,
		})
	}

	floor := -LossFloorFraction * portfolioValue
	if portfolioValue > 0 && total < floor {
		e.log.Info().
			Str("portfolio_id", portfolioID).
			Str("scenario", scenario.Name).
			Float64("unclipped_pnl", total).
			Float64("floor", floor).
			Msg("Stress loss clipped at aggregate floor")
		total = floor
		result.Floored = true
	}

	result.EstimatedPnL = total
	return result, nil
}
