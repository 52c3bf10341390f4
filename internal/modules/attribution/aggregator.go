// Package attribution converts position-level betas and signed exposures
// into portfolio-level factor dollar exposures.
package attribution

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// Aggregator builds per-factor dollar exposures by per-position
// attribution:
//
//	contribution(position, factor) = signed_exposure(position) x beta(position, factor)
//	dollar_exposure(factor)        = sum of contributions
//
// Dollar exposures across factors are intentionally not required to sum to
// gross exposure: factors overlap and summing them has no financial
// meaning. Normalizing them away would reintroduce the defect where every
// factor claims the entire portfolio's value.
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator creates a new attribution aggregator.
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log: log.With().Str("component", "attribution").Logger(),
	}
}

// Aggregate computes one exposure row per factor from the cycle's beta rows
// and the portfolio's positions.
//
// A position with a low_data beta contributes zero but is still counted in
// ContributingPositions. A position with no beta row at all for a factor
// gets a backfilled estimate (exposure-weighted mean of the other
// positions' usable betas) and degrades the row's quality to
// estimated_non_attributable so it is never presented as precise.
func (a *Aggregator) Aggregate(
	portfolioID, asOf string,
	positions []domain.Position,
	betas []domain.PositionFactorBeta,
) []domain.PortfolioFactorExposure {
	grossExposure := 0.0
	for _, p := range positions {
		grossExposure += p.MarketValue
	}

	// (factor, symbol) -> beta row
	bySymbol := make(map[string]map[string]domain.PositionFactorBeta)
	for _, b := range betas {
		if bySymbol[b.Factor] == nil {
			bySymbol[b.Factor] = make(map[string]domain.PositionFactorBeta)
		}
		bySymbol[b.Factor][b.Symbol] = b
	}

	exposures := make([]domain.PortfolioFactorExposure, 0, len(domain.Factors()))

	for _, factor := range domain.Factors() {
		factorBetas := bySymbol[factor.Name]

		row := domain.PortfolioFactorExposure{
			PortfolioID:           portfolioID,
			Factor:                factor.Name,
			AsOf:                  asOf,
			ContributingPositions: len(positions),
			Quality:               domain.FitOK,
		}

		fallbackBeta, haveFallback := exposureWeightedBeta(positions, factorBetas)

		var dollarExposure, signedSum, magnitudeSum float64
		for _, p := range positions {
			signed := p.SignedExposure()

			b, ok := factorBetas[p.Symbol]
			switch {
			case ok && b.FitQuality == domain.FitLowData:
				// Too little history: contributes zero, stays counted
				continue
			case ok:
				dollarExposure += signed * b.Beta
				signedSum += signed * b.Beta
				magnitudeSum += math.Abs(signed) * math.Abs(b.Beta)
			case haveFallback:
				// Beta entirely unavailable: documented fallback allocates
				// by the other positions' estimates
				dollarExposure += signed * fallbackBeta
				signedSum += signed * fallbackBeta
				magnitudeSum += math.Abs(signed) * math.Abs(fallbackBeta)
				row.Quality = domain.FitEstimated
			default:
				row.Quality = domain.FitEstimated
			}
		}

		row.DollarExposure = dollarExposure
		if grossExposure > 0 {
			row.SignedBeta = signedSum / grossExposure
			row.MagnitudeBeta = magnitudeSum / grossExposure
		}

		if row.Quality == domain.FitEstimated {
			a.log.Warn().
				Str("portfolio_id", portfolioID).
				Str("factor", factor.Name).
				Msg("Factor exposure includes non-attributable estimates")
		}

		exposures = append(exposures, row)
	}

	return exposures
}

// exposureWeightedBeta estimates a beta for positions lacking one, weighted
// by the relative exposure magnitude of the positions that do have usable
// estimates. low_data rows are excluded from the fallback arithmetic.
func exposureWeightedBeta(
	positions []domain.Position,
	factorBetas map[string]domain.PositionFactorBeta,
) (float64, bool) {
	var weighted, totalWeight float64
	for _, p := range positions {
		b, ok := factorBetas[p.Symbol]
		if !ok || b.FitQuality == domain.FitLowData {
			continue
		}
		w := math.Abs(p.SignedExposure())
		weighted += w * b.Beta
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, false
	}
	return weighted / totalWeight, true
}
