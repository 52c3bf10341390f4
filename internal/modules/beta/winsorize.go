package beta

import (
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/riskdesk/internal/domain"
)

// Winsorization bounds: the 1st and 99th percentile of the cross-sectional
// beta distribution for one factor in one run. A hard per-beta clamp was
// rejected because it piled most betas up exactly at the cap.
const (
	winsorLowerQuantile = 0.01
	winsorUpperQuantile = 0.99
)

// QualityGate applies the cross-sectional winsorization pass over one
// factor's betas after all positions in a run have been estimated.
type QualityGate struct {
	log zerolog.Logger
}

// NewQualityGate creates a new quality gate.
func NewQualityGate(log zerolog.Logger) *QualityGate {
	return &QualityGate{
		log: log.With().Str("component", "beta_quality_gate").Logger(),
	}
}

// Winsorize caps betas beyond the P1/P99 of their own distribution and
// flags the affected rows. Only rows with fit_quality ok participate:
// low_data rows carry placeholder zeros, not estimates. Rows is modified
// in place.
func (g *QualityGate) Winsorize(factor string, rows []*domain.PositionFactorBeta) {
	usable := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.FitQuality == domain.FitOK {
			usable = append(usable, r.Beta)
		}
	}

	// Percentiles are meaningless on a handful of observations
	if len(usable) < 5 {
		return
	}

	sort.Float64s(usable)
	lower := stat.Quantile(winsorLowerQuantile, stat.Empirical, usable, nil)
	upper := stat.Quantile(winsorUpperQuantile, stat.Empirical, usable, nil)

	winsorized := 0
	for _, r := range rows {
		if r.FitQuality != domain.FitOK {
			continue
		}
		if r.Beta < lower {
			r.Beta = lower
			r.FitQuality = domain.FitWinsorized
			winsorized++
		} else if r.Beta > upper {
			r.Beta = upper
			r.FitQuality = domain.FitWinsorized
			winsorized++
		}
	}

	if winsorized > 0 {
		g.log.Info().
			Str("factor", factor).
			Int("winsorized", winsorized).
			Float64("lower", lower).
			Float64("upper", upper).
			Msg("Winsorized cross-sectional beta outliers")
	}
}
