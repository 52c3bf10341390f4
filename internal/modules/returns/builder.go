package returns

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/marketdata"
)

// Builder turns raw close-price histories into position return series,
// applying delta-adjustment for options by default.
type Builder struct {
	log zerolog.Logger
}

// NewBuilder creates a new return series builder.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		log: log.With().Str("component", "returns").Logger(),
	}
}

// PositionSeries describes the return series used to regress one position,
// including whether delta-adjustment was applied.
type PositionSeries struct {
	Series        Series
	DeltaAdjusted bool
	Degraded      bool // delta was unavailable for an option
}

// ForPosition builds the regression return series for a position from the
// close history of its regression instrument (the underlying for options).
//
// For options the day's exposure is modeled as
// delta x underlying_close x multiplier x quantity and returns are taken
// as the exposure change relative to the prior day's exposure magnitude,
// so a negative delta flips the sign of the series. When delta is
// unavailable the builder falls back to raw instrument returns and flags
// the result as degraded.
func (b *Builder) ForPosition(pos domain.Position, closes []marketdata.ClosePoint) PositionSeries {
	if !pos.Kind.IsOption() {
		return PositionSeries{Series: FromCloses(closes)}
	}

	if pos.Delta == nil {
		b.log.Warn().
			Str("symbol", pos.Symbol).
			Str("kind", string(pos.Kind)).
			Msg("Option delta unavailable, falling back to raw returns")
		return PositionSeries{Series: FromCloses(closes), Degraded: true}
	}

	return PositionSeries{
		Series:        deltaAdjusted(closes, *pos.Delta, pos.Multiplier, pos.Quantity),
		DeltaAdjusted: true,
	}
}

// deltaAdjusted builds the exposure series and differences it against the
// prior exposure magnitude. Scale constants cancel; what survives is the
// underlying return with the sign of delta x quantity.
func deltaAdjusted(points []marketdata.ClosePoint, delta, multiplier, quantity float64) Series {
	if len(points) < 2 {
		return Series{}
	}

	scale := delta * multiplier * quantity

	dates := make([]string, 0, len(points)-1)
	values := make([]float64, 0, len(points)-1)

	lastExposure := math.NaN()
	if !points[0].Missing {
		lastExposure = scale * points[0].Close
	}

	for _, p := range points[1:] {
		dates = append(dates, p.Date)
		if p.Missing || math.IsNaN(lastExposure) || lastExposure == 0 {
			values = append(values, math.NaN())
			if !p.Missing {
				lastExposure = scale * p.Close
			}
			continue
		}
		exposure := scale * p.Close
		values = append(values, (exposure-lastExposure)/math.Abs(lastExposure))
		lastExposure = exposure
	}

	return Series{Dates: dates, Values: values}
}
