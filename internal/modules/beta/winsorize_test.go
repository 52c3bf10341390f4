package beta

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
)

func betaRows(betas []float64, quality domain.FitQuality) []*domain.PositionFactorBeta {
	rows := make([]*domain.PositionFactorBeta, len(betas))
	for i, b := range betas {
		rows[i] = &domain.PositionFactorBeta{
			Symbol:     fmt.Sprintf("SYM%03d", i),
			Factor:     "Market",
			Beta:       b,
			FitQuality: quality,
		}
	}
	return rows
}

func TestWinsorizeCapsOutliers(t *testing.T) {
	g := NewQualityGate(zerolog.Nop())

	// 200 evenly spaced betas 0.00 .. 1.99. The empirical P1 is the 2nd
	// value and the P99 the 198th, so exactly three rows land outside.
	betas := make([]float64, 200)
	for i := range betas {
		betas[i] = 0.01 * float64(i)
	}
	rows := betaRows(betas, domain.FitOK)

	g.Winsorize("Market", rows)

	winsorized := 0
	for _, r := range rows {
		if r.FitQuality == domain.FitWinsorized {
			winsorized++
		}
	}
	require.Equal(t, 3, winsorized)

	assert.InDelta(t, 0.01, rows[0].Beta, 1e-9)
	assert.Equal(t, domain.FitWinsorized, rows[0].FitQuality)
	assert.InDelta(t, 1.97, rows[198].Beta, 1e-9)
	assert.InDelta(t, 1.97, rows[199].Beta, 1e-9)

	// Interior rows are untouched
	assert.InDelta(t, 1.00, rows[100].Beta, 1e-9)
	assert.Equal(t, domain.FitOK, rows[100].FitQuality)
}

func TestWinsorizeSkipsSmallCrossSections(t *testing.T) {
	g := NewQualityGate(zerolog.Nop())

	rows := betaRows([]float64{-50, 0.5, 1.0, 100}, domain.FitOK)
	g.Winsorize("Market", rows)

	// Percentiles over four observations would be noise; nothing changes.
	assert.InDelta(t, -50.0, rows[0].Beta, 1e-9)
	assert.InDelta(t, 100.0, rows[3].Beta, 1e-9)
	for _, r := range rows {
		assert.Equal(t, domain.FitOK, r.FitQuality)
	}
}

func TestWinsorizeIgnoresLowDataRows(t *testing.T) {
	g := NewQualityGate(zerolog.Nop())

	betas := make([]float64, 199)
	for i := range betas {
		betas[i] = 0.01 * float64(i)
	}
	rows := betaRows(betas, domain.FitOK)

	// A low_data row carries a placeholder zero, not an estimate; it must
	// neither shift the percentile bounds nor be capped itself.
	lowData := &domain.PositionFactorBeta{Symbol: "GAP", Factor: "Market", Beta: 0, FitQuality: domain.FitLowData}
	rows = append(rows, lowData)

	g.Winsorize("Market", rows)

	assert.Equal(t, domain.FitLowData, lowData.FitQuality)
	assert.Equal(t, 0.0, lowData.Beta)
}
