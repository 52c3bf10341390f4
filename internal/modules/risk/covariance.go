package risk

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/returns"
)

// Minimum pairwise-aligned observations for estimating an off-diagonal
// covariance entry.
const minCovarianceObs = 60

// FactorCovariance is a daily-return covariance matrix over the factor set,
// in factor-table order. Diagonal is set when off-diagonal estimation was
// not possible and independence was assumed - an explicit degradation, not
// an equivalent of a fully estimated matrix.
type FactorCovariance struct {
	Factors  []string
	Matrix   [][]float64
	Diagonal bool
}

// CovarianceBuilder estimates the factor covariance matrix from aligned
// proxy return series.
type CovarianceBuilder struct {
	log zerolog.Logger
}

// NewCovarianceBuilder creates a new covariance builder.
func NewCovarianceBuilder(log zerolog.Logger) *CovarianceBuilder {
	return &CovarianceBuilder{
		log: log.With().Str("component", "factor_covariance").Logger(),
	}
}

// Build estimates the covariance matrix from per-factor proxy return
// series. Variances come from each factor's own full history; covariances
// from pairwise inner-joined observations. When any pair lacks enough
// aligned history the builder falls back to the diagonal (independence)
// approximation for the whole matrix and logs the degradation.
func (b *CovarianceBuilder) Build(proxyReturns map[string]returns.Series) (FactorCovariance, error) {
	factors := domain.FactorNames()
	n := len(factors)

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	// Variances first. A factor with no usable history gets zero variance
	// (it cannot contribute to VaR); the failure is isolated, not fatal.
	usable := 0
	for i, name := range factors {
		series, ok := proxyReturns[name]
		if !ok || series.Observed() < 2 {
			b.log.Warn().Str("factor", name).Msg("No return history for factor, zero variance assumed")
			continue
		}
		obs := observedValues(series)
		matrix[i][i] = stat.Variance(obs, nil)
		usable++
	}
	if usable == 0 {
		return FactorCovariance{}, fmt.Errorf("%w: no factor return history", domain.ErrDataInsufficient)
	}

	diagonalOnly := false
	for i := 0; i < n && !diagonalOnly; i++ {
		if matrix[i][i] == 0 {
			continue
		}
		for j := i + 1; j < n; j++ {
			if matrix[j][j] == 0 {
				continue
			}
			x, y := returns.Align(proxyReturns[factors[i]], proxyReturns[factors[j]])
			if len(x) < minCovarianceObs {
				diagonalOnly = true
				break
			}
			cov := stat.Covariance(x, y, nil)
			matrix[i][j] = cov
			matrix[j][i] = cov
		}
	}

	if diagonalOnly {
		b.log.Warn().Msg("Insufficient aligned history for factor correlations, using diagonal covariance approximation")
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i != j {
					matrix[i][j] = 0
				}
			}
		}
	}

	return FactorCovariance{Factors: factors, Matrix: matrix, Diagonal: diagonalOnly}, nil
}

func observedValues(s returns.Series) []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
