package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name     string
		returns  []float64
		expected float64
	}{
		{
			name:     "halving after a gain",
			returns:  []float64{0.10, -0.50, 0.25},
			expected: -0.50,
		},
		{
			name:     "monotonic rise never draws down",
			returns:  []float64{0.01, 0.02, 0.03},
			expected: 0,
		},
		{
			name:     "single loss",
			returns:  []float64{-0.10},
			expected: -0.10,
		},
		{
			name:     "empty series",
			returns:  nil,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, MaxDrawdown(tt.returns), 1e-9)
		})
	}
}

func TestMaxDrawdownRecoveryDoesNotErase(t *testing.T) {
	// A full recovery after the trough must not shrink the recorded drawdown
	returns := []float64{0.10, -0.30, 0.60}
	assert.InDelta(t, -0.30, MaxDrawdown(returns), 1e-9)
}
