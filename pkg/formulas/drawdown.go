package formulas

// MaxDrawdown calculates the maximum peak-to-trough decline of a daily
// return series, expressed as a negative fraction (e.g. -0.25 for a 25%
// drawdown). Returns 0 for a series that never declines.
func MaxDrawdown(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}

	value := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range dailyReturns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		dd := value/peak - 1
		if dd < maxDD {
			maxDD = dd
		}
	}

	return maxDD
}
