// Package returns builds aligned daily return series from raw close-price
// histories. Missing observations are preserved as NaN, never zero-filled:
// synthetic zero returns systematically deflate variance and bias the
// downstream regressions.
package returns

import (
	"math"

	"github.com/aristath/riskdesk/internal/modules/marketdata"
)

// Series is a daily return series. Values[i] is the simple return on
// Dates[i]; NaN marks a missing observation.
type Series struct {
	Dates  []string
	Values []float64
}

// Len returns the number of dates in the series, including missing ones.
func (s Series) Len() int {
	return len(s.Dates)
}

// Observed returns the count of non-missing observations.
func (s Series) Observed() int {
	n := 0
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// FromCloses converts a daily close series into simple returns
// r_t = p_t / p_prev - 1, where p_prev is the last observed close. A
// missing price produces exactly one missing return on that day; the next
// observed day carries the return over the whole gap.
func FromCloses(points []marketdata.ClosePoint) Series {
	if len(points) < 2 {
		return Series{}
	}

	dates := make([]string, 0, len(points)-1)
	values := make([]float64, 0, len(points)-1)

	lastClose := math.NaN()
	if !points[0].Missing {
		lastClose = points[0].Close
	}

	for _, p := range points[1:] {
		dates = append(dates, p.Date)
		if p.Missing || math.IsNaN(lastClose) || lastClose <= 0 {
			values = append(values, math.NaN())
			if !p.Missing {
				lastClose = p.Close
			}
			continue
		}
		values = append(values, p.Close/lastClose-1)
		lastClose = p.Close
	}

	return Series{Dates: dates, Values: values}
}

// Align inner-joins two return series on date, dropping any date where
// either observation is missing. The two result slices are index-aligned.
func Align(a, b Series) (x, y []float64) {
	bIndex := make(map[string]float64, len(b.Dates))
	for i, d := range b.Dates {
		bIndex[d] = b.Values[i]
	}

	for i, d := range a.Dates {
		av := a.Values[i]
		bv, ok := bIndex[d]
		if !ok || math.IsNaN(av) || math.IsNaN(bv) {
			continue
		}
		x = append(x, av)
		y = append(y, bv)
	}

	return x, y
}
