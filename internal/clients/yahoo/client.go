// Package yahoo fetches daily close prices from Yahoo Finance for factor
// proxy ETFs and position instruments.
package yahoo

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/aristath/riskdesk/internal/modules/marketdata"
)

// Client wraps the go-yfinance library for daily close retrieval.
type Client struct {
	log zerolog.Logger
}

// NewClient creates a new Yahoo Finance client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// GetDailyCloses fetches adjusted daily closes for a symbol over a period
// ("1mo", "1y", "2y", "5y", "max"). Days Yahoo returns without a close are
// preserved as missing observations.
func (c *Client) GetDailyCloses(symbol, period string) ([]marketdata.ClosePoint, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker for %s: %w", symbol, err)
	}
	defer t.Close()

	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	points := make([]marketdata.ClosePoint, 0, len(bars))
	for _, bar := range bars {
		point := marketdata.ClosePoint{Date: bar.Date.Format("2006-01-02")}
		if bar.Close > 0 {
			point.Close = bar.Close
		} else {
			point.Missing = true
		}
		points = append(points, point)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("bars", len(points)).
		Msg("Fetched daily closes")

	return points, nil
}
