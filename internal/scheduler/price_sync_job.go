package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/clients/yahoo"
	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/marketdata"
	"github.com/aristath/riskdesk/internal/modules/portfolio"
)

// PriceSyncJob refreshes the daily close history for every factor proxy
// and every instrument held in any portfolio.
type PriceSyncJob struct {
	client     *yahoo.Client
	marketData *marketdata.Repository
	portfolios *portfolio.Repository
	period     string
	log        zerolog.Logger
}

// NewPriceSyncJob creates the nightly price sync job. period is the Yahoo
// history window to fetch (e.g. "2y").
func NewPriceSyncJob(
	client *yahoo.Client,
	marketData *marketdata.Repository,
	portfolios *portfolio.Repository,
	period string,
	log zerolog.Logger,
) *PriceSyncJob {
	if period == "" {
		period = "2y"
	}
	return &PriceSyncJob{
		client:     client,
		marketData: marketData,
		portfolios: portfolios,
		period:     period,
		log:        log.With().Str("job", "price_sync").Logger(),
	}
}

// Name returns the job name.
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Run fetches and upserts closes symbol by symbol. A symbol that fails is
// logged and skipped; the rest of the sync continues.
func (j *PriceSyncJob) Run() error {
	symbols := j.collectSymbols()

	synced, failed := 0, 0
	for _, symbol := range symbols {
		points, err := j.client.GetDailyCloses(symbol, j.period)
		if err != nil {
			j.log.Warn().Err(err).Str("symbol", symbol).Msg("Price fetch failed, skipping")
			failed++
			continue
		}
		if err := j.marketData.UpsertCloses(symbol, points); err != nil {
			j.log.Error().Err(err).Str("symbol", symbol).Msg("Price upsert failed")
			failed++
			continue
		}
		synced++
	}

	j.log.Info().
		Int("synced", synced).
		Int("failed", failed).
		Msg("Price sync finished")

	return nil
}

// collectSymbols gathers factor proxies plus every regression instrument
// held across portfolios, deduplicated.
func (j *PriceSyncJob) collectSymbols() []string {
	seen := make(map[string]bool)
	var symbols []string

	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			symbols = append(symbols, s)
		}
	}

	for _, f := range domain.Factors() {
		add(f.ProxySymbol)
	}

	list, err := j.portfolios.List()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to list portfolios for price sync")
		return symbols
	}
	for _, p := range list {
		positions, err := j.portfolios.ListPositions(p.ID, resolveToday())
		if err != nil {
			j.log.Warn().Err(err).Str("portfolio_id", p.ID).Msg("Failed to list positions for price sync")
			continue
		}
		for _, pos := range positions {
			add(pos.RegressionSymbol())
		}
	}

	return symbols
}
