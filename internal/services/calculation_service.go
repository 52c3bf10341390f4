// Package services wires the calculation pipeline together and exposes the
// engine's read-only API surface, fronted by the calculation cache.
package services

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/cache"
	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/attribution"
	"github.com/aristath/riskdesk/internal/modules/beta"
	"github.com/aristath/riskdesk/internal/modules/marketdata"
	"github.com/aristath/riskdesk/internal/modules/portfolio"
	"github.com/aristath/riskdesk/internal/modules/returns"
	"github.com/aristath/riskdesk/internal/modules/risk"
	"github.com/aristath/riskdesk/internal/modules/stress"
)

// Cache function tags, combined with (portfolio, as-of) into cache keys.
const (
	fnBetas     = "position_betas"
	fnExposures = "factor_exposures"
	fnMetrics   = "risk_metrics"
)

// CalculationService orchestrates the full pipeline:
// prices -> returns -> quality-gated betas -> attribution -> risk metrics,
// persisting each (portfolio, as-of) result set atomically and serving
// reads from the cache. All four read operations are idempotent for a
// fixed as-of date.
type CalculationService struct {
	marketData   *marketdata.Repository
	portfolios   *portfolio.Repository
	builder      *returns.Builder
	estimator    *beta.Estimator
	gate         *beta.QualityGate
	aggregator   *attribution.Aggregator
	covBuilder   *risk.CovarianceBuilder
	riskEngine   *risk.Engine
	stressEngine *stress.Engine
	betaRepo     *beta.Repository
	exposureRepo *attribution.Repository
	metricsRepo  *risk.Repository
	runs         *RunRepository
	analyticsDB  *sql.DB
	cache        *cache.Cache
	lookbackDays int
	log          zerolog.Logger

	pipelineRuns atomic.Int64
}

// Config collects the service's collaborators.
type Config struct {
	MarketData   *marketdata.Repository
	Portfolios   *portfolio.Repository
	Builder      *returns.Builder
	Estimator    *beta.Estimator
	Gate         *beta.QualityGate
	Aggregator   *attribution.Aggregator
	CovBuilder   *risk.CovarianceBuilder
	RiskEngine   *risk.Engine
	StressEngine *stress.Engine
	BetaRepo     *beta.Repository
	ExposureRepo *attribution.Repository
	MetricsRepo  *risk.Repository
	Runs         *RunRepository
	AnalyticsDB  *sql.DB
	Cache        *cache.Cache
	LookbackDays int
	Log          zerolog.Logger
}

// NewCalculationService creates a new calculation service.
func NewCalculationService(cfg Config) *CalculationService {
	return &CalculationService{
		marketData:   cfg.MarketData,
		portfolios:   cfg.Portfolios,
		builder:      cfg.Builder,
		estimator:    cfg.Estimator,
		gate:         cfg.Gate,
		aggregator:   cfg.Aggregator,
		covBuilder:   cfg.CovBuilder,
		riskEngine:   cfg.RiskEngine,
		stressEngine: cfg.StressEngine,
		betaRepo:     cfg.BetaRepo,
		exposureRepo: cfg.ExposureRepo,
		metricsRepo:  cfg.MetricsRepo,
		runs:         cfg.Runs,
		analyticsDB:  cfg.AnalyticsDB,
		cache:        cfg.Cache,
		lookbackDays: cfg.LookbackDays,
		log:          cfg.Log.With().Str("component", "calculation_service").Logger(),
	}
}

// PipelineRuns returns how many times the full calculation pipeline has
// executed. Cached and persisted reads do not increment it.
func (s *CalculationService) PipelineRuns() int64 {
	return s.pipelineRuns.Load()
}

// GetPositionBetas returns the position-level betas for a portfolio at an
// as-of date, computing them if no committed result set exists yet.
func (s *CalculationService) GetPositionBetas(portfolioID, asOf string) ([]domain.PositionFactorBeta, error) {
	asOf = resolveAsOf(asOf)
	key := cache.Key(portfolioID, asOf, fnBetas)

	if v, ok := s.cache.Get(key); ok {
		return copyBetas(v.([]domain.PositionFactorBeta)), nil
	}

	rows, err := s.betaRepo.Get(portfolioID, asOf)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := s.Recalculate(portfolioID, asOf); err != nil {
			return nil, err
		}
		if rows, err = s.betaRepo.Get(portfolioID, asOf); err != nil {
			return nil, err
		}
	}

	s.cache.Set(key, rows)
	return copyBetas(rows), nil
}

// GetPortfolioFactorExposures returns the portfolio-level factor dollar
// exposures for an as-of date.
//
// Dollar exposures across factors are not expected to sum to gross
// exposure: factors overlap, and the sum has no financial meaning.
func (s *CalculationService) GetPortfolioFactorExposures(portfolioID, asOf string) ([]domain.PortfolioFactorExposure, error) {
	asOf = resolveAsOf(asOf)
	key := cache.Key(portfolioID, asOf, fnExposures)

	if v, ok := s.cache.Get(key); ok {
		return copyExposures(v.([]domain.PortfolioFactorExposure)), nil
	}

	rows, err := s.exposureRepo.Get(portfolioID, asOf)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := s.Recalculate(portfolioID, asOf); err != nil {
			return nil, err
		}
		if rows, err = s.exposureRepo.Get(portfolioID, asOf); err != nil {
			return nil, err
		}
	}

	s.cache.Set(key, rows)
	return copyExposures(rows), nil
}

// GetRiskMetrics returns the portfolio's risk metrics for an as-of date.
func (s *CalculationService) GetRiskMetrics(portfolioID, asOf string) (domain.RiskMetricsResult, error) {
	asOf = resolveAsOf(asOf)
	key := cache.Key(portfolioID, asOf, fnMetrics)

	if v, ok := s.cache.Get(key); ok {
		return v.(domain.RiskMetricsResult), nil
	}

	m, err := s.metricsRepo.Get(portfolioID, asOf)
	if err == domain.ErrNotCalculated {
		if err := s.Recalculate(portfolioID, asOf); err != nil {
			return domain.RiskMetricsResult{}, err
		}
		m, err = s.metricsRepo.Get(portfolioID, asOf)
	}
	if err != nil {
		return domain.RiskMetricsResult{}, err
	}

	s.cache.Set(key, m)
	return m, nil
}

// RunStressTest applies a scenario's factor shocks to the portfolio's
// current factor exposures. Reads exposures through the cache; never
// recomputes betas on its own.
func (s *CalculationService) RunStressTest(portfolioID, asOf string, scenario domain.StressScenario) (domain.StressResult, error) {
	asOf = resolveAsOf(asOf)

	exposures, err := s.GetPortfolioFactorExposures(portfolioID, asOf)
	if err != nil {
		return domain.StressResult{}, err
	}

	value, err := s.portfolios.LatestValue(portfolioID, asOf)
	if err != nil {
		return domain.StressResult{}, err
	}

	return s.stressEngine.Run(portfolioID, asOf, scenario, exposures, value)
}

// Recalculate runs the full pipeline for one (portfolio, as-of) pair and
// commits the complete result set in a single transaction, so a reader
// never observes a half-updated set of factor exposures.
func (s *CalculationService) Recalculate(portfolioID, asOf string) error {
	asOf = resolveAsOf(asOf)
	s.pipelineRuns.Add(1)
	started := time.Now().UTC()

	positions, err := s.portfolios.ListPositions(portfolioID, asOf)
	if err != nil {
		return err
	}

	start := windowStart(asOf, s.lookbackDays)
	var gaps []string

	// Factor proxy return series. A missing proxy degrades every beta for
	// that factor rather than failing the run.
	proxyReturns := make(map[string]returns.Series)
	for _, factor := range domain.Factors() {
		closes, err := s.marketData.GetDailyCloses(factor.ProxySymbol, start, asOf)
		if err != nil {
			s.log.Warn().Err(err).
				Str("factor", factor.Name).
				Str("proxy", factor.ProxySymbol).
				Msg("Factor proxy history unavailable")
			gaps = append(gaps, factor.ProxySymbol)
			continue
		}
		proxyReturns[factor.Name] = returns.FromCloses(closes)
	}

	// Position return series. Positions without any price history are
	// skipped and surfaced in the gap list; attribution backfills them.
	positionReturns := make(map[string]returns.Series)
	for _, pos := range positions {
		symbol := pos.RegressionSymbol()
		if _, done := positionReturns[pos.Symbol]; done {
			continue
		}
		closes, err := s.marketData.GetDailyCloses(symbol, start, asOf)
		if err != nil {
			s.log.Warn().Err(err).
				Str("portfolio_id", portfolioID).
				Str("symbol", pos.Symbol).
				Msg("Position price history unavailable, skipping")
			gaps = append(gaps, pos.Symbol)
			continue
		}
		positionReturns[pos.Symbol] = s.builder.ForPosition(pos, closes).Series
	}

	// Estimate betas factor by factor, then winsorize each factor's
	// cross-section before anything is persisted.
	var betaRows []domain.PositionFactorBeta
	for _, factor := range domain.Factors() {
		proxy, haveProxy := proxyReturns[factor.Name]

		factorRows := make([]*domain.PositionFactorBeta, 0, len(positions))
		for _, pos := range positions {
			series, haveSeries := positionReturns[pos.Symbol]
			if !haveSeries {
				continue
			}
			var row domain.PositionFactorBeta
			if haveProxy {
				row = s.estimator.Estimate(portfolioID, pos.Symbol, factor.Name, asOf, series, proxy)
			} else {
				row = domain.PositionFactorBeta{
					PortfolioID: portfolioID,
					Symbol:      pos.Symbol,
					Factor:      factor.Name,
					AsOf:        asOf,
					FitQuality:  domain.FitLowData,
				}
			}
			factorRows = append(factorRows, &row)
		}

		s.gate.Winsorize(factor.Name, factorRows)
		for _, row := range factorRows {
			betaRows = append(betaRows, *row)
		}
	}

	exposures := s.aggregator.Aggregate(portfolioID, asOf, positions, betaRows)

	// Risk metrics degrade independently: a portfolio with no snapshot
	// history still gets betas and exposures.
	var metrics *domain.RiskMetricsResult
	cov, covErr := s.covBuilder.Build(proxyReturns)
	if covErr != nil {
		s.log.Warn().Err(covErr).Str("portfolio_id", portfolioID).Msg("Factor covariance unavailable, skipping risk metrics")
	} else {
		portfolioRets, err := s.portfolios.DailyReturns(portfolioID, start, asOf)
		if err != nil {
			return err
		}
		m, err := s.riskEngine.Compute(portfolioID, asOf, portfolioRets, exposures, cov)
		if err != nil {
			s.log.Warn().Err(err).Str("portfolio_id", portfolioID).Msg("Risk metrics unavailable")
		} else {
			metrics = &m
		}
	}

	if err := s.commit(portfolioID, asOf, betaRows, exposures, metrics, gaps, started); err != nil {
		return err
	}

	s.cache.InvalidatePortfolio(portfolioID)

	s.log.Info().
		Str("portfolio_id", portfolioID).
		Str("as_of", asOf).
		Int("positions", len(positions)).
		Int("beta_rows", len(betaRows)).
		Int("gaps", len(gaps)).
		Dur("elapsed", time.Since(started)).
		Msg("Recalculation committed")

	return nil
}

// commit persists one complete result set atomically.
func (s *CalculationService) commit(
	portfolioID, asOf string,
	betaRows []domain.PositionFactorBeta,
	exposures []domain.PortfolioFactorExposure,
	metrics *domain.RiskMetricsResult,
	gaps []string,
	started time.Time,
) error {
	tx, err := s.analyticsDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin result transaction: %w", err)
	}

	if err := s.betaRepo.SaveTx(tx, portfolioID, asOf, betaRows); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.exposureRepo.SaveTx(tx, portfolioID, asOf, exposures); err != nil {
		_ = tx.Rollback()
		return err
	}
	if metrics != nil {
		if err := s.metricsRepo.SaveTx(tx, *metrics); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := s.runs.RecordTx(tx, portfolioID, asOf, gaps, started); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result set: %w", err)
	}
	return nil
}

// resolveAsOf defaults an empty as-of date to today (UTC).
func resolveAsOf(asOf string) string {
	if asOf == "" {
		return time.Now().UTC().Format("2006-01-02")
	}
	return asOf
}

// windowStart returns the calendar start date covering lookbackDays
// trading days (7/5 calendar-to-trading ratio plus slack).
func windowStart(asOf string, lookbackDays int) string {
	end, err := time.Parse("2006-01-02", asOf)
	if err != nil {
		end = time.Now().UTC()
	}
	calendarDays := lookbackDays*7/5 + 10
	return end.AddDate(0, 0, -calendarDays).Format("2006-01-02")
}

func copyBetas(in []domain.PositionFactorBeta) []domain.PositionFactorBeta {
	out := make([]domain.PositionFactorBeta, len(in))
	copy(out, in)
	return out
}

func copyExposures(in []domain.PortfolioFactorExposure) []domain.PortfolioFactorExposure {
	out := make([]domain.PortfolioFactorExposure, len(in))
	copy(out, in)
	return out
}
