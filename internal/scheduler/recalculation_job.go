package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/modules/portfolio"
	"github.com/aristath/riskdesk/internal/services"
)

// RecalculationJob recomputes betas, exposures, and risk metrics for every
// portfolio. Portfolios are independent, so recalculations run in parallel
// up to maxParallel; each portfolio's failure is isolated from the rest.
type RecalculationJob struct {
	calc        *services.CalculationService
	portfolios  *portfolio.Repository
	maxParallel int
	log         zerolog.Logger
}

// NewRecalculationJob creates the batch recalculation job.
func NewRecalculationJob(
	calc *services.CalculationService,
	portfolios *portfolio.Repository,
	maxParallel int,
	log zerolog.Logger,
) *RecalculationJob {
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &RecalculationJob{
		calc:        calc,
		portfolios:  portfolios,
		maxParallel: maxParallel,
		log:         log.With().Str("job", "recalculation").Logger(),
	}
}

// Name returns the job name.
func (j *RecalculationJob) Name() string {
	return "recalculation"
}

// Run executes one batch. Each portfolio's result set commits atomically
// inside the calculation service; a failed portfolio is retried on the
// next batch rather than leaving partial results behind.
func (j *RecalculationJob) Run() error {
	batchID := uuid.NewString()
	asOf := time.Now().UTC().Format("2006-01-02")

	list, err := j.portfolios.List()
	if err != nil {
		return err
	}

	j.log.Info().
		Str("batch_id", batchID).
		Str("as_of", asOf).
		Int("portfolios", len(list)).
		Msg("Starting recalculation batch")

	var wg sync.WaitGroup
	sem := make(chan struct{}, j.maxParallel)
	var mu sync.Mutex
	failed := 0

	for _, p := range list {
		wg.Add(1)
		sem <- struct{}{}
		go func(portfolioID string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := j.calc.Recalculate(portfolioID, asOf); err != nil {
				j.log.Error().Err(err).
					Str("batch_id", batchID).
					Str("portfolio_id", portfolioID).
					Msg("Portfolio recalculation failed")
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(p.ID)
	}
	wg.Wait()

	j.log.Info().
		Str("batch_id", batchID).
		Int("portfolios", len(list)).
		Int("failed", failed).
		Msg("Recalculation batch finished")

	return nil
}
