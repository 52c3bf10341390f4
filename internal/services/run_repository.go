package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunRecord is the audit row for one completed recalculation.
type RunRecord struct {
	RunID       string   `json:"run_id"`
	PortfolioID string   `json:"portfolio_id"`
	AsOf        string   `json:"as_of"`
	StartedAt   string   `json:"started_at"`
	FinishedAt  string   `json:"finished_at"`
	Status      string   `json:"status"`
	GapList     []string `json:"gap_list"`
}

// RunRepository records recalculation runs and their data-gap lists so
// consumers can see which instruments lacked upstream data.
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db,
		log: log.With().Str("component", "run_repository").Logger(),
	}
}

// RecordTx writes the run row inside the caller's transaction.
func (r *RunRepository) RecordTx(tx *sql.Tx, portfolioID, asOf string, gaps []string, started time.Time) error {
	if gaps == nil {
		gaps = []string{}
	}
	gapJSON, err := json.Marshal(gaps)
	if err != nil {
		return fmt.Errorf("failed to marshal gap list: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO calculation_runs (run_id, portfolio_id, as_of, started_at, finished_at, status, gap_list)
		VALUES (?, ?, ?, ?, ?, 'ok', ?)
	`, uuid.NewString(), portfolioID, asOf,
		started.Format(time.RFC3339), time.Now().UTC().Format(time.RFC3339), string(gapJSON))
	if err != nil {
		return fmt.Errorf("failed to record calculation run: %w", err)
	}
	return nil
}

// Latest returns the most recent run for a portfolio and as-of date.
func (r *RunRepository) Latest(portfolioID, asOf string) (RunRecord, error) {
	var rec RunRecord
	var gapJSON string
	var finished sql.NullString
	err := r.db.QueryRow(`
		SELECT run_id, portfolio_id, as_of, started_at, finished_at, status, gap_list
		FROM calculation_runs
		WHERE portfolio_id = ? AND as_of = ?
		ORDER BY started_at DESC LIMIT 1
	`, portfolioID, asOf).Scan(
		&rec.RunID, &rec.PortfolioID, &rec.AsOf, &rec.StartedAt, &finished, &rec.Status, &gapJSON,
	)
	if err != nil {
		return rec, fmt.Errorf("failed to query latest run: %w", err)
	}
	if finished.Valid {
		rec.FinishedAt = finished.String
	}
	if err := json.Unmarshal([]byte(gapJSON), &rec.GapList); err != nil {
		return rec, fmt.Errorf("failed to decode gap list: %w", err)
	}
	return rec, nil
}
