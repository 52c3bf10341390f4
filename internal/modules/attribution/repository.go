package attribution

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// Repository persists portfolio factor exposures in the analytics database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new exposure repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "exposure_repository").Logger(),
	}
}

// SaveTx writes one cycle's exposure rows inside the caller's transaction,
// replacing prior rows for the same (portfolio, as-of).
func (r *Repository) SaveTx(tx *sql.Tx, portfolioID, asOf string, rows []domain.PortfolioFactorExposure) error {
	if _, err := tx.Exec(`
		DELETE FROM portfolio_factor_exposures WHERE portfolio_id = ? AND as_of = ?
	`, portfolioID, asOf); err != nil {
		return fmt.Errorf("failed to clear prior exposures: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO portfolio_factor_exposures
			(portfolio_id, factor, as_of, dollar_exposure, signed_beta, magnitude_beta, contributing_positions, quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare exposure insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(
			row.PortfolioID, row.Factor, row.AsOf,
			row.DollarExposure, row.SignedBeta, row.MagnitudeBeta,
			row.ContributingPositions, string(row.Quality),
		); err != nil {
			return fmt.Errorf("failed to insert exposure %s: %w", row.Factor, err)
		}
	}

	return nil
}

// Get returns all exposure rows for a portfolio and as-of date.
func (r *Repository) Get(portfolioID, asOf string) ([]domain.PortfolioFactorExposure, error) {
	rows, err := r.db.Query(`
		SELECT portfolio_id, factor, as_of, dollar_exposure, signed_beta, magnitude_beta, contributing_positions, quality
		FROM portfolio_factor_exposures
		WHERE portfolio_id = ? AND as_of = ?
		ORDER BY factor
	`, portfolioID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query exposures: %w", err)
	}
	defer rows.Close()

	var result []domain.PortfolioFactorExposure
	for rows.Next() {
		var e domain.PortfolioFactorExposure
		var quality string
		if err := rows.Scan(
			&e.PortfolioID, &e.Factor, &e.AsOf,
			&e.DollarExposure, &e.SignedBeta, &e.MagnitudeBeta,
			&e.ContributingPositions, &quality,
		); err != nil {
			return nil, fmt.Errorf("failed to scan exposure row: %w", err)
		}
		e.Quality = domain.FitQuality(quality)
		result = append(result, e)
	}
	return result, rows.Err()
}
