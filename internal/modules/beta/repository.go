package beta

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// Repository persists position factor betas in the analytics database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new beta repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "beta_repository").Logger(),
	}
}

// SaveTx writes one recalculation cycle's beta rows inside the caller's
// transaction, replacing any prior rows for the same (portfolio, as-of).
func (r *Repository) SaveTx(tx *sql.Tx, portfolioID, asOf string, rows []domain.PositionFactorBeta) error {
	if _, err := tx.Exec(`
		DELETE FROM position_factor_betas WHERE portfolio_id = ? AND as_of = ?
	`, portfolioID, asOf); err != nil {
		return fmt.Errorf("failed to clear prior betas: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO position_factor_betas
			(portfolio_id, symbol, factor, as_of, beta, r_squared, std_error, n_observations, fit_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare beta insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(
			row.PortfolioID, row.Symbol, row.Factor, row.AsOf,
			row.Beta, row.RSquared, row.StdError, row.NObs, string(row.FitQuality),
		); err != nil {
			return fmt.Errorf("failed to insert beta %s/%s: %w", row.Symbol, row.Factor, err)
		}
	}

	return nil
}

// Get returns all beta rows for a portfolio and as-of date.
func (r *Repository) Get(portfolioID, asOf string) ([]domain.PositionFactorBeta, error) {
	rows, err := r.db.Query(`
		SELECT portfolio_id, symbol, factor, as_of, beta, r_squared, std_error, n_observations, fit_quality
		FROM position_factor_betas
		WHERE portfolio_id = ? AND as_of = ?
		ORDER BY symbol, factor
	`, portfolioID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query betas: %w", err)
	}
	defer rows.Close()

	var result []domain.PositionFactorBeta
	for rows.Next() {
		var b domain.PositionFactorBeta
		var quality string
		if err := rows.Scan(
			&b.PortfolioID, &b.Symbol, &b.Factor, &b.AsOf,
			&b.Beta, &b.RSquared, &b.StdError, &b.NObs, &quality,
		); err != nil {
			return nil, fmt.Errorf("failed to scan beta row: %w", err)
		}
		b.FitQuality = domain.FitQuality(quality)
		result = append(result, b)
	}
	return result, rows.Err()
}
