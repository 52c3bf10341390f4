package risk

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// Repository persists risk metrics snapshots in the analytics database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new risk metrics repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "risk_repository").Logger(),
	}
}

// SaveTx writes the metrics row inside the caller's transaction, replacing
// any prior row for the same (portfolio, as-of).
func (r *Repository) SaveTx(tx *sql.Tx, m domain.RiskMetricsResult) error {
	_, err := tx.Exec(`
		INSERT INTO risk_metrics
			(portfolio_id, as_of, var_95, var_99, sharpe, volatility, max_drawdown, n_observations, window_short, covariance_diagonal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, as_of) DO UPDATE SET
			var_95 = excluded.var_95,
			var_99 = excluded.var_99,
			sharpe = excluded.sharpe,
			volatility = excluded.volatility,
			max_drawdown = excluded.max_drawdown,
			n_observations = excluded.n_observations,
			window_short = excluded.window_short,
			covariance_diagonal = excluded.covariance_diagonal
	`, m.PortfolioID, m.AsOf, m.VaR95, m.VaR99, m.Sharpe, m.Volatility, m.MaxDrawdown,
		m.NObs, boolToInt(m.WindowShort), boolToInt(m.CovarianceDiagonal))
	if err != nil {
		return fmt.Errorf("failed to upsert risk metrics: %w", err)
	}
	return nil
}

// Get returns the metrics row for a portfolio and as-of date.
func (r *Repository) Get(portfolioID, asOf string) (domain.RiskMetricsResult, error) {
	var m domain.RiskMetricsResult
	var windowShort, covDiagonal int
	err := r.db.QueryRow(`
		SELECT portfolio_id, as_of, var_95, var_99, sharpe, volatility, max_drawdown, n_observations, window_short, covariance_diagonal
		FROM risk_metrics
		WHERE portfolio_id = ? AND as_of = ?
	`, portfolioID, asOf).Scan(
		&m.PortfolioID, &m.AsOf, &m.VaR95, &m.VaR99, &m.Sharpe,
		&m.Volatility, &m.MaxDrawdown, &m.NObs, &windowShort, &covDiagonal,
	)
	if err == sql.ErrNoRows {
		return m, domain.ErrNotCalculated
	}
	if err != nil {
		return m, fmt.Errorf("failed to query risk metrics: %w", err)
	}
	m.WindowShort = windowShort != 0
	m.CovarianceDiagonal = covDiagonal != 0
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
