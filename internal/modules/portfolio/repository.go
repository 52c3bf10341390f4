// Package portfolio provides read access to portfolios, their positions,
// and daily value snapshots.
package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// Portfolio is one tracked portfolio.
type Portfolio struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Repository reads portfolios and positions from the portfolio database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "portfolio_repository").Logger(),
	}
}

// List returns all portfolios.
func (r *Repository) List() ([]Portfolio, error) {
	rows, err := r.db.Query(`SELECT id, name FROM portfolios ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolios: %w", err)
	}
	defer rows.Close()

	var result []Portfolio
	for rows.Next() {
		var p Portfolio
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// ListPositions returns the portfolio's positions as of the given date
// (the latest position set at or before asOf). Positions failing
// validation are skipped with a warning rather than failing the batch.
func (r *Repository) ListPositions(portfolioID, asOf string) ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT p.portfolio_id, p.symbol, p.underlying, p.kind, p.quantity, p.multiplier, p.market_value, p.delta
		FROM positions p
		INNER JOIN (
			SELECT symbol, MAX(as_of) AS as_of
			FROM positions
			WHERE portfolio_id = ? AND as_of <= ?
			GROUP BY symbol
		) latest ON p.symbol = latest.symbol AND p.as_of = latest.as_of
		WHERE p.portfolio_id = ?
		ORDER BY p.symbol
	`, portfolioID, asOf, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var pos domain.Position
		var kind string
		var delta sql.NullFloat64
		if err := rows.Scan(
			&pos.PortfolioID, &pos.Symbol, &pos.Underlying, &kind,
			&pos.Quantity, &pos.Multiplier, &pos.MarketValue, &delta,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		pos.Kind = domain.PositionKind(kind)
		if delta.Valid {
			d := delta.Float64
			pos.Delta = &d
		}

		if err := pos.Validate(); err != nil {
			r.log.Warn().Err(err).
				Str("portfolio_id", portfolioID).
				Str("symbol", pos.Symbol).
				Msg("Skipping invalid position")
			continue
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: %s as of %s", domain.ErrPortfolioNotFound, portfolioID, asOf)
	}

	return positions, nil
}

// DailyReturns builds the portfolio's daily return series from value
// snapshots: r_t = daily_pnl_t / total_value_{t-1}. Days without a prior
// value are skipped.
func (r *Repository) DailyReturns(portfolioID, start, end string) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT date, total_value, daily_pnl
		FROM portfolio_snapshots
		WHERE portfolio_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, portfolioID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var returns []float64
	prevValue := 0.0
	first := true
	for rows.Next() {
		var date string
		var totalValue, dailyPnL float64
		if err := rows.Scan(&date, &totalValue, &dailyPnL); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if !first && prevValue > 0 {
			returns = append(returns, dailyPnL/prevValue)
		}
		prevValue = totalValue
		first = false
	}
	return returns, rows.Err()
}

// LatestValue returns the most recent snapshot total value at or before
// asOf. Falls back to summing position market values when no snapshot
// exists.
func (r *Repository) LatestValue(portfolioID, asOf string) (float64, error) {
	var value float64
	err := r.db.QueryRow(`
		SELECT total_value FROM portfolio_snapshots
		WHERE portfolio_id = ? AND date <= ?
		ORDER BY date DESC LIMIT 1
	`, portfolioID, asOf).Scan(&value)
	if err == nil {
		return value, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query latest value: %w", err)
	}

	positions, err := r.ListPositions(portfolioID, asOf)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, p := range positions {
		total += p.MarketValue
	}
	return total, nil
}

// SaveSnapshot upserts one daily value snapshot.
func (r *Repository) SaveSnapshot(portfolioID, date string, totalValue, dailyPnL float64) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio_snapshots (portfolio_id, date, total_value, daily_pnl)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(portfolio_id, date) DO UPDATE SET
			total_value = excluded.total_value,
			daily_pnl = excluded.daily_pnl
	`, portfolioID, date, totalValue, dailyPnL)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}
