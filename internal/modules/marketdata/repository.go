// Package marketdata provides access to raw daily close-price history for
// positions and factor proxy instruments.
package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
)

// ClosePoint is one observation in a daily close series. Missing marks a
// day the instrument was expected to trade but no price was available.
type ClosePoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD
	Close   float64 `json:"close"`
	Missing bool    `json:"missing,omitempty"`
}

// Repository reads and writes daily close prices in the history database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new market data repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "marketdata").Logger(),
	}
}

// GetDailyCloses returns the ordered daily close series for an instrument
// between start and end (inclusive, YYYY-MM-DD). Days stored with a NULL
// close come back with Missing set; they are never zero-filled.
func (r *Repository) GetDailyCloses(symbol, start, end string) ([]ClosePoint, error) {
	rows, err := r.db.Query(`
		SELECT date, close
		FROM daily_prices
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily closes for %s: %w", symbol, err)
	}
	defer rows.Close()

	var points []ClosePoint
	for rows.Next() {
		var date string
		var close sql.NullFloat64
		if err := rows.Scan(&date, &close); err != nil {
			return nil, fmt.Errorf("failed to scan close row for %s: %w", symbol, err)
		}
		if close.Valid {
			points = append(points, ClosePoint{Date: date, Close: close.Float64})
		} else {
			points = append(points, ClosePoint{Date: date, Missing: true})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating close rows for %s: %w", symbol, err)
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no price history for %s", domain.ErrDataMissingUpstream, symbol)
	}

	return points, nil
}

// UpsertCloses writes a batch of close points for one instrument. Existing
// rows for the same (symbol, date) are replaced.
func (r *Repository) UpsertCloses(symbol string, points []ClosePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin price upsert for %s: %w", symbol, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO daily_prices (symbol, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare price upsert for %s: %w", symbol, err)
	}
	defer stmt.Close()

	for _, p := range points {
		var close interface{}
		if !p.Missing {
			close = p.Close
		}
		if _, err := stmt.Exec(symbol, p.Date, close); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert close %s/%s: %w", symbol, p.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price upsert for %s: %w", symbol, err)
	}

	r.log.Debug().Str("symbol", symbol).Int("points", len(points)).Msg("Upserted daily closes")
	return nil
}

// Symbols returns the distinct instruments present in the history database.
func (r *Repository) Symbols() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT symbol FROM daily_prices ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
