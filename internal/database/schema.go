package database

// schemas maps database names to their embedded DDL. Each schema is
// idempotent so it can be re-applied on every startup.
var schemas = map[string]string{
	"history":   historySchema,
	"portfolio": portfolioSchema,
	"analytics": analyticsSchema,
}

// historySchema holds raw daily close prices for positions and factor
// proxies. A NULL close records a day the instrument was expected to trade
// but no price was available; absent rows are non-trading days.
const historySchema = `
CREATE TABLE IF NOT EXISTS daily_prices (
    symbol TEXT NOT NULL,
    date   TEXT NOT NULL,
    close  REAL,
    PRIMARY KEY (symbol, date)
);

CREATE INDEX IF NOT EXISTS idx_daily_prices_date ON daily_prices(date);
`

const portfolioSchema = `
CREATE TABLE IF NOT EXISTS portfolios (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS positions (
    portfolio_id TEXT NOT NULL,
    symbol       TEXT NOT NULL,
    underlying   TEXT NOT NULL DEFAULT '',
    kind         TEXT NOT NULL,
    quantity     REAL NOT NULL,
    multiplier   REAL NOT NULL DEFAULT 1,
    market_value REAL NOT NULL CHECK (market_value >= 0),
    delta        REAL,
    as_of        TEXT NOT NULL,
    PRIMARY KEY (portfolio_id, symbol, as_of)
);

CREATE TABLE IF NOT EXISTS portfolio_snapshots (
    portfolio_id TEXT NOT NULL,
    date         TEXT NOT NULL,
    total_value  REAL NOT NULL,
    daily_pnl    REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (portfolio_id, date)
);
`

const analyticsSchema = `
CREATE TABLE IF NOT EXISTS position_factor_betas (
    portfolio_id   TEXT NOT NULL,
    symbol         TEXT NOT NULL,
    factor         TEXT NOT NULL,
    as_of          TEXT NOT NULL,
    beta           REAL NOT NULL,
    r_squared      REAL NOT NULL,
    std_error      REAL NOT NULL,
    n_observations INTEGER NOT NULL,
    fit_quality    TEXT NOT NULL,
    PRIMARY KEY (portfolio_id, symbol, factor, as_of)
);

CREATE TABLE IF NOT EXISTS portfolio_factor_exposures (
    portfolio_id           TEXT NOT NULL,
    factor                 TEXT NOT NULL,
    as_of                  TEXT NOT NULL,
    dollar_exposure        REAL NOT NULL,
    signed_beta            REAL NOT NULL,
    magnitude_beta         REAL NOT NULL,
    contributing_positions INTEGER NOT NULL,
    quality                TEXT NOT NULL,
    PRIMARY KEY (portfolio_id, factor, as_of)
);

CREATE TABLE IF NOT EXISTS risk_metrics (
    portfolio_id        TEXT NOT NULL,
    as_of               TEXT NOT NULL,
    var_95              REAL NOT NULL,
    var_99              REAL NOT NULL,
    sharpe              REAL NOT NULL,
    volatility          REAL NOT NULL,
    max_drawdown        REAL NOT NULL,
    n_observations      INTEGER NOT NULL,
    window_short        INTEGER NOT NULL DEFAULT 0,
    covariance_diagonal INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (portfolio_id, as_of)
);

CREATE TABLE IF NOT EXISTS calculation_runs (
    run_id       TEXT NOT NULL,
    portfolio_id TEXT NOT NULL,
    as_of        TEXT NOT NULL,
    started_at   TEXT NOT NULL,
    finished_at  TEXT,
    status       TEXT NOT NULL,
    gap_list     TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (run_id, portfolio_id)
);
`
