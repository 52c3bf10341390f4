package domain

// FitQuality classifies how trustworthy an estimated beta is. Callers must
// branch on quality rather than receiving indistinguishable numbers.
type FitQuality string

const (
	// FitOK - regression met the minimum sample requirement and was not altered.
	FitOK FitQuality = "ok"
	// FitLowData - too little aligned history; beta is reported as zero.
	FitLowData FitQuality = "low_data"
	// FitWinsorized - beta was capped at the cross-sectional P1/P99 bound.
	FitWinsorized FitQuality = "winsorized"
	// FitEstimated - beta was backfilled from other positions' estimates and
	// must never be presented as precise.
	FitEstimated FitQuality = "estimated_non_attributable"
)

// PositionFactorBeta is one (position, factor, as-of) regression result.
// Rows are never mutated, only superseded by a newer as-of date.
type PositionFactorBeta struct {
	PortfolioID string     `json:"portfolio_id"`
	Symbol      string     `json:"symbol"`
	Factor      string     `json:"factor"`
	AsOf        string     `json:"as_of"` // YYYY-MM-DD
	Beta        float64    `json:"beta"`
	RSquared    float64    `json:"r_squared"`
	StdError    float64    `json:"std_error"`
	NObs        int        `json:"n_observations"`
	FitQuality  FitQuality `json:"fit_quality"`
}

// PortfolioFactorExposure is one portfolio-level factor attribution row.
//
// DollarExposure values across different factors are intentionally not
// required to sum to gross exposure: factors overlap, and summing them has
// no financial meaning.
type PortfolioFactorExposure struct {
	PortfolioID           string     `json:"portfolio_id"`
	Factor                string     `json:"factor"`
	AsOf                  string     `json:"as_of"`
	DollarExposure        float64    `json:"dollar_exposure"`
	SignedBeta            float64    `json:"signed_beta"`
	MagnitudeBeta         float64    `json:"magnitude_beta"`
	ContributingPositions int        `json:"contributing_positions"`
	Quality               FitQuality `json:"quality"`
}

// RiskMetricsResult holds the portfolio-level risk numbers for one as-of date.
type RiskMetricsResult struct {
	PortfolioID        string  `json:"portfolio_id"`
	AsOf               string  `json:"as_of"`
	VaR95              float64 `json:"var_95"`
	VaR99              float64 `json:"var_99"`
	Sharpe             float64 `json:"sharpe"`
	Volatility         float64 `json:"volatility"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	NObs               int     `json:"n_observations"`
	WindowShort        bool    `json:"window_short"`
	CovarianceDiagonal bool    `json:"covariance_diagonal"`
}

// StressScenario is a named set of per-factor shock values, e.g. a -10%
// market shock. Shocks are simple returns applied to factor proxies.
type StressScenario struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Shocks      map[string]float64 `json:"shocks"`
}

// FactorContribution is one factor's unclipped P&L contribution to a
// stress scenario result.
type FactorContribution struct {
	Factor         string  `json:"factor"`
	DollarExposure float64 `json:"dollar_exposure"`
	Shock          float64 `json:"shock"`
	PnL            float64 `json:"pnl"`
}

// StressResult is the estimated scenario P&L for one portfolio. Floored is
// set when the aggregate loss floor was applied to the total; individual
// contributions are never clipped.
type StressResult struct {
	PortfolioID   string               `json:"portfolio_id"`
	Scenario      string               `json:"scenario"`
	AsOf          string               `json:"as_of"`
	EstimatedPnL  float64              `json:"estimated_pnl"`
	Floored       bool                 `json:"floored"`
	Contributions []FactorContribution `json:"per_factor_contribution"`
}
