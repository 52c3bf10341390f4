package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/riskdesk/internal/domain"
	"github.com/aristath/riskdesk/internal/modules/stress"
	"github.com/aristath/riskdesk/internal/services"
)

// RiskHandlers serves the engine's four read operations. All responses for
// a fixed as-of date come straight from the calculation cache.
type RiskHandlers struct {
	calc *services.CalculationService
	runs *services.RunRepository
	log  zerolog.Logger
}

// NewRiskHandlers creates a new risk handler set.
func NewRiskHandlers(calc *services.CalculationService, runs *services.RunRepository, log zerolog.Logger) *RiskHandlers {
	return &RiskHandlers{
		calc: calc,
		runs: runs,
		log:  log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetBetas returns position-level factor betas with their fit
// quality diagnostics.
func (h *RiskHandlers) HandleGetBetas(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	asOf := r.URL.Query().Get("as_of")

	betas, err := h.calc.GetPositionBetas(portfolioID, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"portfolio_id": portfolioID,
		"betas":        betas,
	})
}

// HandleGetExposures returns portfolio-level factor dollar exposures.
// The note field is part of the contract: exposures across factors do not
// sum to gross exposure and must not be normalized to.
func (h *RiskHandlers) HandleGetExposures(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	asOf := r.URL.Query().Get("as_of")

	exposures, err := h.calc.GetPortfolioFactorExposures(portfolioID, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp := map[string]interface{}{
		"portfolio_id": portfolioID,
		"exposures":    exposures,
		"note":         "factor dollar exposures overlap and do not sum to gross exposure",
	}

	if len(exposures) > 0 {
		if run, err := h.runs.Latest(portfolioID, exposures[0].AsOf); err == nil && len(run.GapList) > 0 {
			resp["data_gaps"] = run.GapList
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetMetrics returns the portfolio's risk metrics.
func (h *RiskHandlers) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")
	asOf := r.URL.Query().Get("as_of")

	metrics, err := h.calc.GetRiskMetrics(portfolioID, asOf)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, metrics)
}

// stressRequest accepts either a named built-in scenario or custom shocks.
type stressRequest struct {
	Scenario string             `json:"scenario,omitempty"`
	Shocks   map[string]float64 `json:"shocks,omitempty"`
	AsOf     string             `json:"as_of,omitempty"`
}

// HandleStressTest runs one stress scenario against the portfolio.
func (h *RiskHandlers) HandleStressTest(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "portfolioID")

	var req stressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var scenario domain.StressScenario
	switch {
	case req.Scenario != "":
		s, err := stress.ScenarioByName(req.Scenario)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		scenario = s
	case len(req.Shocks) > 0:
		scenario = domain.StressScenario{Name: "custom", Shocks: req.Shocks}
	default:
		h.writeError(w, http.StatusBadRequest, "scenario name or shocks required")
		return
	}

	result, err := h.calc.RunStressTest(portfolioID, req.AsOf, scenario)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleListScenarios returns the built-in scenario definitions.
func (h *RiskHandlers) HandleListScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": stress.Scenarios(),
	})
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
func (h *RiskHandlers) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPortfolioNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotCalculated),
		errors.Is(err, domain.ErrDataInsufficient),
		errors.Is(err, domain.ErrDataMissingUpstream):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.log.Error().Err(err).Msg("Request failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *RiskHandlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *RiskHandlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
