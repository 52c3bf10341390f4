package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/scheduler"
)

// SystemHandlers handles health reporting and manual job triggers.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	scheduler   *scheduler.Scheduler
	recalcJob   scheduler.Job
	priceSync   scheduler.Job
	historyDB   *database.DB
	portfolioDB *database.DB
	analyticsDB *database.DB
}

// NewSystemHandlers creates a new system handlers instance.
func NewSystemHandlers(
	log zerolog.Logger,
	sched *scheduler.Scheduler,
	recalcJob, priceSync scheduler.Job,
	historyDB, portfolioDB, analyticsDB *database.DB,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		scheduler:   sched,
		recalcJob:   recalcJob,
		priceSync:   priceSync,
		historyDB:   historyDB,
		portfolioDB: portfolioDB,
		analyticsDB: analyticsDB,
	}
}

// HealthResponse reports process and database health.
type HealthResponse struct {
	Status      string            `json:"status"`
	UptimeHours float64           `json:"uptime_hours"`
	CPUPercent  float64           `json:"cpu_percent"`
	RAMPercent  float64           `json:"ram_percent"`
	Databases   map[string]string `json:"databases"`
	CheckedAt   string            `json:"checked_at"`
}

// HandleHealth returns process stats and a quick integrity check of each
// database.
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	ctx := r.Context()
	databases := map[string]string{
		"history":   h.checkDB(ctx, h.historyDB),
		"portfolio": h.checkDB(ctx, h.portfolioDB),
		"analytics": h.checkDB(ctx, h.analyticsDB),
	}

	status := "ok"
	for _, dbStatus := range databases {
		if dbStatus != "ok" {
			status = "degraded"
		}
	}

	h.writeJSON(w, HealthResponse{
		Status:      status,
		UptimeHours: time.Since(h.startupTime).Hours(),
		CPUPercent:  cpuPercent,
		RAMPercent:  ramPercent,
		Databases:   databases,
		CheckedAt:   time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleTriggerRecalc triggers the recalculation batch job immediately.
// POST /api/system/jobs/recalculate
func (h *SystemHandlers) HandleTriggerRecalc(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual recalculation triggered")

	if err := h.scheduler.RunNow(h.recalcJob); err != nil {
		h.log.Error().Err(err).Msg("Failed to trigger recalculation")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": "Recalculation triggered",
	})
}

// HandleTriggerPriceSync triggers the price sync job immediately.
// POST /api/system/jobs/price-sync
func (h *SystemHandlers) HandleTriggerPriceSync(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual price sync triggered")

	if err := h.scheduler.RunNow(h.priceSync); err != nil {
		h.log.Error().Err(err).Msg("Failed to trigger price sync")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": "Price sync triggered",
	})
}

func (h *SystemHandlers) checkDB(ctx context.Context, db *database.DB) string {
	if db == nil {
		return "not configured"
	}
	if err := db.QuickCheck(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database quick check failed")
		return err.Error()
	}
	return "ok"
}

// getSystemStats calculates CPU and RAM usage percentages. The CPU sample
// uses a 100ms window so the health endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
