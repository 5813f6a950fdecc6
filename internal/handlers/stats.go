package handlers

import (
	"net/http"
	"strconv"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/middleware"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/services"
)

const (
	maxDailyWindow  = 366
	maxWeeklyWindow = 104
)

type StatsHandler struct {
	stats        *services.StatsService
	defaultDays  int
	defaultWeeks int
}

func NewStatsHandler(stats *services.StatsService, defaultDays, defaultWeeks int) *StatsHandler {
	return &StatsHandler{stats: stats, defaultDays: defaultDays, defaultWeeks: defaultWeeks}
}

// Daily returns minutes per day for the last ?days days, zero-filled.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	days, ok := windowParam(w, r, "days", h.defaultDays, maxDailyWindow)
	if !ok {
		return
	}

	series, err := h.stats.DailyTotals(r.Context(), middleware.GetUserID(r.Context()), days)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"totals": series,
	})
}

// Weekly returns minutes per ISO week for the last ?weeks weeks. Weeks
// without sessions are omitted.
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	weeks, ok := windowParam(w, r, "weeks", h.defaultWeeks, maxWeeklyWindow)
	if !ok {
		return
	}

	series, err := h.stats.WeeklyTotals(r.Context(), middleware.GetUserID(r.Context()), weeks)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weeks":  weeks,
		"totals": series,
	})
}

func (h *StatsHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.Report(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"report": report})
}

func (h *StatsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.stats.Dashboard(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// windowParam reads an integer query parameter. Values below 1 are passed
// through so the engine reports them; values above max are rejected here.
func windowParam(w http.ResponseWriter, r *http.Request, name string, fallback, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{name: "Must be an integer"}, r))
		return 0, false
	}
	if n > max {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{name: "Must be at most " + strconv.Itoa(max)}, r))
		return 0, false
	}
	return n, true
}
