/*
handlers.go - HTTP handlers of the report API

PURPOSE:
  Serves the persisted report table read-only. Nothing here computes
  eligibility; rows are returned exactly as the last run stored them.

QUERY PARAMETERS:
  GET /api/report?eligible=bonus     only rows with eligibility_bonus
  GET /api/report?eligible=wellness  only rows with eligibility_wellness_days

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status:
  - 400: Unknown filter value
  - 404: No report table yet, or unknown employee
  - 503: Sink unreachable (healthz)
  - 500: Anything else

SEE ALSO:
  - dto.go: Response structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/sport-bonus/report"
	"github.com/warp/sport-bonus/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

type Handler struct {
	Reader  store.Reader
	Table   string
	Metrics http.Handler // optional /metrics handler
}

func NewHandler(reader store.Reader, table string, metrics http.Handler) *Handler {
	if table == "" {
		table = report.DefaultTable
	}
	return &Handler{Reader: reader, Table: table, Metrics: metrics}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the underlying sink answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Reader.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// =============================================================================
// REPORT
// =============================================================================

func (h *Handler) ListReport(w http.ResponseWriter, r *http.Request) {
	keep, ok := filterFor(r.URL.Query().Get("eligible"))
	if !ok {
		writeError(w, http.StatusBadRequest, "eligible must be bonus or wellness", nil)
		return
	}

	rows, ok := h.rows(w, r)
	if !ok {
		return
	}

	records := make([]report.Record, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			records = append(records, row.Record())
		}
	}
	writeJSON(w, http.StatusOK, ReportResponse{Table: h.Table, Count: len(records), Rows: records})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.rows(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Table: h.Table, Summary: report.Summarize(rows).Record()})
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")

	row, err := h.Reader.GetReport(r.Context(), h.Table, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "employee not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read report", err)
		return
	}
	writeJSON(w, http.StatusOK, row.Record())
}

func (h *Handler) rows(w http.ResponseWriter, r *http.Request) ([]report.Row, bool) {
	rows, err := h.Reader.ListReport(r.Context(), h.Table)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report table not found, run the pipeline first", nil)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read report", err)
		return nil, false
	}
	return rows, true
}

func filterFor(eligible string) (func(report.Row) bool, bool) {
	switch eligible {
	case "":
		return func(report.Row) bool { return true }, true
	case "bonus":
		return func(r report.Row) bool { return r.EligibleBonus }, true
	case "wellness":
		return func(r report.Row) bool { return r.EligibleWellnessDays }, true
	default:
		return nil, false
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
