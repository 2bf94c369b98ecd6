package api

import "github.com/warp/sport-bonus/report"

// =============================================================================
// RESPONSE DTOs
// =============================================================================

// ReportResponse lists report rows.
type ReportResponse struct {
	Table string          `json:"table"`
	Count int             `json:"count"`
	Rows  []report.Record `json:"rows"`
}

// SummaryResponse carries the aggregate of a report table.
type SummaryResponse struct {
	Table   string               `json:"table"`
	Summary report.SummaryRecord `json:"summary"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
