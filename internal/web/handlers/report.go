package handlers

import (
	"net/http"
	"time"

	"github.com/kozaktomas/photo-report/internal/report"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// ReportHandler serves the whole session report at once.
type ReportHandler struct{}

// NewReportHandler creates a new report handler.
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// ReportResponse is a full snapshot of the session report.
type ReportResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	report.Snapshot
}

func reportState(rep *report.Report) ReportResponse {
	return ReportResponse{ID: rep.ID, CreatedAt: rep.CreatedAt, Snapshot: rep.Snapshot()}
}

// Get returns metadata, photos and preview in one consistent read.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, reportState(rep))
}
