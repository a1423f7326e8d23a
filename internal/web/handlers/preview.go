package handlers

import (
	"errors"
	"net/http"

	"github.com/kozaktomas/photo-report/internal/report"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// PreviewHandler handles the enlarged single-photo view.
type PreviewHandler struct{}

// NewPreviewHandler creates a new preview handler.
func NewPreviewHandler() *PreviewHandler {
	return &PreviewHandler{}
}

// PreviewResponse is the preview state after a command.
type PreviewResponse struct {
	Changed bool                `json:"changed"`
	Open    bool                `json:"open"`
	Preview *report.PreviewView `json:"preview,omitempty"`
}

// OpenRequest names the photo to show.
type OpenRequest struct {
	ID string `json:"id"`
}

func previewState(rep *report.Report, changed bool) PreviewResponse {
	view, ok := rep.Photos.Preview()
	if !ok {
		return PreviewResponse{Changed: changed}
	}
	return PreviewResponse{Changed: changed, Open: true, Preview: &view}
}

// Get returns the current preview.
func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, previewState(rep, false))
}

// Open shows a photo in the preview.
func (h *PreviewHandler) Open(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	var req OpenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	changed, err := rep.Photos.Open(req.ID)
	if err != nil {
		if errors.Is(err, report.ErrPhotoNotFound) {
			respondError(w, http.StatusNotFound, "photo not found")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, previewState(rep, changed))
}

// Close hides the preview.
func (h *PreviewHandler) Close(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, previewState(rep, rep.Photos.Close()))
}

// Next moves the preview forward. It is a no-op at the last photo.
func (h *PreviewHandler) Next(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, previewState(rep, rep.Photos.Next()))
}

// Prev moves the preview back. It is a no-op at the first photo.
func (h *PreviewHandler) Prev(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, previewState(rep, rep.Photos.Prev()))
}
