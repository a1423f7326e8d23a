package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-report/internal/report"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// MetadataHandler handles the report header fields.
type MetadataHandler struct{}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// Get returns the metadata.
func (h *MetadataHandler) Get(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, rep.Info.Get())
}

// Replace sets every field; omitted fields become empty.
func (h *MetadataHandler) Replace(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	var m report.Metadata
	if err := decodeJSON(w, r, &m); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	rep.Info.Replace(m)
	respondJSON(w, http.StatusOK, rep.Info.Get())
}

// Patch sets only the fields present in the body.
func (h *MetadataHandler) Patch(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	var p report.MetadataPatch
	if err := decodeJSON(w, r, &p); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	respondJSON(w, http.StatusOK, rep.Info.Patch(p))
}
