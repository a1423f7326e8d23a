package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/photo"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// PhotosHandler handles the photo collection of the session report.
type PhotosHandler struct {
	config  *config.Config
	factory *photo.Factory
}

// NewPhotosHandler creates a new photos handler.
func NewPhotosHandler(cfg *config.Config) *PhotosHandler {
	return &PhotosHandler{
		config:  cfg,
		factory: photo.NewFactory(cfg.Upload),
	}
}

// PhotoListResponse is the ordered photo list.
type PhotoListResponse struct {
	Photos []photo.Photo `json:"photos"`
	Count  int           `json:"count"`
}

// UploadResponse reports the outcome of one upload batch.
type UploadResponse struct {
	Added    int                 `json:"added"`
	Rejected int                 `json:"rejected"`
	Dropped  []photo.DroppedBlob `json:"dropped"`
	Photos   []photo.Photo       `json:"photos"`
}

// List returns the photos in display order.
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	photos := rep.Photos.Photos()
	respondJSON(w, http.StatusOK, PhotoListResponse{Photos: photos, Count: len(photos)})
}

// Upload decodes the multipart "files" field and appends the photos to the
// report as one batch. Non-image files are skipped silently.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	if limit := h.config.Upload.MaxRequestBytes; limit > 0 {
		if r.ContentLength > limit {
			respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxRequestBytes)
	}
	if err := r.ParseMultipartForm(constants.MultipartMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[constants.UploadFormField]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	batch, err := h.factory.Build(r.Context(), photo.MultipartBlobs(files))
	if err != nil {
		log.Printf("Upload: batch of %d file(s) abandoned: %v", len(files), err)
		respondError(w, http.StatusServiceUnavailable, "upload cancelled")
		return
	}
	for _, d := range batch.Dropped {
		log.Printf("Upload: dropped %s: %s", sanitizeForLog(d.Name), sanitizeForLog(d.Reason))
	}

	added := rep.Photos.Add(batch.Photos)
	dropped := batch.Dropped
	if dropped == nil {
		dropped = []photo.DroppedBlob{}
	}
	respondJSON(w, http.StatusOK, UploadResponse{
		Added:    added,
		Rejected: batch.Rejected,
		Dropped:  dropped,
		Photos:   batch.Photos,
	})
}

// Image streams the original bytes of one photo.
func (h *PhotosHandler) Image(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	p, ok := rep.Photos.Photo(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	w.Header().Set("Content-Type", p.MediaType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, p.Name, p.AddedAt, p.Open())
}

// Remove deletes one photo. Unknown ids are a no-op.
func (h *PhotosHandler) Remove(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, changedResponse{Changed: rep.Photos.Remove(chi.URLParam(r, "id"))})
}

// CaptionRequest is the body of a caption edit.
type CaptionRequest struct {
	Caption *string `json:"caption"`
}

// UpdateCaption replaces the caption of one photo.
func (h *PhotosHandler) UpdateCaption(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	var req CaptionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Caption == nil {
		respondError(w, http.StatusBadRequest, "caption is required")
		return
	}
	respondJSON(w, http.StatusOK, changedResponse{Changed: rep.Photos.UpdateCaption(chi.URLParam(r, "id"), *req.Caption)})
}

// PositionRequest moves a photo either to an index or onto another photo's
// position (drag and drop).
type PositionRequest struct {
	Index  *int    `json:"index,omitempty"`
	OverID *string `json:"over_id,omitempty"`
}

// PositionResponse reports a move and the resulting order.
type PositionResponse struct {
	Changed bool     `json:"changed"`
	Order   []string `json:"order"`
}

// Move repositions one photo. Unknown ids and out-of-range indices are a no-op.
func (h *PhotosHandler) Move(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	var req PositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	id := chi.URLParam(r, "id")
	var changed bool
	switch {
	case req.Index != nil && req.OverID != nil:
		respondError(w, http.StatusBadRequest, "index and over_id are mutually exclusive")
		return
	case req.Index != nil:
		changed = rep.Photos.Reorder(id, *req.Index)
	case req.OverID != nil:
		changed = rep.Photos.MoveOnto(id, *req.OverID)
	default:
		respondError(w, http.StatusBadRequest, "index or over_id is required")
		return
	}
	respondJSON(w, http.StatusOK, PositionResponse{Changed: changed, Order: rep.Photos.IDs()})
}

// Clear removes every photo and closes the preview.
func (h *PhotosHandler) Clear(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}
	respondJSON(w, http.StatusOK, changedResponse{Changed: rep.Photos.Clear()})
}
