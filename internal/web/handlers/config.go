package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/latex"
	"github.com/kozaktomas/photo-report/internal/printview"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config       *config.Config
	pdfAvailable bool
}

// NewConfigHandler creates a new config handler. PDF availability is probed
// once at startup.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config:       cfg,
		pdfAvailable: latex.NewGenerator(cfg.PDF, printview.Options{}).Available(),
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	UploadField     string `json:"upload_field"`
	MaxRequestBytes int64  `json:"max_request_bytes"`
	MaxPhotoBytes   int64  `json:"max_photo_bytes"`
	DefaultTitle    string `json:"default_title"`
	Organization    string `json:"organization,omitempty"`
	LogoURL         string `json:"logo_url,omitempty"`
	PDFAvailable    bool   `json:"pdf_available"`
	PhotosPerPage   int    `json:"photos_per_page"`
}

// Get returns the public configuration the UI needs.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, ConfigResponse{
		UploadField:     constants.UploadFormField,
		MaxRequestBytes: h.config.Upload.MaxRequestBytes,
		MaxPhotoBytes:   h.config.Upload.MaxPhotoBytes,
		DefaultTitle:    h.config.Report.DefaultTitle,
		Organization:    h.config.Report.Organization,
		LogoURL:         h.config.Report.LogoURL,
		PDFAvailable:    h.pdfAvailable,
		PhotosPerPage:   latex.DefaultLayoutConfig(h.config.PDF).PhotosPerPage(),
	})
}
