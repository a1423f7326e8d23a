package web

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/web/handlers"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
	"github.com/kozaktomas/photo-report/internal/web/static"
)

func (s *Server) setupRoutes() {
	// Create handlers
	reportHandler := handlers.NewReportHandler()
	photosHandler := handlers.NewPhotosHandler(s.config)
	previewHandler := handlers.NewPreviewHandler()
	metadataHandler := handlers.NewMetadataHandler()
	printHandler := handlers.NewPrintHandler(s.config)
	eventsHandler := handlers.NewEventsHandler()
	wsHandler := handlers.NewWebSocketHandler(s.config.Web.AllowedOrigins)
	configHandler := handlers.NewConfigHandler(s.config)

	// Health check (no session required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		// Everything else works on the caller's own report
		r.Group(func(r chi.Router) {
			r.Use(middleware.EnsureSession(s.sessionManager))

			// Change streams are long-lived and skip the request timeout
			r.Get("/events", eventsHandler.Stream)
			r.Get("/ws", wsHandler.Serve)

			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.Timeout(constants.RequestTimeout))

				r.Get("/report", reportHandler.Get)

				// Photos
				r.Get("/photos", photosHandler.List)
				r.Post("/photos", photosHandler.Upload)
				r.Delete("/photos", photosHandler.Clear)
				r.Get("/photos/{id}/image", photosHandler.Image)
				r.Delete("/photos/{id}", photosHandler.Remove)
				r.Put("/photos/{id}/caption", photosHandler.UpdateCaption)
				r.Put("/photos/{id}/position", photosHandler.Move)

				// Preview
				r.Get("/preview", previewHandler.Get)
				r.Put("/preview", previewHandler.Open)
				r.Delete("/preview", previewHandler.Close)
				r.Post("/preview/next", previewHandler.Next)
				r.Post("/preview/prev", previewHandler.Prev)

				// Metadata
				r.Get("/metadata", metadataHandler.Get)
				r.Put("/metadata", metadataHandler.Replace)
				r.Patch("/metadata", metadataHandler.Patch)

				// Print
				r.Get("/print", printHandler.HTML)
				r.Get("/print.pdf", printHandler.PDF)
			})
		})
	})

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the single-page application. Unknown non-asset paths fall
// back to index.html so client-side routes survive a reload.
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fs := static.GetFileSystem()
	name := r.URL.Path
	if name == "/" {
		name = "/index.html"
	}

	f, err := fs.Open(name)
	if err == nil {
		defer f.Close()
		if stat, err := f.Stat(); err == nil && !stat.IsDir() {
			contentType := mime.TypeByExtension(path.Ext(name))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			w.Header().Set("Content-Type", contentType)

			// Add cache headers for static assets
			if strings.HasPrefix(name, "/assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			}

			w.WriteHeader(http.StatusOK)
			io.Copy(w, f)
			return
		}
	}

	if strings.HasPrefix(name, "/assets/") {
		http.NotFound(w, r)
		return
	}

	indexFile, err := fs.Open("/index.html")
	if err != nil {
		http.Error(w, "frontend not available", http.StatusNotFound)
		return
	}
	defer indexFile.Close()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, indexFile)
}
