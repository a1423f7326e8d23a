package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/latex"
	"github.com/kozaktomas/photo-report/internal/printview"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config         *config.Config
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
}

// NewServer creates a new web server. Every browser gets its own report,
// kept in memory until the session idles out.
func NewServer(cfg *config.Config) *Server {
	r := chi.NewRouter()
	sessionManager := middleware.NewSessionManager(cfg.Web.SessionSecret, cfg.Web.SessionTTL)

	s := &Server{
		config:         cfg,
		router:         r,
		sessionManager: sessionManager,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders(cfg.Report.LogoURL))

	s.setupRoutes()

	// WriteTimeout stays off: event streams are long-lived and every other
	// route carries its own chi timeout.
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port)),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	// Stop the session cleanup goroutine
	s.sessionManager.Stop()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions returns the session manager.
func (s *Server) Sessions() *middleware.SessionManager {
	return s.sessionManager
}

// PDFAvailable reports whether the configured LaTeX compiler is installed.
func (s *Server) PDFAvailable() bool {
	return latex.NewGenerator(s.config.PDF, printview.Options{}).Available()
}
