package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/latex"
	"github.com/kozaktomas/photo-report/internal/printview"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// PrintHandler renders the session report for printing.
type PrintHandler struct {
	opts      printview.Options
	generator *latex.Generator
}

// NewPrintHandler creates a new print handler.
func NewPrintHandler(cfg *config.Config) *PrintHandler {
	opts := printview.OptionsFromConfig(cfg.Report)
	return &PrintHandler{
		opts:      opts,
		generator: latex.NewGenerator(cfg.PDF, opts),
	}
}

// HTML renders the print-ready page.
func (h *PrintHandler) HTML(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	opts := h.opts
	opts.Now = time.Now()

	var buf bytes.Buffer
	if err := printview.Render(&buf, rep.Snapshot(), opts); err != nil {
		log.Printf("Print: failed to render report %s: %v", rep.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// PDF compiles the report with LaTeX. With ?format=report it returns the
// export report as JSON instead of the document.
func (h *PrintHandler) PDF(w http.ResponseWriter, r *http.Request) {
	rep := middleware.MustGetReport(r.Context(), w)
	if rep == nil {
		return
	}

	snap := rep.Snapshot()
	pdfData, exportReport, err := h.generator.GeneratePDF(r.Context(), snap)
	if err != nil {
		if errors.Is(err, latex.ErrNoCompiler) {
			respondError(w, http.StatusServiceUnavailable, "PDF export is not available on this server")
			return
		}
		log.Printf("Print: PDF generation failed for report %s: %v", rep.ID, err)
		respondError(w, http.StatusInternalServerError, "PDF generation failed")
		return
	}

	if r.URL.Query().Get("format") == "report" {
		respondJSON(w, http.StatusOK, exportReport)
		return
	}

	if exportReport != nil && len(exportReport.Warnings) > 0 {
		w.Header().Set("X-Export-Warnings", strconv.Itoa(len(exportReport.Warnings)))
	}
	name := printview.FileName(printview.Title(snap.Metadata, h.opts.DefaultTitle), ".pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfData)))
	w.Write(pdfData)
}
