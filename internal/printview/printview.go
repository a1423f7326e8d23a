// Package printview renders a report snapshot as a print-ready HTML page.
package printview

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/report"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// Options holds the report parts that do not come from the session.
type Options struct {
	DefaultTitle string
	Organization string
	LogoURL      string
	Now          time.Time
}

// OptionsFromConfig builds options from the report configuration.
func OptionsFromConfig(cfg config.ReportConfig) Options {
	return Options{
		DefaultTitle: cfg.DefaultTitle,
		Organization: cfg.Organization,
		LogoURL:      cfg.LogoURL,
		Now:          time.Now(),
	}
}

type pageData struct {
	Title        string
	Metadata     report.Metadata
	Photos       []photoData
	LogoURL      string
	Organization string
	Year         int
}

type photoData struct {
	Number  int
	Caption string
	Src     template.URL
}

// Title returns the metadata title, or the fallback when it is empty.
func Title(m report.Metadata, fallback string) string {
	if m.Title != "" {
		return m.Title
	}
	return fallback
}

// Render writes the HTML print layout of a snapshot to w.
func Render(w io.Writer, snap report.Snapshot, opts Options) error {
	data := pageData{
		Title:        Title(snap.Metadata, opts.DefaultTitle),
		Metadata:     snap.Metadata,
		Photos:       make([]photoData, len(snap.Photos)),
		LogoURL:      opts.LogoURL,
		Organization: opts.Organization,
		Year:         opts.Now.Year(),
	}
	for i, p := range snap.Photos {
		data.Photos[i] = photoData{
			Number:  i + 1,
			Caption: p.Caption,
			// Display data is a data URI built from the upload's own media type.
			Src: template.URL(p.DisplayData), //nolint:gosec
		}
	}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
