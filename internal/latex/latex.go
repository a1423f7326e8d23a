package latex

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/constants"
	"github.com/kozaktomas/photo-report/internal/photo"
	"github.com/kozaktomas/photo-report/internal/printview"
	"github.com/kozaktomas/photo-report/internal/report"
)

//go:embed templates/report.tex
var templateFS embed.FS

// TexFileName is the name of the generated LaTeX source.
const TexFileName = "report.tex"

// ErrNoCompiler is returned when the LaTeX binary is not on PATH.
var ErrNoCompiler = errors.New("latex compiler not found")

// ExportReport contains metadata about a PDF export for quality analysis.
type ExportReport struct {
	Title        string       `json:"title"`
	PageCount    int          `json:"page_count"`
	PhotoCount   int          `json:"photo_count"`
	SkippedCount int          `json:"skipped_count"`
	Pages        []ReportPage `json:"pages"`
	Warnings     []string     `json:"warnings"`
}

// ReportPage describes a single page in the export report.
type ReportPage struct {
	PageNumber int           `json:"page_number"`
	Photos     []ReportPhoto `json:"photos,omitempty"`
}

// ReportPhoto describes a single photo placement in the export report.
type ReportPhoto struct {
	PhotoID      string  `json:"photo_id"`
	Number       int     `json:"number"`
	SlotIndex    int     `json:"slot_index"`
	EffectiveDPI float64 `json:"effective_dpi"`
	LowRes       bool    `json:"low_res"`
}

// TemplateSlot holds pre-computed TikZ coordinates for one photo.
// Coordinates are mm from the page bottom-left.
type TemplateSlot struct {
	ImgX, ImgY   float64
	ImgW, ImgH   float64
	FilePath     string
	Number       int
	Caption      string
	CaptionX     float64 // cell centre
	CaptionY     float64 // top of the caption area
	CaptionW     float64
	EffectiveDPI float64
}

// TemplatePage holds one page of the grid.
type TemplatePage struct {
	PageNumber    int
	IsFirst       bool
	IsLast        bool
	ContentLeftX  float64
	ContentRightX float64
	CanvasTopY    float64
	CanvasBottomY float64
	Slots         []TemplateSlot
}

// TemplateData is everything report.tex needs.
type TemplateData struct {
	Title        string
	Client       string
	Date         string
	ProjectCode  string
	Notes        string
	Organization string

	PageW, PageH float64
	MarginX      float64
	ContentW     float64
	HeaderTopY   float64
	MetaY        float64
	NotesY       float64
	HeaderRuleY  float64
	RunningRuleY float64
	FooterRuleY  float64
	FolioY       float64

	PageCount int
	Pages     []TemplatePage
}

// Generator renders report snapshots to LaTeX and PDF.
type Generator struct {
	binary string
	layout LayoutConfig
	opts   printview.Options
}

// NewGenerator creates a generator from the PDF configuration.
func NewGenerator(cfg config.PDFConfig, opts printview.Options) *Generator {
	binary := cfg.Binary
	if binary == "" {
		binary = "lualatex"
	}
	return &Generator{binary: binary, layout: DefaultLayoutConfig(cfg), opts: opts}
}

// Layout returns the page layout in use.
func (g *Generator) Layout() LayoutConfig {
	return g.layout
}

// Available reports whether the LaTeX binary can be found.
func (g *Generator) Available() bool {
	_, err := exec.LookPath(g.binary)
	return err == nil
}

// placedPhoto is a photo that made it into the PDF. path is relative to the
// directory holding report.tex.
type placedPhoto struct {
	photo  photo.Photo
	number int
	path   string
}

// WriteSources writes report.tex and the photo files it references into dir.
// It returns the path of the .tex file.
func (g *Generator) WriteSources(snap report.Snapshot, dir string) (string, *ExportReport, error) {
	placed, skipped := writePhotos(snap.Photos, dir)
	data, rep := buildTemplateData(snap.Metadata, placed, g.layout, g.opts)
	rep.SkippedCount = len(skipped)
	rep.Warnings = append(skipped, rep.Warnings...)

	for _, vw := range ValidatePages(data.Pages, g.layout) {
		if vw.Severity == SeverityError {
			return "", nil, fmt.Errorf("invalid layout: page %d slot %d: %s", vw.PageNumber, vw.SlotIndex, vw.Message)
		}
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("Layout: page %d slot %d: %s", vw.PageNumber, vw.SlotIndex, vw.Message))
	}
	addDPIWarnings(rep)

	texPath := filepath.Join(dir, TexFileName)
	var buf bytes.Buffer
	if err := renderTemplate(&buf, data); err != nil {
		return "", nil, err
	}
	if err := os.WriteFile(texPath, buf.Bytes(), 0600); err != nil {
		return "", nil, fmt.Errorf("failed to write tex file: %w", err)
	}
	return texPath, rep, nil
}

// GeneratePDF renders a snapshot to PDF in a temporary directory.
func (g *Generator) GeneratePDF(ctx context.Context, snap report.Snapshot) ([]byte, *ExportReport, error) {
	if !g.Available() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoCompiler, g.binary)
	}

	tmpDir, err := os.MkdirTemp("", "photo-report-pdf-*")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	texPath, rep, err := g.WriteSources(snap, tmpDir)
	if err != nil {
		return nil, nil, err
	}

	pdfData, err := g.compile(ctx, texPath, tmpDir)
	if err != nil {
		return nil, nil, err
	}
	return pdfData, rep, nil
}

// compile runs the LaTeX binary and returns the PDF bytes. The second pass
// resolves the remember picture positions.
func (g *Generator) compile(ctx context.Context, texPath, dir string) ([]byte, error) {
	for pass := range constants.LatexPasses {
		cmd := exec.CommandContext(ctx, g.binary, //nolint:gosec
			"-interaction=nonstopmode",
			"-output-directory="+dir,
			texPath,
		)
		cmd.Dir = dir
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("%s pass %d failed: %w\n%s", g.binary, pass+1, err, string(output))
		}
	}

	pdfPath := strings.TrimSuffix(texPath, ".tex") + ".pdf"
	pdfData, err := os.ReadFile(pdfPath) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return pdfData, nil
}

// pdfExtension returns the file extension for formats the PDF engine can
// embed, or "" when the format is not supported.
func pdfExtension(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	return ""
}

// writePhotos stores every embeddable photo in dir. Photos keep their position
// number even when an earlier one is skipped.
func writePhotos(photos []photo.Photo, dir string) ([]placedPhoto, []string) {
	var placed []placedPhoto
	var skipped []string
	for i, p := range photos {
		number := i + 1
		ext := pdfExtension(p.MediaType)
		switch {
		case ext == "":
			skipped = append(skipped, fmt.Sprintf("Photo %d (%s): %s cannot be embedded in PDF, skipped", number, p.Name, p.MediaType))
			continue
		case !p.HasDimensions():
			skipped = append(skipped, fmt.Sprintf("Photo %d (%s): unknown dimensions, skipped", number, p.Name))
			continue
		}

		path := filepath.Join(dir, fmt.Sprintf("photo-%03d%s", number, ext))
		if err := writePhotoFile(path, p); err != nil {
			skipped = append(skipped, fmt.Sprintf("Photo %d (%s): %v, skipped", number, p.Name, err))
			continue
		}
		placed = append(placed, placedPhoto{photo: p, number: number, path: filepath.Base(path)})
	}
	return placed, skipped
}

func writePhotoFile(path string, p photo.Photo) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec
	if err != nil {
		return fmt.Errorf("failed to create photo file: %w", err)
	}
	if _, err := io.Copy(f, p.Open()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write photo file: %w", err)
	}
	return f.Close()
}

// buildTemplateData lays placed photos out on pages. The first page is always
// present so a report without photos still prints its header.
func buildTemplateData(meta report.Metadata, placed []placedPhoto, cfg LayoutConfig, opts printview.Options) (TemplateData, *ExportReport) {
	title := printview.Title(meta, opts.DefaultTitle)
	hasNotes := strings.TrimSpace(meta.Notes) != ""
	top := cfg.HeaderTop()

	data := TemplateData{
		Title:        title,
		Client:       meta.Client,
		Date:         meta.Date,
		ProjectCode:  meta.ProjectCode,
		Notes:        meta.Notes,
		Organization: opts.Organization,
		PageW:        PageW,
		PageH:        PageH,
		MarginX:      cfg.ContentLeft(),
		ContentW:     cfg.ContentWidth(),
		HeaderTopY:   top,
		MetaY:        top - 12,
		NotesY:       top - cfg.HeaderHeightMM,
		HeaderRuleY:  top - cfg.HeaderHeightMM + 2,
		RunningRuleY: top - RunningHeaderHeightMM + 3,
		FooterRuleY:  cfg.CanvasBottom() - 3,
		FolioY:       cfg.MarginMM,
	}
	rep := &ExportReport{Title: title}

	perPage := cfg.PhotosPerPage()
	pageCount := max(1, (len(placed)+perPage-1)/perPage)
	for pi := range pageCount {
		first := pi == 0
		page := TemplatePage{
			PageNumber:    pi + 1,
			IsFirst:       first,
			IsLast:        pi == pageCount-1,
			ContentLeftX:  cfg.ContentLeft(),
			ContentRightX: cfg.ContentLeft() + cfg.ContentWidth(),
			CanvasTopY:    cfg.CanvasTop(first, hasNotes),
			CanvasBottomY: cfg.CanvasBottom(),
		}
		rp := ReportPage{PageNumber: page.PageNumber}

		cells := cfg.GridCells(page.CanvasTopY)
		end := min(len(placed), (pi+1)*perPage)
		for si, pp := range placed[min(len(placed), pi*perPage):end] {
			slot := buildPhotoSlot(cells[si], pp, cfg.CaptionHeightMM)
			page.Slots = append(page.Slots, slot)
			rp.Photos = append(rp.Photos, ReportPhoto{
				PhotoID:      pp.photo.ID,
				Number:       pp.number,
				SlotIndex:    si,
				EffectiveDPI: slot.EffectiveDPI,
				LowRes:       slot.EffectiveDPI > 0 && slot.EffectiveDPI < constants.LowResDPIThreshold,
			})
		}
		data.Pages = append(data.Pages, page)
		rep.Pages = append(rep.Pages, rp)
	}

	data.PageCount = pageCount
	rep.PageCount = pageCount
	rep.PhotoCount = len(placed)
	return data, rep
}

// buildPhotoSlot fits a photo into the image area of a cell, centred, with
// the caption below it.
func buildPhotoSlot(cell Cell, pp placedPhoto, captionH float64) TemplateSlot {
	areaH := cell.ImageHeight(captionH)
	w, h, dx, dy := FitContain(pp.photo.Width, pp.photo.Height, cell.W, areaH)
	areaBottom := cell.Top - areaH

	ts := TemplateSlot{
		ImgX:     cell.X + dx,
		ImgY:     areaBottom + dy,
		ImgW:     w,
		ImgH:     h,
		FilePath: pp.path,
		Number:   pp.number,
		Caption:  pp.photo.Caption,
		CaptionX: cell.X + cell.W/2,
		CaptionY: areaBottom - 1,
		CaptionW: cell.W,
	}
	if w > 0 {
		// Effective DPI = pixels / (size_mm / 25.4)
		ts.EffectiveDPI = math.Round(float64(pp.photo.Width)/w*25.4*10) / 10
	}
	return ts
}

// addDPIWarnings scans report pages and adds warnings for low-res photos.
func addDPIWarnings(rep *ExportReport) {
	for _, rp := range rep.Pages {
		for _, ph := range rp.Photos {
			if ph.LowRes {
				rep.Warnings = append(rep.Warnings,
					fmt.Sprintf("Page %d, photo %d (%s): effective DPI %.0f is below %d",
						rp.PageNumber, ph.Number, ph.PhotoID, ph.EffectiveDPI, int(constants.LowResDPIThreshold)))
			}
		}
	}
}

// latexEscape escapes special LaTeX characters in user text.
func latexEscape(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		`{`, `\{`,
		`}`, `\}`,
		`%`, `\%`,
		`&`, `\&`,
		`#`, `\#`,
		`$`, `\$`,
		`_`, `\_`,
		`^`, `\textasciicircum{}`,
		`~`, `\textasciitilde{}`,
	)
	return replacer.Replace(s)
}

// latexParagraphs escapes multi-line text and keeps its line breaks.
func latexParagraphs(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = latexEscape(line)
		if lines[i] == "" {
			lines[i] = `\mbox{}`
		}
	}
	return strings.Join(lines, `\\`+"\n")
}

// mm formats a coordinate with two decimals.
func mm(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func renderTemplate(buf *bytes.Buffer, data TemplateData) error {
	funcMap := template.FuncMap{
		"latexEscape":     latexEscape,
		"latexParagraphs": latexParagraphs,
		"mm":              mm,
	}
	tmpl, err := template.New(TexFileName).Delims("<<", ">>").Funcs(funcMap).ParseFS(templateFS, "templates/report.tex")
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}
