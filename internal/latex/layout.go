package latex

import (
	"github.com/kozaktomas/photo-report/internal/config"
)

// Page dimensions in mm (A4 portrait).
const (
	PageW = 210.0
	PageH = 297.0
)

// LayoutConfig holds the page zones and the photo grid of a report page.
// All values are in mm.
type LayoutConfig struct {
	MarginMM        float64
	HeaderHeightMM  float64 // title block on page 1, running header on the rest
	NotesHeightMM   float64 // reserved under the title block when notes are set
	FooterHeightMM  float64
	Columns         int
	Rows            int
	ColumnGapMM     float64
	RowGapMM        float64
	CaptionHeightMM float64 // space under each photo for its number and caption
}

// DefaultLayoutConfig returns the layout for the given PDF settings.
// Non-positive grid sizes fall back to 2x3.
func DefaultLayoutConfig(cfg config.PDFConfig) LayoutConfig {
	cols, rows := cfg.Columns, cfg.Rows
	if cols <= 0 {
		cols = 2
	}
	if rows <= 0 {
		rows = 3
	}
	return LayoutConfig{
		MarginMM:        15.0,
		HeaderHeightMM:  26.0,
		NotesHeightMM:   22.0,
		FooterHeightMM:  10.0,
		Columns:         cols,
		Rows:            rows,
		ColumnGapMM:     6.0,
		RowGapMM:        6.0,
		CaptionHeightMM: 10.0,
	}
}

// RunningHeaderHeightMM is the header zone on pages after the first.
const RunningHeaderHeightMM = 10.0

// PhotosPerPage returns the number of grid cells per page.
func (c LayoutConfig) PhotosPerPage() int {
	return c.Columns * c.Rows
}

// ContentLeft returns the X of the left content edge.
func (c LayoutConfig) ContentLeft() float64 {
	return c.MarginMM
}

// ContentWidth returns the width between the side margins.
func (c LayoutConfig) ContentWidth() float64 {
	return PageW - 2*c.MarginMM
}

// HeaderTop returns the Y of the top content edge (TikZ origin is bottom-left).
func (c LayoutConfig) HeaderTop() float64 {
	return PageH - c.MarginMM
}

// CanvasTop returns the Y where the photo grid starts on a page.
func (c LayoutConfig) CanvasTop(first, hasNotes bool) float64 {
	if !first {
		return c.HeaderTop() - RunningHeaderHeightMM
	}
	top := c.HeaderTop() - c.HeaderHeightMM
	if hasNotes {
		top -= c.NotesHeightMM
	}
	return top
}

// CanvasBottom returns the Y where the photo grid ends.
func (c LayoutConfig) CanvasBottom() float64 {
	return c.MarginMM + c.FooterHeightMM
}

// Cell is one grid cell in page coordinates. Y is the top edge.
type Cell struct {
	X, Top float64
	W, H   float64
}

// ImageHeight returns the height available to the photo inside the cell.
func (cell Cell) ImageHeight(captionH float64) float64 {
	return cell.H - captionH
}

// GridCells returns the cells of a page in reading order, row by row.
func (c LayoutConfig) GridCells(canvasTop float64) []Cell {
	canvasH := canvasTop - c.CanvasBottom()
	cellW := (c.ContentWidth() - float64(c.Columns-1)*c.ColumnGapMM) / float64(c.Columns)
	cellH := (canvasH - float64(c.Rows-1)*c.RowGapMM) / float64(c.Rows)

	cells := make([]Cell, 0, c.PhotosPerPage())
	for row := range c.Rows {
		for col := range c.Columns {
			cells = append(cells, Cell{
				X:   c.ContentLeft() + float64(col)*(cellW+c.ColumnGapMM),
				Top: canvasTop - float64(row)*(cellH+c.RowGapMM),
				W:   cellW,
				H:   cellH,
			})
		}
	}
	return cells
}

// FitContain scales a w x h pixel image into a box, keeping its aspect ratio.
// It returns the placed size and the offset of its bottom-left corner inside
// the box (box Y grows upward).
func FitContain(pxW, pxH int, boxW, boxH float64) (w, h, dx, dy float64) {
	if pxW <= 0 || pxH <= 0 || boxW <= 0 || boxH <= 0 {
		return 0, 0, 0, 0
	}
	aspect := float64(pxW) / float64(pxH)
	if aspect > boxW/boxH {
		w = boxW
		h = boxW / aspect
	} else {
		h = boxH
		w = boxH * aspect
	}
	return w, h, (boxW - w) / 2, (boxH - h) / 2
}
