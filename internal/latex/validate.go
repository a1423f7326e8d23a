package latex

import (
	"fmt"
)

// Validation severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// overlapTolerance absorbs rounding in the mm coordinates.
const overlapTolerance = 0.01

// ValidationWarning describes a layout issue found during validation.
type ValidationWarning struct {
	PageNumber int
	SlotIndex  int // -1 for page-wide issues
	Message    string
	Severity   string
}

// rect is an axis-aligned box in page mm, origin bottom-left.
type rect struct{ x, y, w, h float64 }

func (r rect) right() float64 { return r.x + r.w }
func (r rect) top() float64   { return r.y + r.h }

func (r rect) overlaps(o rect) bool {
	const eps = overlapTolerance
	return r.right() > o.x+eps && o.right() > r.x+eps &&
		r.top() > o.y+eps && o.top() > r.y+eps
}

// pageChecker collects the issues of one page.
type pageChecker struct {
	page   TemplatePage
	issues []ValidationWarning
}

func (c *pageChecker) add(slot int, severity, format string, args ...any) {
	c.issues = append(c.issues, ValidationWarning{
		PageNumber: c.page.PageNumber,
		SlotIndex:  slot,
		Message:    fmt.Sprintf(format, args...),
		Severity:   severity,
	})
}

// ValidatePages checks the computed pages before they reach LaTeX. Errors
// mean the grid itself is unusable; warnings are passed on to the export report.
func ValidatePages(pages []TemplatePage, config LayoutConfig) []ValidationWarning {
	if config.Columns <= 0 || config.Rows <= 0 {
		return []ValidationWarning{{
			SlotIndex: -1,
			Message:   fmt.Sprintf("grid %dx%d has no cells", config.Columns, config.Rows),
			Severity:  SeverityError,
		}}
	}

	var warnings []ValidationWarning
	for _, page := range pages {
		c := &pageChecker{page: page}
		c.check(config)
		warnings = append(warnings, c.issues...)
	}
	return warnings
}

func (c *pageChecker) check(config LayoutConfig) {
	const eps = overlapTolerance
	page := c.page

	cells := config.GridCells(page.CanvasTopY)
	if len(cells) > 0 && cells[0].ImageHeight(config.CaptionHeightMM) <= 0 {
		c.add(-1, SeverityError, "%d rows leave no room for photos", config.Rows)
		return
	}

	images := make([]rect, len(page.Slots))
	for i, slot := range page.Slots {
		img := rect{slot.ImgX, slot.ImgY, slot.ImgW, slot.ImgH}
		images[i] = img

		if img.x < page.ContentLeftX-eps {
			c.add(i, SeverityError, "image left edge (%.2f) is outside the content area (%.2f)", img.x, page.ContentLeftX)
		}
		if img.right() > page.ContentRightX+eps {
			c.add(i, SeverityError, "image right edge (%.2f) is outside the content area (%.2f)", img.right(), page.ContentRightX)
		}
		if img.top() > page.CanvasTopY+eps {
			c.add(i, SeverityError, "image top (%.2f) runs into the header (%.2f)", img.top(), page.CanvasTopY)
		}
		if bottom := slot.CaptionY - config.CaptionHeightMM; bottom < page.CanvasBottomY-1-eps {
			c.add(i, SeverityWarning, "caption (%.2f) runs into the footer (%.2f)", bottom, page.CanvasBottomY)
		}
	}

	for i := range images {
		for j := i + 1; j < len(images); j++ {
			if images[i].overlaps(images[j]) {
				c.add(i, SeverityError, "slot %d overlaps with slot %d", i, j)
			}
		}
	}
}
