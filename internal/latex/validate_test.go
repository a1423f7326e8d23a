package latex

import (
	"strings"
	"testing"
)

func validPage(cfg LayoutConfig) TemplatePage {
	top := cfg.CanvasTop(false, false)
	return TemplatePage{
		PageNumber:    2,
		ContentLeftX:  cfg.ContentLeft(),
		ContentRightX: cfg.ContentLeft() + cfg.ContentWidth(),
		CanvasTopY:    top,
		CanvasBottomY: cfg.CanvasBottom(),
	}
}

func TestValidatePages(t *testing.T) {
	cfg := DefaultLayoutConfig(testConfig())
	base := validPage(cfg)
	left := base.ContentLeftX

	tests := []struct {
		name     string
		slots    []TemplateSlot
		severity string
		message  string
	}{
		{
			name: "past the left edge",
			slots: []TemplateSlot{
				{ImgX: left - 5, ImgY: 100, ImgW: 40, ImgH: 30, CaptionY: 98},
			},
			severity: SeverityError,
			message:  "left edge",
		},
		{
			name: "past the right edge",
			slots: []TemplateSlot{
				{ImgX: base.ContentRightX - 10, ImgY: 100, ImgW: 40, ImgH: 30, CaptionY: 98},
			},
			severity: SeverityError,
			message:  "right edge",
		},
		{
			name: "into the header",
			slots: []TemplateSlot{
				{ImgX: left, ImgY: base.CanvasTopY - 10, ImgW: 40, ImgH: 30, CaptionY: 150},
			},
			severity: SeverityError,
			message:  "header",
		},
		{
			name: "overlapping slots",
			slots: []TemplateSlot{
				{ImgX: left, ImgY: 100, ImgW: 40, ImgH: 30, CaptionY: 98},
				{ImgX: left + 20, ImgY: 110, ImgW: 40, ImgH: 30, CaptionY: 108},
			},
			severity: SeverityError,
			message:  "overlaps with slot 1",
		},
		{
			name: "caption into the footer",
			slots: []TemplateSlot{
				{ImgX: left, ImgY: base.CanvasBottomY + 2, ImgW: 40, ImgH: 30, CaptionY: base.CanvasBottomY},
			},
			severity: SeverityWarning,
			message:  "footer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := base
			page.Slots = tt.slots
			warnings := ValidatePages([]TemplatePage{page}, cfg)
			if len(warnings) != 1 {
				t.Fatalf("got %d issues, want 1: %+v", len(warnings), warnings)
			}
			w := warnings[0]
			if w.Severity != tt.severity || !strings.Contains(w.Message, tt.message) || w.PageNumber != 2 {
				t.Errorf("issue = %+v, want %s containing %q", w, tt.severity, tt.message)
			}
		})
	}
}

func TestValidatePages_EmptyGrid(t *testing.T) {
	cfg := DefaultLayoutConfig(testConfig())
	cfg.Columns = 0

	warnings := ValidatePages(nil, cfg)
	if len(warnings) != 1 || warnings[0].Severity != SeverityError || warnings[0].SlotIndex != -1 {
		t.Errorf("expected one page-wide error, got %+v", warnings)
	}
}

func TestRectOverlaps(t *testing.T) {
	a := rect{0, 0, 10, 10}
	tests := []struct {
		name string
		b    rect
		want bool
	}{
		{"overlapping", rect{5, 5, 10, 10}, true},
		{"touching edge", rect{10, 0, 10, 10}, false},
		{"within tolerance", rect{9.995, 0, 10, 10}, false},
		{"apart", rect{20, 20, 5, 5}, false},
		{"contained", rect{2, 2, 2, 2}, true},
	}
	for _, tt := range tests {
		if got := a.overlaps(tt.b); got != tt.want {
			t.Errorf("%s: overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}
