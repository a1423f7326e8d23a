package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPrintHandler_HTML(t *testing.T) {
	rep := newTestReport()
	addPhotos(t, rep, "facade.png", "roof.png")
	rep.Info.SetTitle("Roof & facade")
	cfg := testConfig()
	cfg.Report.Organization = "Inspect Ltd"

	recorder := httptest.NewRecorder()
	NewPrintHandler(cfg).HTML(recorder, requestWithReport(t, http.MethodGet, "/api/v1/print", nil, rep))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "text/html; charset=utf-8")
	body := recorder.Body.String()
	for _, want := range []string{"Roof &amp; facade", "facade", "roof", "Inspect Ltd", "data:image/png;base64,"} {
		if !strings.Contains(body, want) {
			t.Errorf("print page missing %q", want)
		}
	}
}

func TestPrintHandler_HTML_DefaultTitle(t *testing.T) {
	rep := newTestReport()
	recorder := httptest.NewRecorder()
	NewPrintHandler(testConfig()).HTML(recorder, requestWithReport(t, http.MethodGet, "/api/v1/print", nil, rep))

	assertStatusCode(t, recorder, http.StatusOK)
	if !strings.Contains(recorder.Body.String(), "Photo Report") {
		t.Error("empty title should fall back to the configured default")
	}
}

func TestPrintHandler_PDF_NoCompiler(t *testing.T) {
	rep := newTestReport()
	addPhotos(t, rep, "a.png")

	recorder := httptest.NewRecorder()
	NewPrintHandler(testConfig()).PDF(recorder, requestWithReport(t, http.MethodGet, "/api/v1/print.pdf", nil, rep))

	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
	assertJSONError(t, recorder, "PDF export is not available on this server")
}
