package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigHandler_Get(t *testing.T) {
	cfg := testConfig()
	cfg.Report.Organization = "Inspect Ltd"
	cfg.PDF.Columns = 3
	cfg.PDF.Rows = 4

	recorder := httptest.NewRecorder()
	NewConfigHandler(cfg).Get(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))

	assertStatusCode(t, recorder, http.StatusOK)
	var result ConfigResponse
	parseJSONResponse(t, recorder, &result)

	if result.UploadField != "files" {
		t.Errorf("UploadField = %q, want files", result.UploadField)
	}
	if result.MaxPhotoBytes != cfg.Upload.MaxPhotoBytes || result.MaxRequestBytes != cfg.Upload.MaxRequestBytes {
		t.Errorf("limits not reported: %+v", result)
	}
	if result.DefaultTitle != "Photo Report" || result.Organization != "Inspect Ltd" {
		t.Errorf("report settings not reported: %+v", result)
	}
	if result.PDFAvailable {
		t.Error("PDF should be unavailable without a LaTeX binary")
	}
	if result.PhotosPerPage != 12 {
		t.Errorf("PhotosPerPage = %d, want 12", result.PhotosPerPage)
	}
}
