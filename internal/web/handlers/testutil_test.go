package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/photo"
	"github.com/kozaktomas/photo-report/internal/report"
	"github.com/kozaktomas/photo-report/internal/web/middleware"
)

// testConfig returns the built-in defaults with a LaTeX binary that never exists.
func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.PDF.Binary = "no-such-latex-binary-xyz"
	return cfg
}

// newTestReport creates an empty report.
func newTestReport() *report.Report {
	return report.New("report-1", time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
}

// pngBytes encodes a w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// addPhotos decodes PNG photos with the given file names into the report.
func addPhotos(t *testing.T, rep *report.Report, names ...string) []photo.Photo {
	t.Helper()
	blobs := make([]photo.Blob, len(names))
	for i, name := range names {
		blobs[i] = photo.NewMemoryBlob(name, "image/png", pngBytes(t, 40, 30))
	}
	batch, err := photo.NewFactory(config.UploadConfig{}).Build(context.Background(), blobs)
	if err != nil {
		t.Fatalf("failed to build photos: %v", err)
	}
	rep.Photos.Add(batch.Photos)
	return batch.Photos
}

// requestWithReport creates a request whose context carries a session for rep.
func requestWithReport(t *testing.T, method, path string, body io.Reader, rep *report.Report) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	session := &middleware.Session{ID: "test-session", Report: rep, CreatedAt: rep.CreatedAt}
	return req.WithContext(middleware.SetSessionInContext(req.Context(), session))
}

// jsonRequest is requestWithReport with a JSON body.
func jsonRequest(t *testing.T, method, path, body string, rep *report.Report) *http.Request {
	t.Helper()
	req := requestWithReport(t, method, path, strings.NewReader(body), rep)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// multipartFile is one file part of an upload.
type multipartFile struct {
	name        string
	contentType string
	data        []byte
}

// multipartBody builds a multipart body with the files under field.
func multipartBody(t *testing.T, field string, files ...multipartFile) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + f.name + `"`}
		header["Content-Type"] = []string{f.contentType}
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("failed to write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// ids returns the ids of photos in order.
func ids(photos []photo.Photo) []string {
	out := make([]string, len(photos))
	for i, p := range photos {
		out[i] = p.ID
	}
	return out
}
