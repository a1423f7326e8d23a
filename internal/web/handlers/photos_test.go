package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/kozaktomas/photo-report/internal/constants"
)

func TestPhotosHandler_List(t *testing.T) {
	rep := newTestReport()
	added := addPhotos(t, rep, "a.png", "b.png")
	handler := NewPhotosHandler(testConfig())

	recorder := httptest.NewRecorder()
	handler.List(recorder, requestWithReport(t, http.MethodGet, "/api/v1/photos", nil, rep))

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")
	var result PhotoListResponse
	parseJSONResponse(t, recorder, &result)
	if result.Count != 2 || !slices.Equal(ids(result.Photos), ids(added)) {
		t.Errorf("unexpected list: %+v", result)
	}
	if strings.Contains(recorder.Body.String(), "base64") {
		t.Error("list must not inline image data")
	}
}

func TestPhotosHandler_Upload(t *testing.T) {
	rep := newTestReport()
	handler := NewPhotosHandler(testConfig())

	body, contentType := multipartBody(t, constants.UploadFormField,
		multipartFile{"site-photo.JPG", "image/png", pngBytes(t, 64, 48)},
		multipartFile{"readme.txt", "text/plain", []byte("not a photo")},
		multipartFile{"roof.png", "", pngBytes(t, 10, 10)},
		multipartFile{"gutter.png", "application/octet-stream", pngBytes(t, 10, 10)},
	)
	req := requestWithReport(t, http.MethodPost, "/api/v1/photos", body, rep)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()

	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var result UploadResponse
	parseJSONResponse(t, recorder, &result)
	if result.Added != 2 || result.Rejected != 2 || len(result.Dropped) != 0 {
		t.Errorf("added=%d rejected=%d dropped=%d, want 2, 2, 0", result.Added, result.Rejected, len(result.Dropped))
	}
	photos := rep.Photos.Photos()
	if len(photos) != 2 {
		t.Fatalf("report holds %d photos, want 2", len(photos))
	}
	if photos[0].Caption != "site-photo" || photos[0].Width != 64 || photos[0].Height != 48 {
		t.Errorf("unexpected first photo: %+v", photos[0])
	}
	if photos[1].MediaType != "image/png" {
		t.Errorf("part without a Content-Type should be sniffed as PNG, got %q", photos[1].MediaType)
	}
}

func TestPhotosHandler_Upload_NoFiles(t *testing.T) {
	rep := newTestReport()
	handler := NewPhotosHandler(testConfig())

	body, contentType := multipartBody(t, "other")
	req := requestWithReport(t, http.MethodPost, "/api/v1/photos", body, rep)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()

	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "no files provided")
}

func TestPhotosHandler_Upload_NotMultipart(t *testing.T) {
	rep := newTestReport()
	handler := NewPhotosHandler(testConfig())

	recorder := httptest.NewRecorder()
	handler.Upload(recorder, jsonRequest(t, http.MethodPost, "/api/v1/photos", `{}`, rep))

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "failed to parse multipart form")
}

func TestPhotosHandler_Upload_TooLarge(t *testing.T) {
	rep := newTestReport()
	cfg := testConfig()
	cfg.Upload.MaxRequestBytes = 512
	handler := NewPhotosHandler(cfg)

	body, contentType := multipartBody(t, constants.UploadFormField,
		multipartFile{"big.png", "image/png", bytes.Repeat([]byte{1}, 4096)},
	)
	req := requestWithReport(t, http.MethodPost, "/api/v1/photos", body, rep)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()

	handler.Upload(recorder, req)

	assertStatusCode(t, recorder, http.StatusRequestEntityTooLarge)
	if rep.Photos.Len() != 0 {
		t.Error("nothing should be added from a rejected request")
	}
}

func TestPhotosHandler_Image(t *testing.T) {
	rep := newTestReport()
	added := addPhotos(t, rep, "a.png")
	handler := NewPhotosHandler(testConfig())

	t.Run("found", func(t *testing.T) {
		req := requestWithChiParams(requestWithReport(t, http.MethodGet, "/", nil, rep), map[string]string{"id": added[0].ID})
		recorder := httptest.NewRecorder()
		handler.Image(recorder, req)

		assertStatusCode(t, recorder, http.StatusOK)
		assertContentType(t, recorder, "image/png")
		if !bytes.HasPrefix(recorder.Body.Bytes(), []byte("\x89PNG")) {
			t.Error("expected PNG bytes")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		req := requestWithChiParams(requestWithReport(t, http.MethodGet, "/", nil, rep), map[string]string{"id": "missing"})
		recorder := httptest.NewRecorder()
		handler.Image(recorder, req)

		assertStatusCode(t, recorder, http.StatusNotFound)
		assertJSONError(t, recorder, "photo not found")
	})
}

func TestPhotosHandler_Remove(t *testing.T) {
	tests := []struct {
		name        string
		id          func([]string) string
		wantChanged bool
		wantLen     int
	}{
		{"existing", func(ids []string) string { return ids[0] }, true, 1},
		{"unknown is tolerated", func([]string) string { return "missing" }, false, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := newTestReport()
			added := addPhotos(t, rep, "a.png", "b.png")
			handler := NewPhotosHandler(testConfig())

			req := requestWithChiParams(requestWithReport(t, http.MethodDelete, "/", nil, rep), map[string]string{"id": tt.id(ids(added))})
			recorder := httptest.NewRecorder()
			handler.Remove(recorder, req)

			assertStatusCode(t, recorder, http.StatusOK)
			var result changedResponse
			parseJSONResponse(t, recorder, &result)
			if result.Changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", result.Changed, tt.wantChanged)
			}
			if rep.Photos.Len() != tt.wantLen {
				t.Errorf("len = %d, want %d", rep.Photos.Len(), tt.wantLen)
			}
		})
	}
}

func TestPhotosHandler_UpdateCaption(t *testing.T) {
	rep := newTestReport()
	added := addPhotos(t, rep, "a.png")
	handler := NewPhotosHandler(testConfig())

	tests := []struct {
		name       string
		id         string
		body       string
		wantStatus int
		wantError  string
	}{
		{"set caption", added[0].ID, `{"caption":"North wall crack"}`, http.StatusOK, ""},
		{"empty caption is allowed", added[0].ID, `{"caption":""}`, http.StatusOK, ""},
		{"unknown id", "missing", `{"caption":"x"}`, http.StatusOK, ""},
		{"missing field", added[0].ID, `{}`, http.StatusBadRequest, "caption is required"},
		{"bad json", added[0].ID, `{"caption":`, http.StatusBadRequest, errInvalidRequestBody},
		{"unknown field", added[0].ID, `{"text":"x"}`, http.StatusBadRequest, errInvalidRequestBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestWithChiParams(jsonRequest(t, http.MethodPut, "/", tt.body, rep), map[string]string{"id": tt.id})
			recorder := httptest.NewRecorder()
			handler.UpdateCaption(recorder, req)

			assertStatusCode(t, recorder, tt.wantStatus)
			if tt.wantError != "" {
				assertJSONError(t, recorder, tt.wantError)
			}
		})
	}

	p, _ := rep.Photos.Photo(added[0].ID)
	if p.Caption != "" {
		t.Errorf("caption = %q, want empty after last edit", p.Caption)
	}
}

func TestPhotosHandler_Move(t *testing.T) {
	tests := []struct {
		name        string
		body        func(ids []string) string
		wantStatus  int
		wantChanged bool
		wantOrder   []int // indices into the original order
	}{
		{"index to front", func([]string) string { return `{"index":0}` }, http.StatusOK, true, []int{2, 0, 1, 3}},
		{"index out of range", func([]string) string { return `{"index":9}` }, http.StatusOK, false, []int{0, 1, 2, 3}},
		{"negative index", func([]string) string { return `{"index":-1}` }, http.StatusOK, false, []int{0, 1, 2, 3}},
		{"over photo", func(ids []string) string { return `{"over_id":"` + ids[3] + `"}` }, http.StatusOK, true, []int{0, 1, 3, 2}},
		{"over unknown", func([]string) string { return `{"over_id":"missing"}` }, http.StatusOK, false, []int{0, 1, 2, 3}},
		{"neither", func([]string) string { return `{}` }, http.StatusBadRequest, false, []int{0, 1, 2, 3}},
		{"both", func(ids []string) string { return `{"index":0,"over_id":"` + ids[0] + `"}` }, http.StatusBadRequest, false, []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := newTestReport()
			orig := ids(addPhotos(t, rep, "a.png", "b.png", "c.png", "d.png"))
			handler := NewPhotosHandler(testConfig())

			// always move the third photo
			req := requestWithChiParams(jsonRequest(t, http.MethodPut, "/", tt.body(orig), rep), map[string]string{"id": orig[2]})
			recorder := httptest.NewRecorder()
			handler.Move(recorder, req)

			assertStatusCode(t, recorder, tt.wantStatus)
			want := make([]string, len(tt.wantOrder))
			for i, idx := range tt.wantOrder {
				want[i] = orig[idx]
			}
			if got := rep.Photos.IDs(); !slices.Equal(got, want) {
				t.Errorf("order = %v, want %v", got, want)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var result PositionResponse
			parseJSONResponse(t, recorder, &result)
			if result.Changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", result.Changed, tt.wantChanged)
			}
			if !slices.Equal(result.Order, want) {
				t.Errorf("response order = %v, want %v", result.Order, want)
			}
		})
	}
}

func TestPhotosHandler_Clear(t *testing.T) {
	rep := newTestReport()
	addPhotos(t, rep, "a.png", "b.png")
	handler := NewPhotosHandler(testConfig())

	for i, want := range []bool{true, false} {
		recorder := httptest.NewRecorder()
		handler.Clear(recorder, requestWithReport(t, http.MethodDelete, "/api/v1/photos", nil, rep))

		assertStatusCode(t, recorder, http.StatusOK)
		var result changedResponse
		parseJSONResponse(t, recorder, &result)
		if result.Changed != want {
			t.Errorf("call %d: changed = %v, want %v", i+1, result.Changed, want)
		}
	}
	if rep.Photos.Len() != 0 {
		t.Errorf("len = %d after clear", rep.Photos.Len())
	}
}

func TestPhotosHandler_NoSession(t *testing.T) {
	handler := NewPhotosHandler(testConfig())
	recorder := httptest.NewRecorder()
	handler.List(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil))

	assertStatusCode(t, recorder, http.StatusInternalServerError)
}
