package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsOriginAllowed(t *testing.T) {
	allowed := originSet([]string{"https://reports.example.com/", " ", "https://ops.example.com"})

	tests := []struct {
		origin string
		want   bool
	}{
		{"", false},
		{"http://localhost", true},
		{"http://localhost:5173", true},
		{"https://127.0.0.1:8443", true},
		{"http://localhost.evil.com", false},
		{"https://reports.example.com", true},
		{"https://ops.example.com", true},
		{"https://other.example.com", false},
		{"ftp://localhost", false},
	}
	for _, tt := range tests {
		if got := isOriginAllowed(tt.origin, allowed); got != tt.want {
			t.Errorf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := CORS([]string{"https://reports.example.com"})(next)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)
		req.Header.Set("Origin", "https://reports.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "https://reports.example.com" {
			t.Errorf("missing allow-origin header: %v", rec.Header())
		}
		if rec.Code != http.StatusTeapot {
			t.Errorf("request should reach the handler, got %d", rec.Code)
		}
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("foreign origin must not be echoed")
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/metadata", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("preflight status = %d, want 200", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("preflight should list allowed methods")
		}
	})
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://reports.example.com"})

	tests := []struct {
		name   string
		host   string
		origin string
		want   bool
	}{
		{"no origin", "app.local:8080", "", true},
		{"same host", "app.local:8080", "http://app.local:8080", true},
		{"configured", "app.local:8080", "https://reports.example.com", true},
		{"localhost", "app.local:8080", "http://localhost:3000", true},
		{"foreign", "app.local:8080", "https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := check(req); got != tt.want {
				t.Errorf("check() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
}

func TestSecurityHeaders_ImageOrigins(t *testing.T) {
	tests := []struct {
		name    string
		urls    []string
		want    string
		notWant string
	}{
		{"no logo", nil, "img-src 'self' data: blob:;", ""},
		{"remote logo", []string{"https://cdn.example.com/img/logo.png?v=2"}, "img-src 'self' data: blob: https://cdn.example.com;", ""},
		{"http logo with port", []string{"http://logo.example.com:8080/a.png"}, "blob: http://logo.example.com:8080;", ""},
		{"relative logo", []string{"/static/logo.png"}, "img-src 'self' data: blob:;", "/static"},
		{"data logo", []string{"data:image/png;base64,AAAA"}, "img-src 'self' data: blob:;", "AAAA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := SecurityHeaders(tt.urls...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			csp := rec.Header().Get("Content-Security-Policy")
			if !strings.Contains(csp, tt.want) {
				t.Errorf("CSP %q does not contain %q", csp, tt.want)
			}
			if tt.notWant != "" && strings.Contains(csp, tt.notWant) {
				t.Errorf("CSP %q must not contain %q", csp, tt.notWant)
			}
		})
	}
}
