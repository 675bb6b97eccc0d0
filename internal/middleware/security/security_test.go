package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.HasSuffix(csp, "frame-ancestors 'none'") {
		t.Errorf("unexpected CSP %q", csp)
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}

func TestHeadersMiddlewareFrameAncestors(t *testing.T) {
	cfg := DefaultHeadersConfig()
	cfg.FrameAncestors = []string{"https://signage.example.com"}
	h := NewHeadersMiddleware(cfg).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Frame-Options") != "" {
		t.Error("X-Frame-Options should be omitted when framing is allowed")
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "frame-ancestors https://signage.example.com") {
		t.Errorf("unexpected CSP %q", rec.Header().Get("Content-Security-Policy"))
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()
	cases := []struct {
		target string
		agent  string
		want   bool
	}{
		{"/api/attendance?start=2025-01-01&end=2025-05-30", "Mozilla/5.0", false},
		{"/ui/slide?index=2", "curl/8.0", false},
		{"/.env", "Mozilla/5.0", true},
		{"/api/completion?year=2025%20union%20select", "Mozilla/5.0", false},
		{"/api/completion?q=../etc/passwd", "", true},
		{"/", "sqlmap/1.7", true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		req.Header.Set("User-Agent", tc.agent)
		if got := d.DetectSuspiciousRequest(req); got != tc.want {
			t.Errorf("DetectSuspiciousRequest(%s, %s) = %v, want %v", tc.target, tc.agent, got, tc.want)
		}
	}
	if d.Suspicious() != 3 {
		t.Errorf("Suspicious() = %d, want 3", d.Suspicious())
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.5")
	if got := d.ExtractClientIP(req); got != "203.0.113.9" {
		t.Errorf("trusted proxy: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := d.ExtractClientIP(req); got != "198.51.100.7" {
		t.Errorf("untrusted peer must not be able to spoof: got %q", got)
	}
}

func TestDetectorMiddlewareRejects(t *testing.T) {
	d := NewDetector()
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wp-admin/", nil))
	if called || rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without calling next, got %d called=%v", rec.Code, called)
	}
}
