package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sbuboard/internal/core"
	"sbuboard/internal/leaderboard"
	"sbuboard/internal/ratelimit"
	"sbuboard/internal/slides"
	"sbuboard/internal/sources/memory"
)

var janMay = core.DateRange{Start: "2025-01-01", End: "2025-05-30"}

func attendanceFixture() []core.AttendanceRecord {
	scores := []float64{95, 88, 72, 55, 40}
	out := make([]core.AttendanceRecord, len(scores))
	for i, s := range scores {
		out[i] = core.AttendanceRecord{
			SBUID:               fmt.Sprintf("sbu-%d", i+1),
			SBUName:             fmt.Sprintf("Unit %d", i+1),
			Rank:                i + 1,
			TotalEmployees:      10,
			AvgWorkedHours:      7.5,
			HealthScore:         core.Float(s),
			EmployeesWithIssues: i,
		}
	}
	return out
}

type testEnv struct {
	srv      *Server
	board    *slides.Board
	src      *memory.Store
	stores   *leaderboard.Stores
	registry *leaderboard.Registry
}

func newTestServer(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	ctx := context.Background()

	src := memory.New()
	if err := src.ReplaceAttendance(ctx, janMay, attendanceFixture()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	stores := leaderboard.NewStores(leaderboard.StoresConfig{MaxEntries: 16}, nil, nil)
	registry := leaderboard.NewRegistry()

	deck := slides.DefaultDeck()
	deck.Interval = time.Hour
	board := slides.NewBoard(deck, stores, src, registry, nil)
	board.Start(ctx)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := board.Wait(waitCtx); err != nil {
		t.Fatalf("board wait: %v", err)
	}

	opts := Options{
		Addr:     ":0",
		Board:    board,
		Stores:   stores,
		Reader:   src,
		Registry: registry,
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv := NewServer(opts)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
		board.Stop()
	})
	return &testEnv{srv: srv, board: board, src: src, stores: stores, registry: registry}
}

func (e *testEnv) do(method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "203.0.113.7:5000"
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeState[R any](t *testing.T, rr *httptest.ResponseRecorder) leaderboard.State[R] {
	t.Helper()
	var st leaderboard.State[R]
	if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return st
}

func TestIndexAndHealth(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Brag Document Completion") {
		t.Fatalf("index body missing current slide title")
	}
	if !strings.Contains(body, "No brag document data available for 5/2025") {
		t.Fatalf("index body missing empty message")
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers not applied")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id not set")
	}

	for _, path := range []string{"/healthz", "/readyz", "/static/app.css"} {
		rr := env.do(http.MethodGet, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	if rr := env.do(http.MethodGet, "/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status=%d", rr.Code)
	}
}

func TestSlidePartial(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/ui/slide?index=1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Attendance Health Leaderboard", "Jan-May 2025", "Unit 1", "🥇"} {
		if !strings.Contains(body, want) {
			t.Errorf("slide body missing %q", want)
		}
	}
	if env.board.Rotator().Current() != 0 {
		t.Errorf("GET must not move the rotation")
	}

	rr = env.do(http.MethodGet, "/ui/slide?index=3")
	body = rr.Body.String()
	if !strings.Contains(body, ">#4<") || !strings.Contains(body, "Unit 5") {
		t.Errorf("remaining slide missing positions 4-5")
	}
	if strings.Contains(body, "Unit 1<") {
		t.Errorf("remaining slide must not repeat the podium")
	}
}

func TestSlideGoTo(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodPost, "/ui/slide?index=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if got := env.board.Rotator().Current(); got != 3 {
		t.Fatalf("current=%d, want 3", got)
	}
	if trig := rr.Header().Get("HX-Trigger"); !strings.Contains(trig, `"slide:changed"`) {
		t.Errorf("missing slide:changed trigger: %s", trig)
	}

	if rr := env.do(http.MethodPost, "/ui/slide"); rr.Code != http.StatusBadRequest {
		t.Errorf("goto without index status=%d", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/ui/slide?index=abc"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad index status=%d", rr.Code)
	}
	if rr := env.do(http.MethodDelete, "/ui/slide"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status=%d", rr.Code)
	}
}

func TestAttendanceAPI(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/api/attendance")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	if cc := rr.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control=%q", cc)
	}
	st := decodeState[core.AttendanceRecord](t, rr)
	if len(st.Data) != 5 || st.Loading || st.Err != "" {
		t.Fatalf("state=%+v", st)
	}
	if st.Data[0].SBUName != "Unit 1" {
		t.Errorf("order not preserved: %s", st.Data[0].SBUName)
	}

	// served from the board's cache entry
	if got := env.stores.Attendance.Fetches(); got != 1 {
		t.Errorf("fetches=%d, want 1", got)
	}

	// a range nobody has asked for is fetched once, then empty
	rr = env.do(http.MethodGet, "/api/attendance?start=2024-01-01&end=2024-01-31")
	st = decodeState[core.AttendanceRecord](t, rr)
	if st.Data == nil || len(st.Data) != 0 || st.Err != "" {
		t.Fatalf("empty range state=%+v", st)
	}
	if got := env.stores.Attendance.Fetches(); got != 2 {
		t.Errorf("fetches=%d, want 2", got)
	}

	// ordering is not checked
	rr = env.do(http.MethodGet, "/api/attendance?start=2025-06-01&end=2025-01-01")
	if rr.Code != http.StatusOK {
		t.Errorf("reversed range status=%d", rr.Code)
	}
}

func TestAPIValidation(t *testing.T) {
	env := newTestServer(t, nil)

	tests := []struct {
		target string
		want   string
	}{
		{"/api/attendance?start=2025-01-01", "end is required"},
		{"/api/attendance?start=01/01/2025&end=2025-01-31", "start must be a YYYY-MM-DD date"},
		{"/api/completion?year=2025&month=may", "month must be an integer"},
		{"/api/completion?month=5", "year is required"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := env.do(http.MethodGet, tt.target)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status=%d", rr.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(body["error"], tt.want) {
				t.Errorf("error=%q, want %q", body["error"], tt.want)
			}
		})
	}
}

func TestCompletionAPIForwardsMonthAsGiven(t *testing.T) {
	env := newTestServer(t, nil)

	rr := env.do(http.MethodGet, "/api/completion?year=2025&month=13")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	st := decodeState[core.CompletionRecord](t, rr)
	if st.Err != "" || len(st.Data) != 0 {
		t.Fatalf("state=%+v", st)
	}
	if _, ok := env.stores.Completion.Cached("2025-13"); !ok {
		t.Errorf("month 13 was not fetched under its own key")
	}
}

func TestRefetch(t *testing.T) {
	env := newTestServer(t, nil)
	before := env.stores.Attendance.Fetches()

	rr := env.do(http.MethodPost, "/api/attendance/refetch")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	var body struct {
		Domain    string `json:"domain"`
		Refetched int    `json:"refetched"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Domain != "attendance" || body.Refetched != 1 {
		t.Fatalf("body=%+v", body)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "leaderboard:refetched") {
		t.Errorf("missing refetched trigger")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.board.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if got := env.stores.Attendance.Fetches(); got != before+1 {
		t.Errorf("fetches=%d, want %d", got, before+1)
	}

	if rr := env.do(http.MethodPost, "/api/brag/refetch?key=2024-1"); rr.Code != http.StatusOK {
		t.Errorf("brag alias status=%d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/api/pie/refetch"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown domain status=%d", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/api/attendance/refetch"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET refetch status=%d", rr.Code)
	}
}

func TestReadyReportsBackendFailure(t *testing.T) {
	env := newTestServer(t, func(o *Options) {
		o.Ping = func(context.Context) error { return errors.New("database is locked") }
	})

	rr := env.do(http.MethodGet, "/readyz")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "database is locked") {
		t.Errorf("body missing ping error: %s", rr.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	env := newTestServer(t, nil)
	env.do(http.MethodGet, "/")

	rr := env.do(http.MethodGet, "/metrics")
	body := rr.Body.String()
	for _, want := range []string{
		"http_requests_total 2",
		`leaderboard_fetches_total{domain="attendance"} 1`,
		`cache_entries{domain="completion"} 1`,
		"slide_current 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestSuspiciousRequestRejected(t *testing.T) {
	env := newTestServer(t, nil)
	if rr := env.do(http.MethodGet, "/.env"); rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr := env.do(http.MethodGet, "/metrics"); !strings.Contains(rr.Body.String(), "security_suspicious_requests_total 1") {
		t.Errorf("suspicious request not counted")
	}
}

func TestPOSTIsRateLimited(t *testing.T) {
	env := newTestServer(t, func(o *Options) {
		o.RateLimit = ratelimit.Config{RPS: 0.001, Burst: 1}
	})

	if rr := env.do(http.MethodPost, "/api/completion/refetch"); rr.Code != http.StatusOK {
		t.Fatalf("first status=%d", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/api/completion/refetch"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d", rr.Code)
	}
	// polling is never limited
	for i := 0; i < 5; i++ {
		if rr := env.do(http.MethodGet, "/ui/slide"); rr.Code != http.StatusOK {
			t.Fatalf("GET %d status=%d", i, rr.Code)
		}
	}
}
