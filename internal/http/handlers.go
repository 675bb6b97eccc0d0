package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	applog "sbuboard/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(health)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.ping == nil:
		checks["backend"] = "no check"
	default:
		if err := s.ping(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	if s.stores != nil {
		checks["cache"] = map[string]interface{}{
			applog.DomainAttendance: s.stores.Attendance.Size(),
			applog.DomainCompletion: s.stores.Completion.Size(),
			"status":                "ok",
		}
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.Keys(),
		"status":         "ok",
	}

	response := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}

	if httpStatus != http.StatusOK {
		s.logger.WarnContext(r.Context(), "Readiness check failed", "checks", checks)
	}
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(response)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	uptime := time.Since(s.started)

	w.WriteHeader(http.StatusOK)

	// Write metrics in Prometheus-like format
	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_last_response_microseconds Duration of the last request\n")
	fmt.Fprintf(w, "# TYPE http_last_response_microseconds gauge\n")
	fmt.Fprintf(w, "http_last_response_microseconds %d\n\n", traceMetrics.LastResponseMicros)

	if s.stores != nil {
		fmt.Fprintf(w, "# HELP leaderboard_fetches_total Remote fetches issued per leaderboard\n")
		fmt.Fprintf(w, "# TYPE leaderboard_fetches_total counter\n")
		fmt.Fprintf(w, "leaderboard_fetches_total{domain=%q} %d\n", applog.DomainAttendance, s.stores.Attendance.Fetches())
		fmt.Fprintf(w, "leaderboard_fetches_total{domain=%q} %d\n\n", applog.DomainCompletion, s.stores.Completion.Fetches())

		fmt.Fprintf(w, "# HELP cache_entries Current cache entries\n")
		fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
		fmt.Fprintf(w, "cache_entries{domain=%q} %d\n", applog.DomainAttendance, s.stores.Attendance.Size())
		fmt.Fprintf(w, "cache_entries{domain=%q} %d\n\n", applog.DomainCompletion, s.stores.Completion.Size())
	}

	if s.board != nil {
		fmt.Fprintf(w, "# HELP slide_current Index of the slide on screen\n")
		fmt.Fprintf(w, "# TYPE slide_current gauge\n")
		fmt.Fprintf(w, "slide_current %d\n\n", s.board.Rotator().Current())
	}

	fmt.Fprintf(w, "# HELP rate_limit_active_clients Clients tracked by the limiter\n")
	fmt.Fprintf(w, "# TYPE rate_limit_active_clients gauge\n")
	fmt.Fprintf(w, "rate_limit_active_clients %d\n\n", s.rateLimiter.Keys())

	fmt.Fprintf(w, "# HELP security_suspicious_requests_total Requests rejected as suspicious\n")
	fmt.Fprintf(w, "# TYPE security_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "security_suspicious_requests_total %d\n\n", s.detector.Suspicious())

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", uptime.Seconds())
}
