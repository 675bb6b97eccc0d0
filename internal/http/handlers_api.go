package http

import (
	"context"
	"net/http"

	"sbuboard/internal/core"
	"sbuboard/internal/leaderboard"
	applog "sbuboard/internal/log"
)

// handleAttendance serves the attendance leaderboard for ?start=&end= (the
// board's range when both are absent) as {data, loading, error}.
func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	dr, err := ParseAttendanceParams(r.URL.Query(), s.board.Deck().Attendance)
	if err != nil {
		JSONError(http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	q := leaderboard.NewAttendanceQuery(s.stores.Attendance, s.reader, dr, leaderboard.WithLogger(s.logger))
	serveQuery[core.AttendanceRecord](s, w, r, q)
}

// handleCompletion serves the completion leaderboard for ?year=&month= (the
// board's period when both are absent) as {data, loading, error}.
func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	p, err := ParseCompletionParams(r.URL.Query(), s.board.Deck().Completion)
	if err != nil {
		JSONError(http.StatusBadRequest, err.Error()).Write(w)
		return
	}
	q := leaderboard.NewCompletionQuery(s.stores.Completion, s.reader, p, leaderboard.WithLogger(s.logger))
	serveQuery[core.CompletionRecord](s, w, r, q)
}

type mountable[R any] interface {
	Mount(ctx context.Context)
	Unmount()
	Wait(ctx context.Context) error
	State() leaderboard.State[R]
}

// serveQuery mounts a short-lived query on the shared store. A cached key
// answers at once; otherwise the call waits for the fetch unless ?wait=false.
// Failed fetches still answer 200: the error travels in the body.
func serveQuery[R any](s *Server, w http.ResponseWriter, r *http.Request, q mountable[R]) {
	ctx := r.Context()
	q.Mount(ctx)
	defer q.Unmount()

	if ParseWait(r.URL.Query()) {
		wctx, cancel := context.WithTimeout(ctx, s.wait)
		defer cancel()
		if err := q.Wait(wctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Leaderboard still loading", applog.FieldError, err)
		}
	}
	NewHTMXResponse().BodyJSON(q.State()).Write(w)
}

// handleRefetch forces a fetch for every mounted query of the domain whose
// key matches ?key= (all of them when empty).
func (s *Server) handleRefetch(w http.ResponseWriter, r *http.Request) {
	if denied := RequirePOST(r); denied != nil {
		denied.Write(w)
		return
	}
	domain, ok := parseDomain(r.PathValue("domain"))
	if !ok {
		JSONError(http.StatusNotFound, "unknown leaderboard").Write(w)
		return
	}
	key := sanitizeInput(r.URL.Query().Get("key"))

	var n int
	if s.registry != nil {
		n = s.registry.Refetch(r.Context(), domain, key)
	} else {
		s.board.Refetch(r.Context(), domain)
		n = 1
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Manual refetch",
		applog.FieldOperation, applog.OpRefetch,
		applog.FieldDomain, domain,
		applog.FieldCacheKey, key,
		"queries", n)

	NewHTMXResponse().
		TriggerRefetched(domain).
		BodyJSON(map[string]any{"domain": domain, "key": key, "refetched": n}).
		Write(w)
}
