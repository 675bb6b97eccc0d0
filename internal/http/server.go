package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"sbuboard/internal/leaderboard"
	applog "sbuboard/internal/log"
	"sbuboard/internal/middleware/security"
	"sbuboard/internal/middleware/trace"
	"sbuboard/internal/ratelimit"
	"sbuboard/internal/slides"
	"sbuboard/internal/sources"
	appweb "sbuboard/web"
)

const (
	defaultWaitTimeout = 20 * time.Second
	readyTimeout       = 10 * time.Second
)

// Options wires the server to the running board and its data.
type Options struct {
	Addr     string
	Board    *slides.Board
	Stores   *leaderboard.Stores
	Reader   sources.Reader
	Registry *leaderboard.Registry

	// Ping checks the backend for /readyz. Nil skips the check.
	Ping func(context.Context) error

	// WaitTimeout bounds how long an API call waits for a fetch to settle.
	WaitTimeout time.Duration

	RateLimit ratelimit.Config
	Headers   security.HeadersConfig
	Logger    *applog.Logger
}

type Server struct {
	http.Server
	templates *template.Template

	board    *slides.Board
	stores   *leaderboard.Stores
	reader   sources.Reader
	registry *leaderboard.Registry
	ping     func(context.Context) error
	wait     time.Duration

	rateLimiter     *ratelimit.KeyedLimiter
	detector        *security.Detector
	traceMiddleware *trace.Middleware
	logger          *applog.Logger
	started         time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = defaultWaitTimeout
	}
	if opts.Headers.CSP == "" {
		opts.Headers = security.DefaultHeadersConfig()
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()

	s := &Server{
		board:           opts.Board,
		stores:          opts.Stores,
		reader:          opts.Reader,
		registry:        opts.Registry,
		ping:            opts.Ping,
		wait:            opts.WaitTimeout,
		rateLimiter:     ratelimit.NewWithConfig(opts.RateLimit),
		detector:        detector,
		traceMiddleware: trace.NewMiddleware(logger, detector.ExtractClientIP),
		logger:          logger,
		started:         time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("/ui/slide", s.handleSlide)
	mux.Handle("GET /api/attendance", security.NoStore(http.HandlerFunc(s.handleAttendance)))
	mux.Handle("GET /api/completion", security.NoStore(http.HandlerFunc(s.handleCompletion)))
	mux.HandleFunc("/api/{domain}/refetch", s.handleRefetch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(opts.Headers)
	limitPOST := s.limitPOST(s.rateLimiter.Middleware(detector.ExtractClientIP, nil))

	var handler http.Handler = mux
	handler = limitPOST(handler)
	handler = detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// limitPOST applies the rate limiter to state-changing requests only. The
// page polls its partials with GET and must never be throttled.
func (s *Server) limitPOST(limit func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Shutdown gracefully shuts down the server and its limiter sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
