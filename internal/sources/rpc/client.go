// Package rpc reads leaderboards from the remote aggregation service, a
// PostgREST endpoint exposing one database function per leaderboard.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sbuboard/internal/core"
	applog "sbuboard/internal/log"
	"sbuboard/internal/ratelimit"
)

const (
	DefaultAttendanceFunction = "get_attendance_sbu_leaderboard"
	DefaultCompletionFunction = "get_brag_document_sbu_completeness"

	defaultRPS     = 5.0
	defaultBurst   = 10
	defaultTimeout = 30 * time.Second

	// payloads above this size are truncated in debug logs
	maxLoggedPayload = 2048
	maxResponseBytes = 16 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL            string
	APIKey             string
	AttendanceFunction string
	CompletionFunction string
	RPS                float64
	Burst              int
	HTTPClient         *http.Client
	Logger             *applog.Logger
}

// Client is a rate-limited PostgREST RPC client.
type Client struct {
	endpoint     *url.URL
	apiKey       string
	attendanceFn string
	completionFn string
	http         *http.Client
	limiter      *ratelimit.KeyedLimiter
	logger       *applog.Logger
}

type attendanceParams struct {
	StartDate string `json:"p_start_date"`
	EndDate   string `json:"p_end_date"`
}

type completionParams struct {
	Year  int `json:"p_year"`
	Month int `json:"p_month"`
}

// New creates a client for the service rooted at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid rpc base url %q", opts.BaseURL)
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("rpc api key is required")
	}
	if opts.AttendanceFunction == "" {
		opts.AttendanceFunction = DefaultAttendanceFunction
	}
	if opts.CompletionFunction == "" {
		opts.CompletionFunction = DefaultCompletionFunction
	}
	if opts.RPS <= 0 {
		opts.RPS = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	return &Client{
		endpoint:     base.JoinPath("rest", "v1", "rpc"),
		apiKey:       opts.APIKey,
		attendanceFn: opts.AttendanceFunction,
		completionFn: opts.CompletionFunction,
		http:         opts.HTTPClient,
		limiter:      ratelimit.New(opts.RPS, opts.Burst),
		logger:       opts.Logger.WithComponent(applog.ComponentRPC),
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// ReadAttendance calls the attendance leaderboard function. Dates are sent as given.
func (c *Client) ReadAttendance(ctx context.Context, r core.DateRange) ([]core.AttendanceRecord, error) {
	return call[core.AttendanceRecord](ctx, c, "ReadAttendance", c.attendanceFn,
		attendanceParams{StartDate: r.Start, EndDate: r.End})
}

// ReadCompletion calls the brag document completion function. Month bounds are not checked.
func (c *Client) ReadCompletion(ctx context.Context, p core.Period) ([]core.CompletionRecord, error) {
	return call[core.CompletionRecord](ctx, c, "ReadCompletion", c.completionFn,
		completionParams{Year: p.Year, Month: p.Month})
}

func call[T any](ctx context.Context, c *Client, op, fn string, params any) ([]T, error) {
	body, err := c.do(ctx, op, fn, params)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "RPC payload",
		applog.FieldFunction, fn,
		applog.FieldBytes, len(body),
		applog.FieldPayload, truncate(body, maxLoggedPayload))

	records, shape, err := Normalize[T](body)
	if err != nil {
		return nil, &Error{Op: op, Function: fn, Err: err}
	}
	if shape == ShapeOther {
		c.logger.WarnContext(ctx, "RPC returned a non-array payload, treating as empty",
			applog.FieldFunction, fn,
			applog.FieldPayload, truncate(body, 256))
	}
	return records, nil
}

// do posts params to rpc/fn and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, fn string, params any) ([]byte, error) {
	if err := c.limiter.Wait(ctx, fn); err != nil {
		return nil, &Error{Op: op, Function: fn, Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	payload, err := json.Marshal(params)
	if err != nil {
		return nil, &Error{Op: op, Function: fn, Err: fmt.Errorf("encode params: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.JoinPath(fn).String(), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Op: op, Function: fn, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Function: fn, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Op: op, Function: fn, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	e := &Error{Op: op, Function: fn, Status: resp.StatusCode}
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil {
		e.Message = apiErr.Message
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		e.Err = ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		e.Err = ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		e.Err = ErrRateLimited
	case resp.StatusCode >= 500:
		e.Err = ErrServer
	case resp.StatusCode >= 400:
		e.Err = ErrBadRequest
	default:
		e.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil, e
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
