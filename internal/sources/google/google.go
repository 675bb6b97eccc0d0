// Package google reads pre-aggregated leaderboards from a Google spreadsheet.
// Each leaderboard lives in its own tab whose first row holds column names
// matching the service's field names.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"sbuboard/internal/core"
	applog "sbuboard/internal/log"
	"sbuboard/internal/sources"
)

const (
	DefaultAttendanceSheet = "Attendance"
	DefaultCompletionSheet = "Completion"

	// columns A..Z are enough for either layout
	readColumns = "A:Z"
)

var _ sources.Reader = (*Client)(nil)

// Options configures a Client.
type Options struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	AttendanceSheet string
	CompletionSheet string
	Logger          *applog.Logger
	// ClientOptions are appended to the credential options, e.g. a custom endpoint.
	ClientOptions []goption.ClientOption
}

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	attendanceSheet string
	completionSheet string
	logger          *applog.Logger
}

// New creates a read-only Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.Logger == nil {
		opts.Logger = applog.Discard()
	}

	clientOpts, err := credentialOptions(opts)
	if err != nil {
		return nil, err
	}
	clientOpts = append(clientOpts, opts.ClientOptions...)

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c := &Client{
		svc:             svc,
		spreadsheetID:   opts.SpreadsheetID,
		attendanceSheet: opts.AttendanceSheet,
		completionSheet: opts.CompletionSheet,
		logger:          opts.Logger.WithComponent(applog.ComponentSheets),
	}
	if c.attendanceSheet == "" {
		c.attendanceSheet = DefaultAttendanceSheet
	}
	if c.completionSheet == "" {
		c.completionSheet = DefaultCompletionSheet
	}
	c.logger.InfoContext(ctx, "Google Sheets source ready",
		"spreadsheet_id", c.spreadsheetID,
		"attendance_sheet", c.attendanceSheet,
		"completion_sheet", c.completionSheet)
	return c, nil
}

// credentialOptions resolves service account credentials. Explicit options
// win, then GOOGLE_APPLICATION_CREDENTIALS. Options that already carry auth
// (tests) may pass neither.
func credentialOptions(opts Options) ([]goption.ClientOption, error) {
	credentialsJSON := []byte(strings.TrimSpace(opts.CredentialsJSON))
	file := strings.TrimSpace(opts.CredentialsFile)
	if len(credentialsJSON) == 0 && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case len(credentialsJSON) > 0:
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	case len(opts.ClientOptions) > 0:
		return nil, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope),
	}, nil
}

// ReadAttendance returns the rows of the attendance tab whose start and end
// dates match the range, in sheet order.
func (c *Client) ReadAttendance(ctx context.Context, r core.DateRange) ([]core.AttendanceRecord, error) {
	values, err := c.read(ctx, c.attendanceSheet)
	if err != nil {
		return nil, err
	}
	return parseAttendance(values, r)
}

// ReadCompletion returns the rows of the completion tab for the period, in sheet order.
func (c *Client) ReadCompletion(ctx context.Context, p core.Period) ([]core.CompletionRecord, error) {
	values, err := c.read(ctx, c.completionSheet)
	if err != nil {
		return nil, err
	}
	return parseCompletion(values, p)
}

func (c *Client) read(ctx context.Context, sheet string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheet, readColumns)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	c.logger.DebugContext(ctx, "Sheet read", "range", rng, applog.FieldRecords, len(resp.Values))
	return resp.Values, nil
}
