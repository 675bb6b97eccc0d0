// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating request query
// parameters. Validation checks shape only: dates must look like YYYY-MM-DD
// and year/month must be integers. Ordering and month bounds are left to the
// aggregation service, which receives the values as they were given.

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"sbuboard/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// AttendanceQuery holds the raw attendance range parameters.
type AttendanceQuery struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"required,datetime=2006-01-02"`
}

// CompletionQuery holds the raw completion period parameters.
type CompletionQuery struct {
	Year  string `validate:"required,number"`
	Month string `validate:"required,number"`
}

// SlideQuery holds the optional slide index parameter.
type SlideQuery struct {
	Index string `validate:"omitempty,number"`
}

// ParseAttendanceParams extracts start/end from the query string. When both
// are absent the fallback range is returned.
func ParseAttendanceParams(query url.Values, fallback core.DateRange) (core.DateRange, error) {
	q := AttendanceQuery{
		Start: sanitizeInput(query.Get("start")),
		End:   sanitizeInput(query.Get("end")),
	}
	if q.Start == "" && q.End == "" {
		return fallback, nil
	}
	if err := validate.Struct(q); err != nil {
		return core.DateRange{}, validationError(err)
	}
	return core.DateRange{Start: q.Start, End: q.End}, nil
}

// ParseCompletionParams extracts year/month from the query string. When both
// are absent the fallback period is returned.
func ParseCompletionParams(query url.Values, fallback core.Period) (core.Period, error) {
	q := CompletionQuery{
		Year:  sanitizeInput(query.Get("year")),
		Month: sanitizeInput(query.Get("month")),
	}
	if q.Year == "" && q.Month == "" {
		return fallback, nil
	}
	if err := validate.Struct(q); err != nil {
		return core.Period{}, validationError(err)
	}
	year, err := strconv.Atoi(q.Year)
	if err != nil {
		return core.Period{}, fmt.Errorf("year: %w", err)
	}
	month, err := strconv.Atoi(q.Month)
	if err != nil {
		return core.Period{}, fmt.Errorf("month: %w", err)
	}
	return core.Period{Year: year, Month: month}, nil
}

// ParseSlideIndex returns the requested slide index, or ok=false when the
// parameter is absent.
func ParseSlideIndex(query url.Values) (index int, ok bool, err error) {
	q := SlideQuery{Index: sanitizeInput(query.Get("index"))}
	if err := validate.Struct(q); err != nil {
		return 0, false, validationError(err)
	}
	if q.Index == "" {
		return 0, false, nil
	}
	index, err = strconv.Atoi(q.Index)
	if err != nil {
		return 0, false, fmt.Errorf("index: %w", err)
	}
	return index, true, nil
}

// ParseWait reports whether an API call should wait for an in-flight fetch.
// Anything but an explicit false waits.
func ParseWait(query url.Values) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(query.Get("wait")))
	if err != nil {
		return true
	}
	return v
}

// validationError turns validator output into one readable message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "datetime":
			msgs = append(msgs, field+" must be a YYYY-MM-DD date")
		case "number":
			msgs = append(msgs, field+" must be an integer")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
