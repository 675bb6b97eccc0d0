package core

import (
	"fmt"
	"strconv"
	"time"
)

const isoDate = "2006-01-02"

type (
	// DateRange selects an attendance reporting window. Both ends are ISO
	// calendar dates and are forwarded to the service verbatim.
	DateRange struct {
		Start string `json:"start_date" yaml:"start"`
		End   string `json:"end_date" yaml:"end"`
	}

	// Period selects a brag document reporting month.
	Period struct {
		Year  int `json:"year" yaml:"year"`
		Month int `json:"month" yaml:"month"`
	}
)

// Key derives the cache key for the range. It is order sensitive.
func (r DateRange) Key() string {
	return r.Start + "-" + r.End
}

// Valid mirrors the auto-fetch guard: both ends must be present.
// Ordering and calendar validity are left to the service.
func (r DateRange) Valid() bool {
	return r.Start != "" && r.End != ""
}

// Label renders the range for slide titles, e.g. "Jan-May 2025".
// Unparseable ends fall back to the raw "start to end" form.
func (r DateRange) Label() string {
	start, err1 := time.Parse(isoDate, r.Start)
	end, err2 := time.Parse(isoDate, r.End)
	if err1 != nil || err2 != nil {
		return r.Start + " to " + r.End
	}
	if start.Year() == end.Year() {
		if start.Month() == end.Month() {
			return fmt.Sprintf("%s %d", start.Format("Jan"), end.Year())
		}
		return fmt.Sprintf("%s-%s %d", start.Format("Jan"), end.Format("Jan"), end.Year())
	}
	return fmt.Sprintf("%s %d-%s %d", start.Format("Jan"), start.Year(), end.Format("Jan"), end.Year())
}

// Key derives the cache key for the period.
func (p Period) Key() string {
	return strconv.Itoa(p.Year) + "-" + strconv.Itoa(p.Month)
}

// Valid mirrors the auto-fetch guard: year and month must be non-zero.
// Month bounds are not checked.
func (p Period) Valid() bool {
	return p.Year != 0 && p.Month != 0
}

// Label renders the period for slide titles, e.g. "May 2025".
func (p Period) Label() string {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Sprintf("%d/%d", p.Month, p.Year)
	}
	return fmt.Sprintf("%s %d", time.Month(p.Month).String(), p.Year)
}

// Short renders the period as "month/year", used by empty-state messages.
func (p Period) Short() string {
	return fmt.Sprintf("%d/%d", p.Month, p.Year)
}
