package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sbuboard/internal/core"
)

var (
	attendanceColumns = []string{
		"start_date", "end_date", "sbu_id", "sbu_name", "rank", "total_employees",
		"avg_worked_hours", "missing_logs_percentage", "low_hours_percentage",
		"high_hours_percentage", "invalid_hours_percentage", "health_score",
		"employees_with_issues",
	}
	attendanceRequired = []string{"start_date", "end_date", "sbu_id", "sbu_name"}

	completionColumns = []string{
		"year", "month", "sbu_id", "sbu_name", "total_active_employees",
		"submitted_employees", "not_submitted_employees", "completion_percentage",
	}
	completionRequired = []string{"year", "month", "sbu_id", "sbu_name"}
)

// table gives header-addressed access to one sheet row.
type table struct {
	cols map[string]int
}

func newTable(header []interface{}, known, required []string) (table, error) {
	names := toStrings(header)
	t := table{cols: make(map[string]int, len(known))}
	for _, k := range known {
		t.cols[k] = indexOf(names, k)
	}
	var missing []string
	for _, k := range required {
		if t.cols[k] == -1 {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return t, fmt.Errorf("unexpected sheet header: missing %s; got headers=%v", strings.Join(missing, ","), names)
	}
	return t, nil
}

func (t table) str(row []string, col string) string {
	return safeGet(row, t.cols[col])
}

func (t table) int(row []string, col string) (int, error) {
	s := t.str(row, col)
	if s == "" {
		return 0, nil
	}
	f, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return int(math.Round(f)), nil
}

func (t table) float(row []string, col string) (float64, error) {
	s := t.str(row, col)
	if s == "" {
		return 0, nil
	}
	f, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", col, err)
	}
	return f, nil
}

// optional returns nil for blank cells.
func (t table) optional(row []string, col string) (*float64, error) {
	s := t.str(row, col)
	if s == "" {
		return nil, nil
	}
	f, err := parseNumber(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", col, err)
	}
	return &f, nil
}

// parseAttendance filters the attendance tab to the given range. The first
// row must be the header.
func parseAttendance(values [][]interface{}, r core.DateRange) ([]core.AttendanceRecord, error) {
	out := []core.AttendanceRecord{}
	if len(values) == 0 {
		return out, nil
	}
	t, err := newTable(values[0], attendanceColumns, attendanceRequired)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if t.str(row, "start_date") != r.Start || t.str(row, "end_date") != r.End {
			continue
		}
		rec := core.AttendanceRecord{SBUID: t.str(row, "sbu_id"), SBUName: t.str(row, "sbu_name")}
		if rec.SBUID == "" {
			continue
		}
		if err := firstErr(
			assignInt(&rec.Rank, t, row, "rank"),
			assignInt(&rec.TotalEmployees, t, row, "total_employees"),
			assignFloat(&rec.AvgWorkedHours, t, row, "avg_worked_hours"),
			assignOptional(&rec.MissingLogsPercentage, t, row, "missing_logs_percentage"),
			assignOptional(&rec.LowHoursPercentage, t, row, "low_hours_percentage"),
			assignOptional(&rec.HighHoursPercentage, t, row, "high_hours_percentage"),
			assignOptional(&rec.InvalidHoursPercentage, t, row, "invalid_hours_percentage"),
			assignOptional(&rec.HealthScore, t, row, "health_score"),
			assignInt(&rec.EmployeesWithIssues, t, row, "employees_with_issues"),
		); err != nil {
			return nil, fmt.Errorf("attendance row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseCompletion filters the completion tab to the given period.
func parseCompletion(values [][]interface{}, p core.Period) ([]core.CompletionRecord, error) {
	out := []core.CompletionRecord{}
	if len(values) == 0 {
		return out, nil
	}
	t, err := newTable(values[0], completionColumns, completionRequired)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		year, yErr := t.int(row, "year")
		month, mErr := t.int(row, "month")
		if yErr != nil || mErr != nil || year != p.Year || month != p.Month {
			continue
		}
		rec := core.CompletionRecord{SBUID: t.str(row, "sbu_id"), SBUName: t.str(row, "sbu_name")}
		if rec.SBUID == "" {
			continue
		}
		if err := firstErr(
			assignInt(&rec.TotalActiveEmployees, t, row, "total_active_employees"),
			assignInt(&rec.SubmittedEmployees, t, row, "submitted_employees"),
			assignInt(&rec.NotSubmittedEmployees, t, row, "not_submitted_employees"),
			assignFloat(&rec.CompletionPercentage, t, row, "completion_percentage"),
		); err != nil {
			return nil, fmt.Errorf("completion row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func assignInt(dst *int, t table, row []string, col string) error {
	v, err := t.int(row, col)
	*dst = v
	return err
}

func assignFloat(dst *float64, t table, row []string, col string) error {
	v, err := t.float(row, col)
	*dst = v
	return err
}

func assignOptional(dst **float64, t table, row []string, col string) error {
	v, err := t.optional(row, col)
	*dst = v
	return err
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// parseNumber accepts plain numbers, a decimal comma and a trailing percent sign.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", ".")
	return strconv.ParseFloat(s, 64)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
