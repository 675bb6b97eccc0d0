package core

// PodiumSize is the number of records shown on a podium slide.
const PodiumSize = 3

// Ranked pairs a record with the position it is displayed at.
type Ranked[R any] struct {
	Position int
	Record   R
}

// AttendanceOverview summarizes a whole attendance leaderboard.
type AttendanceOverview struct {
	TotalEmployees int
	AvgHealthScore float64
	AvgWorkHours   float64
	TotalIssues    int
}

// CompletionOverview summarizes a whole completion leaderboard.
type CompletionOverview struct {
	TotalEmployees int
	TotalSubmitted int
	TotalPending   int
	AvgCompletion  float64
}

// Podium returns the top three records in service order.
func Podium[R any](records []R) []R {
	if len(records) <= PodiumSize {
		return records
	}
	return records[:PodiumSize]
}

// RemainingAttendance returns the records after the podium. The displayed
// position is the service rank when present, otherwise index+4.
func RemainingAttendance(records []AttendanceRecord) []Ranked[AttendanceRecord] {
	if len(records) <= PodiumSize {
		return nil
	}
	out := make([]Ranked[AttendanceRecord], 0, len(records)-PodiumSize)
	for i, r := range records[PodiumSize:] {
		pos := r.Rank
		if pos <= 0 {
			pos = i + PodiumSize + 1
		}
		out = append(out, Ranked[AttendanceRecord]{Position: pos, Record: r})
	}
	return out
}

// RemainingCompletion returns the records after the podium, numbered from 4.
func RemainingCompletion(records []CompletionRecord) []Ranked[CompletionRecord] {
	if len(records) <= PodiumSize {
		return nil
	}
	out := make([]Ranked[CompletionRecord], 0, len(records)-PodiumSize)
	for i, r := range records[PodiumSize:] {
		out = append(out, Ranked[CompletionRecord]{Position: i + PodiumSize + 1, Record: r})
	}
	return out
}

// SummarizeAttendance computes the organizational overview. Missing health
// scores count as zero in the average.
func SummarizeAttendance(records []AttendanceRecord) AttendanceOverview {
	var ov AttendanceOverview
	if len(records) == 0 {
		return ov
	}
	var health, hours float64
	for _, r := range records {
		ov.TotalEmployees += r.TotalEmployees
		ov.TotalIssues += r.EmployeesWithIssues
		health += r.Health()
		hours += r.AvgWorkedHours
	}
	n := float64(len(records))
	ov.AvgHealthScore = health / n
	ov.AvgWorkHours = hours / n
	return ov
}

// SummarizeCompletion computes the organizational overview.
func SummarizeCompletion(records []CompletionRecord) CompletionOverview {
	var ov CompletionOverview
	if len(records) == 0 {
		return ov
	}
	var pct float64
	for _, r := range records {
		ov.TotalEmployees += r.TotalActiveEmployees
		ov.TotalSubmitted += r.SubmittedEmployees
		ov.TotalPending += r.NotSubmittedEmployees
		pct += r.CompletionPercentage
	}
	ov.AvgCompletion = pct / float64(len(records))
	return ov
}
