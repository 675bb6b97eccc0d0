package core

type (
	// AttendanceRecord is one organizational unit's row in the attendance
	// health leaderboard. Optional metrics are nil when the service omits them.
	AttendanceRecord struct {
		SBUID                  string   `json:"sbu_id"`
		SBUName                string   `json:"sbu_name"`
		Rank                   int      `json:"rank"`
		TotalEmployees         int      `json:"total_employees"`
		AvgWorkedHours         float64  `json:"avg_worked_hours"`
		MissingLogsPercentage  *float64 `json:"missing_logs_percentage"`
		LowHoursPercentage     *float64 `json:"low_hours_percentage"`
		HighHoursPercentage    *float64 `json:"high_hours_percentage"`
		InvalidHoursPercentage *float64 `json:"invalid_hours_percentage"`
		HealthScore            *float64 `json:"health_score"`
		EmployeesWithIssues    int      `json:"employees_with_issues"`
	}

	// CompletionRecord is one organizational unit's brag document completion
	// for a reporting month.
	CompletionRecord struct {
		SBUID                 string  `json:"sbu_id"`
		SBUName               string  `json:"sbu_name"`
		TotalActiveEmployees  int     `json:"total_active_employees"`
		SubmittedEmployees    int     `json:"submitted_employees"`
		NotSubmittedEmployees int     `json:"not_submitted_employees"`
		CompletionPercentage  float64 `json:"completion_percentage"`
	}
)

// Health returns the health score, treating a missing score as zero.
func (r AttendanceRecord) Health() float64 {
	if r.HealthScore == nil {
		return 0
	}
	return *r.HealthScore
}

// Balanced reports whether submitted + not submitted equals the active headcount.
func (r CompletionRecord) Balanced() bool {
	return r.SubmittedEmployees+r.NotSubmittedEmployees == r.TotalActiveEmployees
}

// Float returns a pointer to v, for building records with optional metrics.
func Float(v float64) *float64 {
	return &v
}
