package slides

import (
	"fmt"
	"strconv"

	"sbuboard/internal/core"
	"sbuboard/internal/leaderboard"
)

const noDataMessage = "No data available"

// View is everything a renderer needs to draw one slide. Exactly one of
// Error, Empty, Podium/Rankings or Hidden describes the body.
type View struct {
	Index   int
	Kind    Kind
	Name    string
	Title   string
	Period  string
	Loading bool

	Error string
	Empty string
	// Hidden is set on a remaining slide with nothing past the podium.
	Hidden bool

	Overview []Stat
	Podium   []PodiumCard
	Rankings []RankingCard
}

// Stat is one labelled figure. Color is empty when the value is not banded.
type Stat struct {
	Icon  string
	Value string
	Label string
	Color string
}

// PodiumCard is one of the top three. Cards are ordered for display:
// second, first, third.
type PodiumCard struct {
	Place int
	Medal string
	Name  string
	Stat  Stat
}

// RankingCard is one record past the podium.
type RankingCard struct {
	Position int
	Name     string
	Stats    []Stat
}

// HasBody reports whether the slide shows records.
func (v View) HasBody() bool {
	return v.Error == "" && v.Empty == "" && !v.Hidden
}

var medals = [core.PodiumSize]string{"🥇", "🥈", "🥉"}

// podiumOrder places first in the middle.
var podiumOrder = []int{1, 0, 2}

func podiumCards[R any](top []R, name func(R) string, stat func(R) Stat) []PodiumCard {
	cards := make([]PodiumCard, 0, len(top))
	for _, i := range podiumOrder {
		if i >= len(top) {
			continue
		}
		cards = append(cards, PodiumCard{
			Place: i + 1,
			Medal: medals[i],
			Name:  name(top[i]),
			Stat:  stat(top[i]),
		})
	}
	return cards
}

// AttendancePodium renders the attendance podium with the overview row.
func AttendancePodium(st leaderboard.State[core.AttendanceRecord], r core.DateRange) View {
	v := View{
		Kind:    KindAttendancePodium,
		Title:   "Attendance Health Leaderboard",
		Period:  r.Label(),
		Loading: st.Loading,
	}
	switch {
	case st.Err != "":
		v.Error = st.Err
		return v
	case len(st.Data) == 0:
		v.Empty = fmt.Sprintf("No attendance data available for %s to %s", r.Start, r.End)
		return v
	}

	ov := core.SummarizeAttendance(st.Data)
	v.Overview = []Stat{
		{Icon: "👨‍💼", Value: strconv.Itoa(ov.TotalEmployees), Label: "Total Employees"},
		{Icon: "💯", Value: percent(ov.AvgHealthScore), Label: "Avg Health Score"},
		{Icon: "🕒", Value: oneDecimal(ov.AvgWorkHours) + "h", Label: "Avg Work Hours"},
		{Icon: "🚨", Value: strconv.Itoa(ov.TotalIssues), Label: "Total Issues"},
	}
	v.Podium = podiumCards(core.Podium(st.Data),
		func(r core.AttendanceRecord) string { return r.SBUName },
		func(r core.AttendanceRecord) Stat {
			return Stat{Value: hours(r.AvgWorkedHours), Label: "Avg Hours"}
		})
	return v
}

// CompletionPodium renders the brag document podium with the overview row.
func CompletionPodium(st leaderboard.State[core.CompletionRecord], p core.Period) View {
	v := View{
		Kind:    KindBragPodium,
		Title:   "Brag Document Completion",
		Period:  p.Label(),
		Loading: st.Loading,
	}
	switch {
	case st.Err != "":
		v.Error = st.Err
		return v
	case len(st.Data) == 0:
		v.Empty = fmt.Sprintf("No brag document data available for %s", p.Short())
		return v
	}

	ov := core.SummarizeCompletion(st.Data)
	v.Overview = []Stat{
		{Icon: "👨‍💼", Value: strconv.Itoa(ov.TotalEmployees), Label: "Total Employees"},
		{Icon: "✍️", Value: strconv.Itoa(ov.TotalSubmitted), Label: "Submitted"},
		{Icon: "⌛", Value: strconv.Itoa(ov.TotalPending), Label: "Pending"},
		{Icon: "📈", Value: percent(ov.AvgCompletion), Label: "Avg Completion"},
	}
	v.Podium = podiumCards(core.Podium(st.Data),
		func(r core.CompletionRecord) string { return r.SBUName },
		func(r core.CompletionRecord) Stat {
			return Stat{Value: percent(r.CompletionPercentage), Label: "Completion"}
		})
	return v
}

// AttendanceRemaining renders the attendance records ranked fourth and below.
func AttendanceRemaining(st leaderboard.State[core.AttendanceRecord]) View {
	v := View{Kind: KindAttendanceRemaining, Title: "Attendance Rankings", Loading: st.Loading}
	switch {
	case st.Err != "":
		v.Error = st.Err
		return v
	case len(st.Data) == 0:
		v.Empty = noDataMessage
		return v
	}

	rest := core.RemainingAttendance(st.Data)
	if len(rest) == 0 {
		v.Hidden = true
		return v
	}
	v.Period = positions(len(st.Data))
	v.Rankings = make([]RankingCard, 0, len(rest))
	for _, rk := range rest {
		rec := rk.Record
		score := "n/a"
		if rec.HealthScore != nil {
			score = percent(*rec.HealthScore)
		}
		v.Rankings = append(v.Rankings, RankingCard{
			Position: rk.Position,
			Name:     rec.SBUName,
			Stats: []Stat{
				{Icon: "💯", Value: score, Label: "Health Score", Color: core.ScoreBand(rec.Health()).Color()},
				{Icon: "🕒", Value: hours(rec.AvgWorkedHours), Label: "Avg Hours"},
				{Icon: "⚠️", Value: strconv.Itoa(rec.EmployeesWithIssues), Label: "Issues", Color: core.IssuesBand(rec.EmployeesWithIssues).Color()},
				{Icon: "👥", Value: strconv.Itoa(rec.TotalEmployees), Label: "Employees"},
			},
		})
	}
	return v
}

// CompletionRemaining renders the completion records ranked fourth and below.
func CompletionRemaining(st leaderboard.State[core.CompletionRecord]) View {
	v := View{Kind: KindBragRemaining, Title: "Brag Document Rankings", Loading: st.Loading}
	switch {
	case st.Err != "":
		v.Error = st.Err
		return v
	case len(st.Data) == 0:
		v.Empty = noDataMessage
		return v
	}

	rest := core.RemainingCompletion(st.Data)
	if len(rest) == 0 {
		v.Hidden = true
		return v
	}
	v.Period = positions(len(st.Data))
	v.Rankings = make([]RankingCard, 0, len(rest))
	for _, rk := range rest {
		rec := rk.Record
		v.Rankings = append(v.Rankings, RankingCard{
			Position: rk.Position,
			Name:     rec.SBUName,
			Stats: []Stat{
				{Icon: "📈", Value: percent(rec.CompletionPercentage), Label: "Completion", Color: core.ScoreBand(rec.CompletionPercentage).Color()},
				{Icon: "✅", Value: strconv.Itoa(rec.SubmittedEmployees), Label: "Submitted"},
				{Icon: "⌛", Value: strconv.Itoa(rec.NotSubmittedEmployees), Label: "Pending", Color: core.IssuesBand(rec.NotSubmittedEmployees).Color()},
				{Icon: "👥", Value: strconv.Itoa(rec.TotalActiveEmployees), Label: "Employees"},
			},
		})
	}
	return v
}

func positions(total int) string {
	return fmt.Sprintf("Positions %d-%d", core.PodiumSize+1, total)
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func percent(v float64) string {
	return oneDecimal(v) + "%"
}

// hours prints the value as the service sent it, e.g. "7.85h".
func hours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "h"
}
