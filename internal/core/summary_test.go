package core

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func attendanceFixture() []AttendanceRecord {
	scores := []float64{95, 88, 72, 55, 40}
	out := make([]AttendanceRecord, 0, len(scores))
	for i, s := range scores {
		out = append(out, AttendanceRecord{
			SBUID:               string(rune('a' + i)),
			SBUName:             "SBU " + string(rune('A'+i)),
			Rank:                i + 1,
			TotalEmployees:      10,
			AvgWorkedHours:      8,
			HealthScore:         Float(s),
			EmployeesWithIssues: i,
		})
	}
	return out
}

func TestPodiumAndRemainingAttendance(t *testing.T) {
	recs := attendanceFixture()

	podium := Podium(recs)
	if diff := cmp.Diff(recs[:3], podium); diff != "" {
		t.Fatalf("podium mismatch (-want +got):\n%s", diff)
	}

	rest := RemainingAttendance(recs)
	if len(rest) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(rest))
	}
	for i, want := range []int{4, 5} {
		if rest[i].Position != want {
			t.Fatalf("remaining[%d] position = %d, want %d", i, rest[i].Position, want)
		}
		if rest[i].Record.Rank != want {
			t.Fatalf("remaining[%d] rank = %d, want %d", i, rest[i].Record.Rank, want)
		}
	}
}

func TestRemainingAttendanceFallsBackToIndex(t *testing.T) {
	recs := attendanceFixture()
	recs[3].Rank = 0
	recs[4].Rank = 9

	rest := RemainingAttendance(recs)
	got := []int{rest[0].Position, rest[1].Position}
	if diff := cmp.Diff([]int{4, 9}, got); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestRemainingCompletionNumbersFromFour(t *testing.T) {
	recs := make([]CompletionRecord, 6)
	for i := range recs {
		recs[i] = CompletionRecord{SBUID: string(rune('a' + i))}
	}
	rest := RemainingCompletion(recs)
	var got []int
	for _, r := range rest {
		got = append(got, r.Position)
	}
	if diff := cmp.Diff([]int{4, 5, 6}, got); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestPodiumShortLists(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want int
	}{
		{"empty", 0, 0},
		{"one", 1, 1},
		{"three", 3, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := make([]CompletionRecord, tc.n)
			if got := len(Podium(recs)); got != tc.want {
				t.Fatalf("podium len = %d, want %d", got, tc.want)
			}
			if rest := RemainingCompletion(recs); rest != nil {
				t.Fatalf("expected no remaining records, got %d", len(rest))
			}
		})
	}
}

func TestSummarizeAttendance(t *testing.T) {
	recs := attendanceFixture()
	recs[4].HealthScore = nil // counted as zero

	ov := SummarizeAttendance(recs)
	if ov.TotalEmployees != 50 {
		t.Fatalf("total employees = %d, want 50", ov.TotalEmployees)
	}
	if ov.TotalIssues != 0+1+2+3+4 {
		t.Fatalf("total issues = %d", ov.TotalIssues)
	}
	wantHealth := (95.0 + 88 + 72 + 55) / 5
	if math.Abs(ov.AvgHealthScore-wantHealth) > 1e-9 {
		t.Fatalf("avg health = %v, want %v", ov.AvgHealthScore, wantHealth)
	}
	if ov.AvgWorkHours != 8 {
		t.Fatalf("avg hours = %v, want 8", ov.AvgWorkHours)
	}

	if (SummarizeAttendance(nil) != AttendanceOverview{}) {
		t.Fatalf("expected zero overview for empty input")
	}
}

func TestSummarizeCompletion(t *testing.T) {
	recs := []CompletionRecord{
		{TotalActiveEmployees: 10, SubmittedEmployees: 8, NotSubmittedEmployees: 2, CompletionPercentage: 80},
		{TotalActiveEmployees: 20, SubmittedEmployees: 10, NotSubmittedEmployees: 10, CompletionPercentage: 50},
	}
	want := CompletionOverview{TotalEmployees: 30, TotalSubmitted: 18, TotalPending: 12, AvgCompletion: 65}
	if diff := cmp.Diff(want, SummarizeCompletion(recs)); diff != "" {
		t.Fatalf("overview mismatch (-want +got):\n%s", diff)
	}
	for i, r := range recs {
		if !r.Balanced() {
			t.Fatalf("record %d should be balanced", i)
		}
	}
}
