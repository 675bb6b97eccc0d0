package slides

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbuboard/internal/core"
)

func TestDefaultDeck(t *testing.T) {
	d := DefaultDeck()
	require.NoError(t, d.Validate())
	assert.Equal(t, 10*time.Second, d.Interval)
	assert.Equal(t, "2025-01-01-2025-05-30", d.Attendance.Key())
	assert.Equal(t, "2025-5", d.Completion.Key())

	var kinds []Kind
	for _, s := range d.Slides {
		kinds = append(kinds, s.Kind)
	}
	want := []Kind{KindBragPodium, KindAttendancePodium, KindBragRemaining, KindAttendanceRemaining}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("slide order (-want +got):\n%s", diff)
	}
}

func TestParseDeck(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, d Deck)
		wantErr string
	}{
		{
			name: "empty document keeps defaults",
			yaml: "",
			check: func(t *testing.T, d Deck) {
				assert.Equal(t, DefaultDeck(), d)
			},
		},
		{
			name: "overrides periods and slides",
			yaml: `
attendance: {start: "2025-03-01", end: "2025-03-31"}
completion: {year: 2025, month: 3}
interval: 15s
slides:
  - kind: attendance-podium
    name: Health
  - kind: brag-remaining
`,
			check: func(t *testing.T, d Deck) {
				assert.Equal(t, core.DateRange{Start: "2025-03-01", End: "2025-03-31"}, d.Attendance)
				assert.Equal(t, core.Period{Year: 2025, Month: 3}, d.Completion)
				assert.Equal(t, 15*time.Second, d.Interval)
				require.Len(t, d.Slides, 2)
				assert.Equal(t, "Health", d.Slides[0].Label())
				assert.Equal(t, "Brag Rankings", d.Slides[1].Label())
			},
		},
		{
			name:    "unknown kind",
			yaml:    "slides: [{kind: pie-chart}]",
			wantErr: "invalid deck",
		},
		{
			name:    "interval too short",
			yaml:    "interval: 100ms",
			wantErr: "invalid deck",
		},
		{
			name:    "no slides",
			yaml:    "slides: []",
			wantErr: "invalid deck",
		},
		{
			name:    "unknown field",
			yaml:    "colour: red",
			wantErr: "parse deck",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDeck(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

func TestLoadDeckMissingFile(t *testing.T) {
	_, err := LoadDeck(t.TempDir() + "/missing.yaml")
	require.Error(t, err)
}
