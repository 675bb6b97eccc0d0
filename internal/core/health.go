package core

// Band classifies a 0-100 score for color coding.
type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandPoor Band = "poor"
)

// Thresholds shared by health scores and completion percentages.
const (
	goodThreshold = 80
	fairThreshold = 60
)

var bandColors = map[Band]string{
	BandGood: "#4ade80",
	BandFair: "#facc15",
	BandPoor: "#ef4444",
}

// ScoreBand maps a percentage or health score to its band.
func ScoreBand(score float64) Band {
	switch {
	case score >= goodThreshold:
		return BandGood
	case score >= fairThreshold:
		return BandFair
	default:
		return BandPoor
	}
}

// IssuesBand is poor when any member has attendance issues.
func IssuesBand(issues int) Band {
	if issues > 0 {
		return BandPoor
	}
	return BandGood
}

// Color returns the hex color used for the band.
func (b Band) Color() string {
	return bandColors[b]
}
