package domain

import "math"

// Band is the qualitative tier of a final result.
type Band string

const (
	BandExcellent     Band = "excellent"
	BandGreat         Band = "great"
	BandGood          Band = "good"
	BandEncouragement Band = "encouragement"
)

// Percentage returns round(100*correct/total). total must be positive; the
// session never reaches the result screen with an empty question list.
func Percentage(correct, total int) int {
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// BandFor maps a percentage onto its message tier.
func BandFor(pct int) Band {
	switch {
	case pct >= 90:
		return BandExcellent
	case pct >= 70:
		return BandGreat
	case pct >= 50:
		return BandGood
	default:
		return BandEncouragement
	}
}

// Summary is the final result of a run. Percentage and Band derive from the
// count of correct answers, not the weighted score, so the tier does not
// depend on the scoring policy in effect.
type Summary struct {
	Score      int  `json:"score"`
	Correct    int  `json:"correct"`
	Total      int  `json:"total"`
	Percentage int  `json:"percentage"`
	Band       Band `json:"band"`
}

// Summarize builds the result summary for a finished run.
func Summarize(score, correct, total int) Summary {
	pct := Percentage(correct, total)
	return Summary{
		Score:      score,
		Correct:    correct,
		Total:      total,
		Percentage: pct,
		Band:       BandFor(pct),
	}
}
