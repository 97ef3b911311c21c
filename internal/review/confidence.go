package review

// ConfidenceBand classifies an upstream confidence score for display
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// Band thresholds on the 0-100 confidence scale
const (
	highConfidenceMin   = 80.0
	mediumConfidenceMin = 50.0
)

// Band maps a 0-100 confidence score to its display band. The score is
// upstream-computed and purely informational here.
func Band(score float64) ConfidenceBand {
	switch {
	case score >= highConfidenceMin:
		return BandHigh
	case score >= mediumConfidenceMin:
		return BandMedium
	default:
		return BandLow
	}
}
