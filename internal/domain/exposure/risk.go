package exposure

// RiskLevel is a discrete classification of how often a password has been
// observed in breach corpora.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) String() string { return string(r) }

// Inclusive lower bounds of each non-safe tier.
const (
	lowThreshold      = 1
	mediumThreshold   = 100
	highThreshold     = 1000
	criticalThreshold = 10000
)

// ClassifyRisk maps an exposure count onto a risk tier. Negative counts are
// treated as zero.
func ClassifyRisk(count int64) RiskLevel {
	switch {
	case count >= criticalThreshold:
		return RiskCritical
	case count >= highThreshold:
		return RiskHigh
	case count >= mediumThreshold:
		return RiskMedium
	case count >= lowThreshold:
		return RiskLow
	default:
		return RiskSafe
	}
}
