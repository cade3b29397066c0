package exposure

import "context"

// Verdict is the outcome of a password exposure check. It is a pure function
// of the exposure count.
type Verdict struct {
	IsExposed     bool
	ExposureCount int64
	RiskLevel     RiskLevel
}

// NewVerdict builds the verdict for count.
func NewVerdict(count int64) Verdict {
	if count < 0 {
		count = 0
	}
	return Verdict{
		IsExposed:     count > 0,
		ExposureCount: count,
		RiskLevel:     ClassifyRisk(count),
	}
}

// RangeQuerier fetches every candidate that shares prefix from the password
// frequency database.
type RangeQuerier interface {
	QueryRange(ctx context.Context, prefix string) (CandidateSet, error)
}
