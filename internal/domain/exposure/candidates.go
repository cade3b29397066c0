package exposure

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Candidate is a single suffix/frequency pair returned by a range query.
type Candidate struct {
	Suffix string
	Count  int64
}

// CandidateSet is the ordered list of candidates that share a queried prefix.
type CandidateSet []Candidate

// ParseCandidates reads a "SUFFIX:COUNT" per line range response. CRLF line
// endings and blank lines are accepted. Lines that do not split into a suffix
// and a non-negative integer count are skipped.
func ParseCandidates(r io.Reader) (CandidateSet, error) {
	var set CandidateSet

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		suffix, rawCount, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		count, err := strconv.ParseInt(strings.TrimSpace(rawCount), 10, 64)
		if err != nil || count < 0 {
			continue
		}

		set = append(set, Candidate{Suffix: strings.TrimSpace(suffix), Count: count})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading range response: %w", err)
	}

	return set, nil
}

// Lookup scans the set for suffix using a case-insensitive comparison. The
// first matching entry wins; duplicates further down are ignored.
func (s CandidateSet) Lookup(suffix string) (int64, bool) {
	for _, c := range s {
		if strings.EqualFold(c.Suffix, suffix) {
			return c.Count, true
		}
	}
	return 0, false
}
