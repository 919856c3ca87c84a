package textmatch

import "github.com/pmezard/go-difflib/difflib"

// Split breaks s into single-rune elements, the unit the sequence matcher
// compares.
func Split(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Ratio returns the Ratcliff-Obershelp similarity of a and b: 2*M/T where M
// is the total size of the matching blocks and T the combined length.
// When b has 200 or more runes, difflib's auto-junk heuristic applies: runes
// making up more than 1% of b are not used to seed matching blocks.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(Split(a), Split(b)).Ratio()
}

// Scorer scores many candidates against one query. The query-side analysis is
// computed once. A Scorer is not safe for concurrent use.
type Scorer struct {
	m *difflib.SequenceMatcher
}

// NewScorer prepares a scorer for the given split query.
func NewScorer(query []string) *Scorer {
	return &Scorer{m: difflib.NewMatcher(nil, query)}
}

// Score returns the similarity ratio between candidate and the query.
func (s *Scorer) Score(candidate []string) float64 {
	s.m.SetSeq1(candidate)
	return s.m.Ratio()
}
