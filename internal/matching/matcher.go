package matching

import (
	"errors"
	"fmt"
	"strings"

	"jamsync/internal/catalog"
	"jamsync/internal/textmatch"
)

// DefaultThreshold is the minimum score for a match to be accepted.
const DefaultThreshold = 0.8

// ErrMalformedEntry marks queries whose song or artist is empty or a
// placeholder dash. Such rows are data-entry noise, not catalog misses.
var ErrMalformedEntry = errors.New("malformed song entry")

// Result is an accepted match.
type Result struct {
	OriginalSong    string  `json:"original_song"`
	OriginalArtist  string  `json:"original_artist"`
	CanonicalSong   string  `json:"canonical_song"`
	CanonicalArtist string  `json:"canonical_artist"`
	MatchedID       string  `json:"matched_id"`
	Score           float64 `json:"match_score"`
}

// Candidate is the best-scoring catalog entry for a query, regardless of the
// threshold.
type Candidate struct {
	Index int
	Entry catalog.Entry
	Score float64
}

// Matcher holds a catalog snapshot and threshold.
type Matcher struct {
	catalog   *catalog.Catalog
	threshold float64
}

// New returns a Matcher. threshold must lie in [0, 1].
func New(c *catalog.Catalog, threshold float64) (*Matcher, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("match threshold %v outside [0, 1]", threshold)
	}
	return &Matcher{catalog: c, threshold: threshold}, nil
}

// Threshold returns the acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Catalog returns the catalog snapshot.
func (m *Matcher) Catalog() *catalog.Catalog { return m.catalog }

// IsMalformed reports whether a song/artist pair must not be matched.
func IsMalformed(song, artist string) bool {
	return isPlaceholder(song) || isPlaceholder(artist)
}

func isPlaceholder(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || trimmed == "-"
}

// QueryKey returns the normalized comparison key for a query.
func (m *Matcher) QueryKey(song, artist string) string {
	return m.catalog.Normalizer().Normalize(textmatch.Key(song, artist))
}

// Best returns the highest-scoring entry. Ties resolve to the entry that
// comes first in catalog order. ok is false for an empty catalog.
func (m *Matcher) Best(song, artist string) (Candidate, bool) {
	if m.catalog.Len() == 0 {
		return Candidate{}, false
	}
	scorer := textmatch.NewScorer(textmatch.Split(m.QueryKey(song, artist)))
	best := Candidate{Index: -1, Score: -1}
	for i := 0; i < m.catalog.Len(); i++ {
		score := scorer.Score(m.catalog.Key(i))
		if score > best.Score {
			best.Index = i
			best.Score = score
		}
	}
	best.Entry = m.catalog.Entry(best.Index)
	return best, true
}

// Match resolves a pair. It returns ok=false when no entry reaches the
// threshold, and ErrMalformedEntry for placeholder input.
func (m *Matcher) Match(song, artist string) (Result, bool, error) {
	if IsMalformed(song, artist) {
		return Result{}, false, fmt.Errorf("%w: %q / %q", ErrMalformedEntry, song, artist)
	}
	best, ok := m.Best(song, artist)
	if !ok || best.Score < m.threshold {
		return Result{}, false, nil
	}
	return Result{
		OriginalSong:    song,
		OriginalArtist:  artist,
		CanonicalSong:   best.Entry.Song,
		CanonicalArtist: best.Entry.Artist,
		MatchedID:       best.Entry.ID,
		Score:           best.Score,
	}, true, nil
}
