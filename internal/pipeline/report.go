package pipeline

import (
	"sort"
	"time"

	"jamsync/internal/matching"
	"jamsync/internal/session"
)

const (
	// ReasonIndexWorksheet marks the leading index tab of a spreadsheet.
	ReasonIndexWorksheet session.SkipReason = "index_worksheet"
	// ReasonExtractionFailed marks a worksheet whose extraction panicked.
	ReasonExtractionFailed session.SkipReason = "extraction_failed"
)

// Skip records a worksheet that produced no session.
type Skip struct {
	Spreadsheet string             `json:"spreadsheet"`
	Title       string             `json:"title"`
	Reason      session.SkipReason `json:"reason"`
	Detail      string             `json:"detail,omitempty"`
}

// Pair is a song/artist combination as written in the worksheet.
type Pair struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
}

// Report summarizes one run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Normalizer string    `json:"normalizer"`
	Threshold  float64   `json:"threshold"`

	Worksheets int    `json:"worksheets"`
	Sessions   int    `json:"sessions"`
	Skipped    []Skip `json:"skipped"`

	SongsMatched int `json:"songs_matched"`
	// SongsUnmatched counts song events left verbatim; Unmatched holds the
	// distinct pairs behind them.
	SongsUnmatched int `json:"songs_unmatched"`
	Malformed      int `json:"malformed_entries"`

	Unmatched []Pair            `json:"unmatched"`
	Matches   []matching.Result `json:"matches"`
}

// Duration reports the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// SkipCounts groups skipped worksheets by reason.
func (r *Report) SkipCounts() map[session.SkipReason]int {
	counts := make(map[session.SkipReason]int, len(r.Skipped))
	for _, skip := range r.Skipped {
		counts[skip.Reason]++
	}
	return counts
}

type pairSet map[Pair]struct{}

func (s pairSet) add(p Pair) { s[p] = struct{}{} }

func (s pairSet) sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Song != out[j].Song {
			return out[i].Song < out[j].Song
		}
		return out[i].Artist < out[j].Artist
	})
	return out
}
