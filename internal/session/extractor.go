package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"jamsync/internal/sheet"
)

// Extractor converts worksheet grids into sessions. It holds no per-call
// state and is safe for concurrent use.
type Extractor struct {
	now   func() time.Time
	newID func() string
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithClock overrides the capture-time source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator overrides session ID generation.
func WithIDGenerator(newID func() string) Option {
	return func(e *Extractor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// NewExtractor returns an Extractor that stamps sessions with random UUIDs
// and the current UTC time.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract builds a session from one worksheet. rows includes the header as
// its first element. A worksheet that cannot produce a session returns a
// *SkipError and no session.
func (e *Extractor) Extract(title, spreadsheet string, rows []sheet.RawRow) (*Session, error) {
	date, err := ParseTitle(title)
	if err != nil {
		return nil, &SkipError{Reason: ReasonMalformedTitle, Title: title, Detail: err.Error(), Err: ErrMalformedTitle}
	}
	if len(rows) < 2 {
		return nil, &SkipError{
			Reason: ReasonInsufficientData,
			Title:  title,
			Detail: fmt.Sprintf("%d row(s), need a header and at least one data row", len(rows)),
			Err:    ErrInsufficientData,
		}
	}

	return &Session{
		ID:          e.newID(),
		Date:        date,
		SourceSheet: spreadsheet,
		IngestedAt:  e.now().UTC().Round(0),
		Events:      buildEvents(sheet.Header(rows[0]), rows[1:]),
		Requests:    []json.RawMessage{},
	}, nil
}

func buildEvents(header sheet.Header, data []sheet.RawRow) []Event {
	events := make([]Event, 0, len(data))
	policy := breakPolicy{}
	position := 1
	for _, raw := range data {
		row := sheet.ParseRow(header, raw)
		switch policy.next(row.IsEmpty()) {
		case actionSong:
			events = append(events, NewSong(position, row))
			position++
		case actionBreak:
			events = append(events, NewBreak(position))
			position++
		case actionStop:
			return events
		}
	}
	return events
}
