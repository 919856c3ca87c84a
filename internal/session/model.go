package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jamsync/internal/sheet"
)

// EventType discriminates the event variants.
type EventType string

const (
	EventSong  EventType = "song"
	EventBreak EventType = "break"
)

// Event is one positioned entry in a session. Break events only carry a
// position; song events carry the verbatim (or canonicalized) text.
type Event struct {
	Position    int
	Type        EventType
	Page        string
	Song        string
	Artist      string
	RequestedBy sheet.RequestCode
}

// NewBreak returns a break event at position.
func NewBreak(position int) Event {
	return Event{Position: position, Type: EventBreak}
}

// NewSong returns a song event at position built from a parsed row.
func NewSong(position int, row sheet.Row) Event {
	return Event{
		Position:    position,
		Type:        EventSong,
		Page:        row.Page,
		Song:        row.Song,
		Artist:      row.Artist,
		RequestedBy: row.RequestedBy,
	}
}

// IsSong reports whether e is a song event.
func (e Event) IsSong() bool { return e.Type == EventSong }

type breakJSON struct {
	Position int       `json:"position"`
	Type     EventType `json:"type"`
}

type songJSON struct {
	Position    int       `json:"position"`
	Type        EventType `json:"type"`
	Page        string    `json:"page"`
	Song        string    `json:"song"`
	Artist      string    `json:"artist"`
	RequestedBy *string   `json:"requested_by_code"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventBreak:
		return json.Marshal(breakJSON{Position: e.Position, Type: EventBreak})
	case EventSong:
		payload := songJSON{
			Position: e.Position,
			Type:     EventSong,
			Page:     e.Page,
			Song:     e.Song,
			Artist:   e.Artist,
		}
		if e.RequestedBy.Valid() {
			code := string(e.RequestedBy)
			payload.RequestedBy = &code
		}
		return json.Marshal(payload)
	default:
		return nil, fmt.Errorf("marshal event: unknown type %q", e.Type)
	}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var payload songJSON
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	switch payload.Type {
	case EventBreak:
		*e = NewBreak(payload.Position)
	case EventSong:
		*e = Event{
			Position: payload.Position,
			Type:     EventSong,
			Page:     payload.Page,
			Song:     payload.Song,
			Artist:   payload.Artist,
		}
		if payload.RequestedBy != nil {
			e.RequestedBy = sheet.ParseRequestCode(*payload.RequestedBy)
		}
	default:
		return fmt.Errorf("unmarshal event: unknown type %q", payload.Type)
	}
	return nil
}

// Session is the structured record of one night's log.
type Session struct {
	ID          string            `json:"session_id"`
	Date        Date              `json:"date"`
	Venue       *string           `json:"venue"`
	SourceSheet string            `json:"source_sheet"`
	IngestedAt  time.Time         `json:"ingested_at"`
	Events      []Event           `json:"events"`
	Requests    []json.RawMessage `json:"requests"`
}

type sessionAlias Session

func (s Session) MarshalJSON() ([]byte, error) {
	out := sessionAlias(s)
	if out.Events == nil {
		out.Events = []Event{}
	}
	if out.Requests == nil {
		out.Requests = []json.RawMessage{}
	}
	return json.Marshal(out)
}

// Songs returns the song events in order.
func (s *Session) Songs() []Event {
	songs := make([]Event, 0, len(s.Events))
	for _, e := range s.Events {
		if e.IsSong() {
			songs = append(songs, e)
		}
	}
	return songs
}

// BreakCount returns the number of break events.
func (s *Session) BreakCount() int {
	n := 0
	for _, e := range s.Events {
		if e.Type == EventBreak {
			n++
		}
	}
	return n
}

var errPositions = errors.New("event positions must run 1..n without gaps")

// CheckPositions verifies that events are numbered 1, 2, ... n.
func (s *Session) CheckPositions() error {
	for i, e := range s.Events {
		if e.Position != i+1 {
			return fmt.Errorf("%w: events[%d] has position %d, want %d", errPositions, i, e.Position, i+1)
		}
	}
	return nil
}
