package session

import (
	"errors"
	"fmt"
)

// SkipReason names why a worksheet produced no session.
type SkipReason string

const (
	ReasonMalformedTitle   SkipReason = "malformed_title"
	ReasonInsufficientData SkipReason = "insufficient_data"
)

var (
	// ErrMalformedTitle marks worksheets whose title is not a YYYY/MM/DD date.
	ErrMalformedTitle = errors.New("malformed worksheet title")
	// ErrInsufficientData marks worksheets without any data rows.
	ErrInsufficientData = errors.New("insufficient worksheet data")
)

// SkipError reports a worksheet that was skipped rather than failed.
type SkipError struct {
	Reason SkipReason
	Title  string
	Detail string
	Err    error
}

func (e *SkipError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("skip worksheet %q: %s", e.Title, e.Reason)
	}
	return fmt.Sprintf("skip worksheet %q: %s: %s", e.Title, e.Reason, e.Detail)
}

func (e *SkipError) Unwrap() error { return e.Err }

// AsSkip extracts a SkipError from err.
func AsSkip(err error) (*SkipError, bool) {
	var skip *SkipError
	if errors.As(err, &skip) {
		return skip, true
	}
	return nil, false
}
