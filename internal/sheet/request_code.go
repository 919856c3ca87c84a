package sheet

import "strings"

// RequestCode identifies who requested a song. The zero value means no valid
// code was recorded.
type RequestCode string

// Known request codes.
const (
	RequestNone RequestCode = ""
	RequestA    RequestCode = "A"
	RequestG    RequestCode = "G"
	RequestO    RequestCode = "O"
)

// ParseRequestCode trims value and returns the matching code. Anything
// outside the fixed set, including lower-case variants, collapses to
// RequestNone.
func ParseRequestCode(value string) RequestCode {
	switch code := RequestCode(strings.TrimSpace(value)); code {
	case RequestA, RequestG, RequestO:
		return code
	default:
		return RequestNone
	}
}

// Valid reports whether c is one of the known codes.
func (c RequestCode) Valid() bool {
	return c == RequestA || c == RequestG || c == RequestO
}
