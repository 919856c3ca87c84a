package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"jamsync/internal/session"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ResolveFormat picks the encoding for path. An explicit json or jsonl
// format wins; auto (or empty) infers it from the extension.
func ResolveFormat(path string, format Format) (Format, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatJSONL:
		return FormatJSONL, nil
	case FormatAuto, "":
	default:
		return "", fmt.Errorf("unsupported dataset format %q", format)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("cannot infer dataset format from %q (use .json or .jsonl)", path)
	}
}

// Encode renders sessions in format. Both encodings end with a newline.
func Encode(sessions []*session.Session, format Format) ([]byte, error) {
	switch format {
	case FormatJSONL:
		var buf bytes.Buffer
		for i, s := range sessions {
			line, err := json.Marshal(s)
			if err != nil {
				return nil, fmt.Errorf("encode session %d: %w", i, err)
			}
			buf.Write(line)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	case FormatJSON:
		if sessions == nil {
			sessions = []*session.Session{}
		}
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode sessions: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
}
