package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"jamsync/internal/session"
)

// ReadRecords splits a dataset file into raw session records without
// interpreting them.
func ReadRecords(path string, format Format) ([]json.RawMessage, error) {
	resolved, err := ResolveFormat(path, format)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return SplitRecords(data, resolved)
}

// SplitRecords splits encoded content into raw records. Blank JSONL lines
// are ignored.
func SplitRecords(data []byte, format Format) ([]json.RawMessage, error) {
	switch format {
	case FormatJSON:
		var records []json.RawMessage
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("decode dataset array: %w", err)
		}
		return records, nil
	case FormatJSONL:
		var records []json.RawMessage
		scanner := bufio.NewScanner(bytes.NewReader(data))
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			records = append(records, json.RawMessage(bytes.Clone(line)))
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan dataset: %w", err)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
}

// Decode parses raw records into sessions.
func Decode(records []json.RawMessage) ([]*session.Session, error) {
	sessions := make([]*session.Session, 0, len(records))
	for i, raw := range records {
		var s session.Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode session %d: %w", i, err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, nil
}

// Validate checks every record against the session schema and returns all
// violations joined, one per failing record.
func Validate(records []json.RawMessage) error {
	var errs []error
	for i, raw := range records {
		if err := session.ValidateRecord(i, raw); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
