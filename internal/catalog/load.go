package catalog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a catalog file encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// LoadStats summarizes what a load kept and dropped.
type LoadStats struct {
	Records    int `json:"records"`
	Incomplete int `json:"incomplete"`
	Invalid    int `json:"invalid"`
}

// Kept returns the number of entries that survived filtering.
func (s LoadStats) Kept() int {
	return s.Records - s.Incomplete - s.Invalid
}

// record accepts both the song-sheet dataset shape (properties map) and the
// flat entry shape.
type record struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	Song       string            `json:"song" yaml:"song"`
	Artist     string            `json:"artist" yaml:"artist"`
	Tags       []string          `json:"tags" yaml:"tags"`
	Properties map[string]string `json:"properties" yaml:"properties"`
}

func (r record) entry() Entry {
	e := Entry{
		ID:     strings.TrimSpace(r.ID),
		Song:   r.Song,
		Artist: r.Artist,
		Tags:   normalizeTags(r.Tags),
	}
	if r.Properties != nil {
		if e.Song == "" {
			e.Song = r.Properties["song"]
		}
		if e.Artist == "" {
			e.Artist = r.Properties["artist"]
		}
		if len(e.Tags) == 0 {
			e.Tags = SplitTags(r.Properties["specialbooks"])
		}
	}
	return e
}

// SplitTags splits a comma-separated songbook list.
func SplitTags(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return normalizeTags(strings.Split(value, ","))
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Decode reads catalog entries in the given format. Records missing an id,
// song or artist are dropped and counted. In JSON Lines input, lines that do
// not parse are skipped and counted as invalid.
func Decode(r io.Reader, format Format) ([]Entry, LoadStats, error) {
	var records []record
	var stats LoadStats
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, stats, fmt.Errorf("read catalog: %w", err)
		}
		data = bytes.TrimSpace(data)
		if len(data) > 0 && data[0] == '{' {
			var single record
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, stats, fmt.Errorf("parse catalog: %w", err)
			}
			records = []record{single}
		} else if err := json.Unmarshal(data, &records); err != nil {
			return nil, stats, fmt.Errorf("parse catalog: %w", err)
		}
	case FormatJSONL:
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var rec record
			if err := json.Unmarshal(line, &rec); err != nil {
				stats.Records++
				stats.Invalid++
				continue
			}
			records = append(records, rec)
		}
		if err := scanner.Err(); err != nil {
			return nil, stats, fmt.Errorf("read catalog: %w", err)
		}
	case FormatYAML:
		var doc struct {
			Songs []record `yaml:"songs"`
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, stats, fmt.Errorf("read catalog: %w", err)
		}
		if err := yaml.Unmarshal(data, &records); err != nil {
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return nil, stats, fmt.Errorf("parse catalog: %w", err)
			}
			records = doc.Songs
		}
	default:
		return nil, stats, fmt.Errorf("unsupported catalog format %q", format)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		stats.Records++
		e := rec.entry()
		if !e.Complete() {
			stats.Incomplete++
			continue
		}
		entries = append(entries, e)
	}
	return entries, stats, nil
}

// ErrEmptyCatalog is returned by LoadFile when no usable entry was found.
var ErrEmptyCatalog = errors.New("catalog has no complete entries")

// LoadFile reads a catalog file, inferring its format from the extension.
func LoadFile(path string) ([]Entry, LoadStats, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	entries, stats, err := Decode(file, format)
	if err != nil {
		return nil, stats, err
	}
	if len(entries) == 0 {
		return nil, stats, fmt.Errorf("%s: %w", path, ErrEmptyCatalog)
	}
	return entries, stats, nil
}
