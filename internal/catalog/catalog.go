package catalog

import (
	"slices"
	"strings"

	"jamsync/internal/textmatch"
)

// Entry is one canonical song.
type Entry struct {
	ID     string   `json:"id" yaml:"id"`
	Song   string   `json:"song" yaml:"song"`
	Artist string   `json:"artist" yaml:"artist"`
	Tags   []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// HasTag reports whether the entry carries tag.
func (e Entry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// Complete reports whether the entry has the fields matching relies on.
func (e Entry) Complete() bool {
	return strings.TrimSpace(e.ID) != "" && strings.TrimSpace(e.Song) != "" && strings.TrimSpace(e.Artist) != ""
}

// Catalog is an immutable, indexed list of entries. Iteration order is the
// order entries were supplied in.
type Catalog struct {
	entries    []Entry
	keys       [][]string
	normalizer textmatch.Normalizer
}

// New indexes entries with normalizer (Minimal when nil). The entries slice
// is copied.
func New(entries []Entry, normalizer textmatch.Normalizer) *Catalog {
	if normalizer == nil {
		normalizer = textmatch.Minimal
	}
	c := &Catalog{
		entries:    slices.Clone(entries),
		keys:       make([][]string, len(entries)),
		normalizer: normalizer,
	}
	for i, e := range c.entries {
		c.keys[i] = textmatch.Split(normalizer.Normalize(textmatch.Key(e.Song, e.Artist)))
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entry returns the entry at index i.
func (c *Catalog) Entry(i int) Entry {
	return c.entries[i]
}

// Key returns the normalized, rune-split comparison key of entry i. Callers
// must not modify it.
func (c *Catalog) Key(i int) []string {
	return c.keys[i]
}

// Normalizer returns the normalizer the keys were built with.
func (c *Catalog) Normalizer() textmatch.Normalizer {
	if c == nil || c.normalizer == nil {
		return textmatch.Minimal
	}
	return c.normalizer
}

// Entries returns a copy of all entries.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries)
}

// WithTag returns a catalog restricted to entries carrying tag, keeping
// order. An empty tag returns c.
func (c *Catalog) WithTag(tag string) *Catalog {
	tag = strings.TrimSpace(tag)
	if tag == "" || c == nil {
		return c
	}
	filtered := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.HasTag(tag) {
			filtered = append(filtered, e)
		}
	}
	return New(filtered, c.normalizer)
}

// TagCounts returns how many entries carry each tag.
func (c *Catalog) TagCounts() map[string]int {
	counts := make(map[string]int)
	if c == nil {
		return counts
	}
	for _, e := range c.entries {
		for _, tag := range e.Tags {
			counts[tag]++
		}
	}
	return counts
}
