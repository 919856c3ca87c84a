package matching

import (
	"errors"
	"testing"

	"jamsync/internal/catalog"
	"jamsync/internal/textmatch"
)

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{ID: "id1", Song: "Wonderwall", Artist: "Oasis"},
		{ID: "id2", Song: "Hotel California", Artist: "Eagles"},
		{ID: "id3", Song: "Bohemian Rhapsody", Artist: "Queen"},
	}, nil)
}

func mustMatcher(t *testing.T, c *catalog.Catalog, threshold float64) *Matcher {
	t.Helper()
	m, err := New(c, threshold)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestMatchCaseInsensitiveExact(t *testing.T) {
	m := mustMatcher(t, catalog.New([]catalog.Entry{{ID: "id1", Song: "Wonderwall", Artist: "Oasis"}}, nil), DefaultThreshold)
	res, ok, err := m.Match("wonderwall", "oasis")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if res.MatchedID != "id1" || res.Score <= 0.95 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.CanonicalSong != "Wonderwall" || res.CanonicalArtist != "Oasis" {
		t.Fatalf("unexpected canonical text %+v", res)
	}
	if res.OriginalSong != "wonderwall" || res.OriginalArtist != "oasis" {
		t.Fatalf("original text must be kept verbatim: %+v", res)
	}
}

func TestMatchNoMatch(t *testing.T) {
	m := mustMatcher(t, catalog.New([]catalog.Entry{{ID: "id1", Song: "Wonderwall", Artist: "Oasis"}}, nil), DefaultThreshold)
	if _, ok, err := m.Match("Completely Different Song", "Unknown Artist"); ok || err != nil {
		t.Fatalf("expected no match, got ok=%v err=%v", ok, err)
	}
	if _, ok, _ := mustMatcher(t, testCatalog(), 0.8).Match("Completely Different Song", "Unknown Artist"); ok {
		t.Fatal("expected no match against the full catalog")
	}
}

func TestMatchToleratesTyposAndWhitespace(t *testing.T) {
	m := mustMatcher(t, testCatalog(), DefaultThreshold)
	cases := []struct {
		song, artist, want string
	}{
		{"Wonderwal", "Oasis", "id1"},
		{"  Wonderwall  ", "  Oasis  ", "id1"},
		{"Bohemian Rhapsodie", "Queen", "id3"},
		{"Hotel Californ", "Eagles", "id2"},
	}
	for _, tc := range cases {
		res, ok, err := m.Match(tc.song, tc.artist)
		if err != nil || !ok {
			t.Fatalf("%q/%q: expected match, got ok=%v err=%v", tc.song, tc.artist, ok, err)
		}
		if res.MatchedID != tc.want {
			t.Fatalf("%q/%q: matched %s, want %s", tc.song, tc.artist, res.MatchedID, tc.want)
		}
	}
}

func TestMatchAlreadyCanonicalIsIdempotent(t *testing.T) {
	c := testCatalog()
	m := mustMatcher(t, c, DefaultThreshold)
	for _, e := range c.Entries() {
		res, ok, err := m.Match(e.Song, e.Artist)
		if err != nil || !ok {
			t.Fatalf("%s: expected match", e.ID)
		}
		if res.MatchedID != e.ID || res.Score < 0.95 {
			t.Fatalf("%s: unexpected result %+v", e.ID, res)
		}
	}
}

func TestMatchRejectsMalformedEntries(t *testing.T) {
	m := mustMatcher(t, testCatalog(), DefaultThreshold)
	for _, pair := range [][2]string{{"", "Oasis"}, {"Wonderwall", "  "}, {"-", "Oasis"}, {"Wonderwall", " - "}} {
		_, ok, err := m.Match(pair[0], pair[1])
		if ok || !errors.Is(err, ErrMalformedEntry) {
			t.Fatalf("%q: expected ErrMalformedEntry, got ok=%v err=%v", pair, ok, err)
		}
	}
	if IsMalformed("--", "Artist") {
		t.Fatal("only a bare dash is a placeholder")
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	m := mustMatcher(t, catalog.New(nil, nil), DefaultThreshold)
	if _, ok, err := m.Match("Wonderwall", "Oasis"); ok || err != nil {
		t.Fatalf("expected no match, got ok=%v err=%v", ok, err)
	}
	if _, ok := m.Best("Wonderwall", "Oasis"); ok {
		t.Fatal("expected no candidate from empty catalog")
	}
}

func TestTiesResolveToFirstEntry(t *testing.T) {
	c := catalog.New([]catalog.Entry{
		{ID: "first", Song: "Angie", Artist: "Rolling Stones"},
		{ID: "second", Song: "ANGIE", Artist: "rolling stones"},
	}, nil)
	res, ok, err := mustMatcher(t, c, DefaultThreshold).Match("Angie", "Rolling Stones")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	if res.MatchedID != "first" {
		t.Fatalf("expected first entry on tie, got %s", res.MatchedID)
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	c := testCatalog()
	queries := [][2]string{
		{"Hotel Californ", "Eagles"},
		{"Wonderwal", "Oasis"},
		{"Bohemian", "Queen"},
		{"Completely Different Song", "Unknown Artist"},
	}
	thresholds := []float64{1, 0.95, 0.9, 0.8, 0.6, 0.4, 0.2, 0}
	for _, q := range queries {
		var prevID string
		var prevOK bool
		for i, threshold := range thresholds {
			res, ok, err := mustMatcher(t, c, threshold).Match(q[0], q[1])
			if err != nil {
				t.Fatalf("%q: %v", q, err)
			}
			if i > 0 && prevOK && !ok {
				t.Fatalf("%q: lowering threshold to %v lost the match", q, threshold)
			}
			if prevOK && ok && res.MatchedID != prevID {
				t.Fatalf("%q: lowering threshold changed selection %s -> %s", q, prevID, res.MatchedID)
			}
			prevID, prevOK = res.MatchedID, ok
		}
		if !prevOK {
			t.Fatalf("%q: threshold 0 must always match a non-empty catalog", q)
		}
	}
}

func TestNewRejectsOutOfRangeThreshold(t *testing.T) {
	for _, threshold := range []float64{-0.1, 1.01} {
		if _, err := New(testCatalog(), threshold); err == nil {
			t.Fatalf("expected error for threshold %v", threshold)
		}
	}
}

func TestFoldedNormalizerMatchesAccents(t *testing.T) {
	entries := []catalog.Entry{{ID: "id1", Song: "Café del Mar", Artist: "Energy 52"}}
	folded := mustMatcher(t, catalog.New(entries, textmatch.Folded), 1)
	if _, ok, _ := folded.Match("Cafe del Mar", "Energy 52"); !ok {
		t.Fatal("folded normalizer should match accent-free spelling exactly")
	}
	minimal := mustMatcher(t, catalog.New(entries, nil), 1)
	if _, ok, _ := minimal.Match("Cafe del Mar", "Energy 52"); ok {
		t.Fatal("minimal normalizer must not fold accents")
	}
}
