package pipeline

import (
	"time"

	"github.com/patrickmn/go-cache"

	"jamsync/internal/matching"
	"jamsync/internal/session"
)

// sanitized is the per-worksheet outcome of canonicalizing song events.
type sanitized struct {
	matches   []matching.Result
	unmatched []Pair
	malformed int
}

type memoEntry struct {
	result matching.Result
	ok     bool
}

// sanitizer canonicalizes song events against the catalog. It is shared by
// all workers of a run; the memo is keyed by the normalized query key.
type sanitizer struct {
	matcher *matching.Matcher
	memo    *cache.Cache
}

func newSanitizer(matcher *matching.Matcher, ttl time.Duration) *sanitizer {
	s := &sanitizer{matcher: matcher}
	if ttl > 0 {
		s.memo = cache.New(ttl, 2*ttl)
	}
	return s
}

// sanitize rewrites sess.Events in place. Malformed song events are dropped
// and the remaining events renumbered from 1 in their original order.
func (s *sanitizer) sanitize(sess *session.Session) sanitized {
	var out sanitized
	kept := make([]session.Event, 0, len(sess.Events))
	for _, ev := range sess.Events {
		if !ev.IsSong() {
			kept = append(kept, ev)
			continue
		}
		if matching.IsMalformed(ev.Song, ev.Artist) {
			out.malformed++
			continue
		}
		if result, ok := s.match(ev.Song, ev.Artist); ok {
			ev.Song = result.CanonicalSong
			ev.Artist = result.CanonicalArtist
			out.matches = append(out.matches, result)
		} else {
			out.unmatched = append(out.unmatched, Pair{Song: ev.Song, Artist: ev.Artist})
		}
		kept = append(kept, ev)
	}
	for i := range kept {
		kept[i].Position = i + 1
	}
	sess.Events = kept
	return out
}

func (s *sanitizer) match(song, artist string) (matching.Result, bool) {
	key := s.matcher.QueryKey(song, artist)
	if s.memo != nil {
		if cached, found := s.memo.Get(key); found {
			entry := cached.(memoEntry)
			entry.result.OriginalSong = song
			entry.result.OriginalArtist = artist
			return entry.result, entry.ok
		}
	}
	result, ok, err := s.matcher.Match(song, artist)
	if err != nil {
		return matching.Result{}, false
	}
	if s.memo != nil {
		s.memo.SetDefault(key, memoEntry{result: result, ok: ok})
	}
	return result, ok
}
