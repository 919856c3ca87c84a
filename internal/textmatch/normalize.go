package textmatch

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// NormalizerMinimal trims surrounding whitespace and lower-cases.
	NormalizerMinimal = "minimal"
	// NormalizerFolded additionally strips combining marks (accents).
	NormalizerFolded = "folded"
)

// Normalizer maps a comparison key onto the form used for similarity scoring.
type Normalizer interface {
	Name() string
	Normalize(string) string
}

// Minimal is the default normalizer.
var Minimal Normalizer = minimalNormalizer{}

// Folded is the opt-in accent-folding normalizer.
var Folded Normalizer = foldedNormalizer{}

// NormalizerByName resolves a configured normalizer name. Empty selects Minimal.
func NormalizerByName(name string) (Normalizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NormalizerMinimal:
		return Minimal, nil
	case NormalizerFolded:
		return Folded, nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q", name)
	}
}

type minimalNormalizer struct{}

func (minimalNormalizer) Name() string { return NormalizerMinimal }

func (minimalNormalizer) Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type foldedNormalizer struct{}

func (foldedNormalizer) Name() string { return NormalizerFolded }

func (foldedNormalizer) Normalize(s string) string {
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return Minimal.Normalize(folded)
}
