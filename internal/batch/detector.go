package batch

import (
	"strings"

	"github.com/agext/levenshtein"

	"github.com/rhm-kanzlei/posteingang/constants"
)

// DetectorConfig is the immutable configuration for separator detection.
type DetectorConfig struct {
	// Marker is the canonical separator token (e.g. "Trennseite").
	Marker string
	// MinSimilarity is the floor for fuzzy marker matching. Anything below
	// is not a separator; a missed split is recoverable downstream, a
	// spurious one is not.
	MinSimilarity float64
}

// SeparatorDetector decides whether a page is a separator and reads the
// optional caseworker code printed on it.
type SeparatorDetector struct {
	marker        string
	minSimilarity float64
	params        *levenshtein.Params
}

func NewSeparatorDetector(cfg DetectorConfig) *SeparatorDetector {
	return &SeparatorDetector{
		marker:        normalizeToken(cfg.Marker),
		minSimilarity: cfg.MinSimilarity,
		params:        levenshtein.NewParams(),
	}
}

// ocrFold maps digit shapes that OCR confuses with letters onto the letter
// form, so "Trenn5eite" and "Trennse1te" still match the marker.
var ocrFold = strings.NewReplacer(
	"0", "o",
	"1", "l",
	"5", "s",
	"8", "b",
)

// normalizeToken lowercases, folds OCR digit/letter confusions and strips
// everything that is not a letter or digit.
func normalizeToken(s string) string {
	s = ocrFold.Replace(strings.ToLower(s))
	var b strings.Builder
	for _, r := range s {
		if isAlnum(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isAlnum(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == 'ä' || r == 'ö' || r == 'ü' || r == 'ß':
		return true
	}
	return false
}

// Detect inspects a page's raw OCR text. A page is a separator exactly when
// a run of up to three adjacent words fuzzy-matches the marker token at or
// above the configured similarity. The caseworker code, if any, is taken
// from the remaining words and must normalize into the closed code set.
func (d *SeparatorDetector) Detect(pageText string) SeparatorMarker {
	words := strings.Fields(pageText)
	if len(words) == 0 {
		return SeparatorMarker{}
	}

	bestScore := 0.0
	bestStart, bestEnd := -1, -1
	// OCR often splits the marker apart ("Trenn seite") so windows of up
	// to three words are joined before comparing.
	for start := 0; start < len(words); start++ {
		joined := ""
		for end := start; end < len(words) && end < start+3; end++ {
			joined += words[end]
			candidate := normalizeToken(joined)
			if candidate == "" {
				continue
			}
			score := levenshtein.Similarity(candidate, d.marker, d.params)
			if score > bestScore {
				bestScore = score
				bestStart, bestEnd = start, end
			}
		}
	}
	if bestScore < d.minSimilarity {
		return SeparatorMarker{}
	}

	code := ""
	for i, w := range words {
		if i >= bestStart && i <= bestEnd {
			continue
		}
		trimmed := strings.Trim(w, ".,;:-_()")
		if c, ok := constants.CanonicalizeCode(trimmed); ok {
			code = c
			break
		}
	}
	return SeparatorMarker{IsSeparator: true, CaseworkerCode: code}
}
