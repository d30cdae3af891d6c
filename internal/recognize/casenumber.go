// Package recognize extracts internal case numbers from noisy OCR document
// text and resolves the responsible caseworker for a document.
package recognize

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rhm-kanzlei/posteingang/constants"
	"github.com/rhm-kanzlei/posteingang/internal/register"
)

// Tier ranks how a case-number candidate was found. Lower values are more
// trustworthy.
type Tier int

const (
	// TierReferenceField matched next to an "ihr zeichen" / "unser zeichen"
	// style label.
	TierReferenceField Tier = iota + 1
	// TierFullForm matched stem plus caseworker suffix anywhere in the text.
	TierFullForm
	// TierRegisterStem matched a bare stem that exists in the case register.
	TierRegisterStem
)

func (t Tier) String() string {
	switch t {
	case TierReferenceField:
		return "reference_field"
	case TierFullForm:
		return "full_form"
	case TierRegisterStem:
		return "register_stem"
	default:
		return "unknown"
	}
}

// Candidate is a recognized internal case number.
type Candidate struct {
	Raw        string // matched text as it appeared, including any suffix
	Stem       string // canonical "digits/yy" form, leading zeros stripped
	Suffix     string // canonical caseworker code, empty when absent
	Tier       Tier
	InRegister bool
}

// stemPattern matches the numeric stem of an internal case number,
// e.g. "151/25". Boundary checks happen separately because \b is
// ASCII-only and the surrounding text may carry umlauts.
var stemPattern = regexp.MustCompile(`\d{1,5}/\d{2}`)

// Recognizer finds internal case numbers in document text. Read-only
// against the register snapshot; it never writes.
type Recognizer struct {
	labels []string
	logger *slog.Logger
}

// NewRecognizer builds a Recognizer around the configured reference labels
// ("ihr zeichen", "unser zeichen", ...). Labels are matched case-insensitive
// with whitespace collapsed.
func NewRecognizer(labels []string, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	lowered := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.Join(strings.Fields(strings.ToLower(l)), " ")
		if l != "" {
			lowered = append(lowered, l)
		}
	}
	return &Recognizer{labels: lowered, logger: logger}
}

// Recognize returns the best case-number candidate for the document text,
// or false when nothing usable was found. Priority: labeled reference
// field, then full form with suffix, then bare stem backed by the register.
// Result is deterministic for a given text and snapshot.
func (r *Recognizer) Recognize(text string, reg *register.Snapshot) (Candidate, bool) {
	if m, ok := r.findLabeled(text); ok {
		return r.finish(m, TierReferenceField, reg), true
	}

	stems := findStems(text)
	for _, m := range stems {
		if m.suffix != "" {
			return r.finish(m, TierFullForm, reg), true
		}
	}
	if reg != nil {
		for _, m := range stems {
			if _, ok := reg.Lookup(m.stem); ok {
				return r.finish(m, TierRegisterStem, reg), true
			}
		}
	}
	return Candidate{}, false
}

func (r *Recognizer) finish(m stemMatch, tier Tier, reg *register.Snapshot) Candidate {
	c := Candidate{
		Raw:    m.raw,
		Stem:   m.stem,
		Suffix: m.suffix,
		Tier:   tier,
	}
	if reg != nil {
		_, c.InRegister = reg.Lookup(c.Stem)
	}
	r.logger.Debug("recognize.hit",
		slog.String("stem", c.Stem),
		slog.String("suffix", c.Suffix),
		slog.String("tier", tier.String()),
		slog.Bool("in_register", c.InRegister))
	return c
}

// findLabeled scans line by line for a reference label and returns the
// first stem on the label's line, or on the line after it. Letterheads
// regularly put the label and the number on adjacent lines.
func (r *Recognizer) findLabeled(text string) (stemMatch, bool) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		folded := strings.Join(strings.Fields(strings.ToLower(line)), " ")
		if !r.hasLabel(folded) {
			continue
		}
		if ms := findStems(line); len(ms) > 0 {
			return ms[0], true
		}
		if i+1 < len(lines) {
			if ms := findStems(lines[i+1]); len(ms) > 0 {
				return ms[0], true
			}
		}
	}
	return stemMatch{}, false
}

func (r *Recognizer) hasLabel(foldedLine string) bool {
	for _, label := range r.labels {
		if strings.Contains(foldedLine, label) {
			return true
		}
	}
	return false
}

type stemMatch struct {
	raw    string
	stem   string
	suffix string
}

// findStems returns every stem occurrence in text order, with digit
// boundary checks and suffix decoding applied.
func findStems(text string) []stemMatch {
	var out []stemMatch
	for _, loc := range stemPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if prev, ok := runeBefore(text, start); ok && unicode.IsDigit(prev) {
			continue
		}
		if next, ok := runeAt(text, end); ok && unicode.IsDigit(next) {
			continue
		}
		m := stemMatch{raw: text[start:end], stem: normalizeStem(text[start:end])}
		if code, rawEnd, ok := readSuffix(text, end); ok {
			m.suffix = code
			m.raw = text[start:rawEnd]
		}
		out = append(out, m)
	}
	return out
}

// readSuffix decodes an optional caseworker-code suffix directly after a
// stem: at most two separator runes (space, tab, hyphen), then one or two
// letters that canonicalize to a known code. Longer letter runs are
// ordinary words, not suffixes. Newlines end the attempt.
func readSuffix(text string, pos int) (code string, end int, ok bool) {
	i := pos
	seps := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != ' ' && r != '\t' && r != '-' {
			break
		}
		seps++
		if seps > 2 {
			return "", 0, false
		}
		i += size
	}
	start := i
	letters := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsLetter(r) {
			break
		}
		letters++
		if letters > 2 {
			return "", 0, false
		}
		i += size
	}
	if letters == 0 {
		return "", 0, false
	}
	// A digit glued to the letters means this is not a code suffix but
	// part of a longer token, e.g. "151/25 M3".
	if next, hasNext := runeAt(text, i); hasNext && unicode.IsDigit(next) {
		return "", 0, false
	}
	canonical, known := constants.CanonicalizeCode(text[start:i])
	if !known {
		return "", 0, false
	}
	return canonical, i, true
}

// normalizeStem strips left-padding zeros from the stem digits,
// "0151/25" becomes "151/25". The year part stays as matched.
func normalizeStem(raw string) string {
	parts := strings.SplitN(raw, "/", 2)
	digits := strings.TrimLeft(parts[0], "0")
	if digits == "" {
		digits = "0"
	}
	return digits + "/" + parts[1]
}

func runeBefore(s string, pos int) (rune, bool) {
	if pos <= 0 {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:pos])
	return r, true
}

func runeAt(s string, pos int) (rune, bool) {
	if pos >= len(s) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return r, true
}
