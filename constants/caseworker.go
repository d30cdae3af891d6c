package constants

import "strings"

// Unassigned is the sentinel assignment for documents that could not be
// routed to a caseworker. Stable value, stored and exported as-is.
const Unassigned = "nicht-zugeordnet"

// codeScanOrder lists every accepted caseworker code spelling, most specific
// first. MQ must come before M so that a suffix scan never truncates "MQ"
// into a bare "M" match.
var codeScanOrder = []string{"MQ", "SQ", "TS", "CV", "FÜ", "FU", "M"}

// canonicalCode folds OCR and historical spellings onto the canonical code.
// MQ is an older letterhead variant of M (RAin Marquardsen); FU is the
// ASCII rendering of FÜ that OCR produces when the umlaut is lost.
var canonicalCode = map[string]string{
	"MQ": "M",
	"FU": "FÜ",
	"FÜ": "FÜ",
	"SQ": "SQ",
	"TS": "TS",
	"CV": "CV",
	"M":  "M",
}

// caseworkerNames maps canonical codes to display names for exports.
var caseworkerNames = map[string]string{
	"SQ": "Sven-Bryde Meier",
	"TS": "Tamara Meyer",
	"M":  "Ann-Kathrin Marquardsen",
	"FÜ": "Dr. Ernst Joachim Fürsen",
	"CV": "Christian Ostertun",
}

// nameAliases maps lowercase personal-name variants (first name, surname,
// hyphen/space permutations) to the canonical caseworker code. OCR mangles
// hyphens and umlauts, hence the spelled-out variants.
var nameAliases = map[string]string{
	// SQ — Sven-Bryde Meier
	"meier":            "SQ",
	"sven-bryde":       "SQ",
	"sven":             "SQ",
	"sven-bryde meier": "SQ",
	"sven bryde meier": "SQ",
	"sven meier":       "SQ",

	// TS — Tamara Meyer
	"meyer":        "TS",
	"tamara":       "TS",
	"tamara meyer": "TS",

	// M — Ann-Kathrin Marquardsen
	"marquardsen":             "M",
	"ann-kathrin":             "M",
	"ann kathrin":             "M",
	"ann-kathrin marquardsen": "M",
	"ann kathrin marquardsen": "M",

	// FÜ — Dr. Ernst Joachim Fürsen
	"fürsen":               "FÜ",
	"fuersen":              "FÜ",
	"ernst joachim":        "FÜ",
	"ernst-joachim":        "FÜ",
	"ernst joachim fürsen": "FÜ",
	"ernst-joachim fürsen": "FÜ",
	"ernst joachim fuersen": "FÜ",
	"ernst-joachim fuersen": "FÜ",

	// CV — Christian Ostertun ("Vollbrecht" appears on older files)
	"ostertun":           "CV",
	"christian":          "CV",
	"christian ostertun": "CV",
	"vollbrecht":         "CV",
}

// CodeScanOrder returns the accepted code spellings in match order.
func CodeScanOrder() []string {
	out := make([]string, len(codeScanOrder))
	copy(out, codeScanOrder)
	return out
}

// CanonicalizeCode maps a raw code spelling onto its canonical form.
// Returns false if the input is not in the closed code set.
func CanonicalizeCode(input string) (string, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	code, ok := canonicalCode[normalized]
	return code, ok
}

// CanonicalCodes returns the canonical closed set, stable order.
func CanonicalCodes() []string {
	return []string{"SQ", "TS", "M", "FÜ", "CV"}
}

// CaseworkerName returns the display name for a canonical code, or the code
// itself when unknown (including the Unassigned sentinel).
func CaseworkerName(code string) string {
	if name, ok := caseworkerNames[code]; ok {
		return name
	}
	return code
}

// NameAliases returns a copy of the personal-name alias table. Callers sort
// it as they need; the map itself is never mutated at runtime.
func NameAliases() map[string]string {
	out := make(map[string]string, len(nameAliases))
	for alias, code := range nameAliases {
		out[alias] = code
	}
	return out
}
