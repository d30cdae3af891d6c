package recognize

import (
	"regexp"
	"strings"
)

// externalKeywords flag lines that carry a foreign reference: the opposing
// counsel's file number, a court docket, or an insurer's claim number.
var externalKeywords = []string{
	"aktenzeichen beim",
	"az.",
	"az:",
	"schadennummer",
	"schaden-nr",
	"versicherungsnummer",
	"kundennummer",
}

// externalPatterns, most specific first. A court docket like "3 C 412/24"
// must win over the bare digit-run claim pattern on the same line.
var externalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+\s+[A-Z][A-Za-z]*\s+\d+/\d+`), // court docket
	regexp.MustCompile(`[A-Z]{2,}[-/]?\d{6,}`),           // insurer policy number
	regexp.MustCompile(`\d{6,}`),                         // claim number
}

// ExternalNumbers collects external case identifiers from the document
// text: lines mentioning a reference keyword are probed with the docket,
// policy and claim patterns. Duplicates are dropped, text order kept.
func ExternalNumbers(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !hasExternalKeyword(lower) {
			continue
		}
		for _, pattern := range externalPatterns {
			match := pattern.FindString(line)
			if match == "" {
				continue
			}
			if _, dup := seen[match]; !dup {
				seen[match] = struct{}{}
				out = append(out, match)
			}
			break
		}
	}
	return out
}

func hasExternalKeyword(lowerLine string) bool {
	for _, kw := range externalKeywords {
		if strings.Contains(lowerLine, kw) {
			return true
		}
	}
	return false
}
