// Package pdfsplit cuts the scanned batch PDF into per-document files and
// names them for the archive.
package pdfsplit

import (
	"strings"
	"time"
)

var umlauts = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
)

// ArchiveFileName builds the archival name for one split document:
// caseNumber_client_opponent_date_keywords.pdf, transliterated and
// filesystem-safe. Empty parts are skipped; a missing case number becomes
// "ohne-az".
func ArchiveFileName(caseNumber, client, opponent string, date time.Time, keywords []string) string {
	parts := make([]string, 0, 5)

	if caseNumber == "" {
		parts = append(parts, "ohne-az")
	} else {
		parts = append(parts, sanitizePart(caseNumber))
	}
	if p := sanitizePart(client); p != "" {
		parts = append(parts, p)
	}
	if p := sanitizePart(opponent); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, date.Format("2006-01-02"))
	if kw := sanitizePart(strings.Join(keywords, " ")); kw != "" {
		parts = append(parts, kw)
	}

	return strings.Join(parts, "_") + ".pdf"
}

// sanitizePart transliterates umlauts, folds separators onto single
// hyphens and strips everything else that is not safe in a filename.
func sanitizePart(s string) string {
	s = umlauts.Replace(strings.TrimSpace(s))

	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
