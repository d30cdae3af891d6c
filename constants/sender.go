package constants

import "strings"

// SenderType classifies who sent a piece of mail.
type SenderType string

// Stable values (exported verbatim into spreadsheets).
const (
	SenderCourt     SenderType = "Gericht"
	SenderAuthority SenderType = "Behoerde"
	SenderInsurer   SenderType = "Versicherung"
	SenderOther     SenderType = "Sonstige"
)

var allSenderTypes = []SenderType{SenderCourt, SenderAuthority, SenderInsurer, SenderOther}

// SenderTypesAsStrings returns the allowed sender types for schema enums.
func SenderTypesAsStrings() []string {
	out := make([]string, len(allSenderTypes))
	for i, s := range allSenderTypes {
		out[i] = string(s)
	}
	return out
}

// CanonicalizeSenderType folds free-form spellings (umlauts, casing) onto the
// closed sender-type set. Unknown input yields SenderOther.
func CanonicalizeSenderType(input string) (SenderType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, "ö", "oe")
	switch normalized {
	case "gericht", "amtsgericht", "landgericht", "oberlandesgericht":
		return SenderCourt, true
	case "behoerde", "amt":
		return SenderAuthority, true
	case "versicherung", "versicherer":
		return SenderInsurer, true
	case "sonstige", "sonstiges":
		return SenderOther, true
	}
	return SenderOther, false
}
