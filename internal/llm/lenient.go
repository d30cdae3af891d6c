package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rhm-kanzlei/posteingang/constants"
)

var (
	isoDatePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	germanDatePattern = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	caseNumberPattern = regexp.MustCompile(`^\d{1,5}/\d{2}\s?[A-Za-zÄÖÜäöü]{0,2}$`)
)

// SanitizeOptionalFields removes or normalizes fields that don't meet our
// stricter schema, so the overall document can still validate. Every field
// in this schema is optional, so nothing here can make a document invalid.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string

	// internal_case_number: if present but not in stem(+code) shape, drop it
	if v, ok := m["internal_case_number"].(string); ok {
		s := strings.TrimSpace(v)
		if !caseNumberPattern.MatchString(s) {
			delete(m, "internal_case_number")
			dropped = append(dropped, "internal_case_number")
		} else {
			m["internal_case_number"] = s
		}
	}

	// sender_type: fold onto the canonical enum, drop unknown labels
	if v, ok := m["sender_type"].(string); ok {
		if st, known := constants.CanonicalizeSenderType(v); known {
			m["sender_type"] = string(st)
		} else {
			delete(m, "sender_type")
			dropped = append(dropped, "sender_type")
		}
	}

	// deadline_date: reformat German dates, drop anything unparseable
	if v, ok := m["deadline_date"]; ok {
		switch t := v.(type) {
		case string:
			if iso, ok := toISODate(t); ok {
				m["deadline_date"] = iso
			} else {
				delete(m, "deadline_date")
				dropped = append(dropped, "deadline_date")
			}
		default:
			delete(m, "deadline_date")
			dropped = append(dropped, "deadline_date")
		}
	}

	// confidence: some models answer with a string
	if v, ok := m["confidence"].(string); ok {
		var f float64
		if err := json.Unmarshal([]byte(strings.TrimSpace(v)), &f); err == nil && f >= 0 && f <= 1 {
			m["confidence"] = f
		} else {
			delete(m, "confidence")
			dropped = append(dropped, "confidence")
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
