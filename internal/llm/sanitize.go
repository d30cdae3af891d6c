package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (the model sometimes answers in German field names)
// - Drops null/empty optionals
// - Reformats German dates to ISO for the date field
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			// don't overwrite existing value if already present
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	renamed("aktenzeichen", "internal_case_number")
	renamed("case_number", "internal_case_number")
	renamed("mandant", "client")
	renamed("gegner", "opponent")
	renamed("absendertyp", "sender_type")
	renamed("frist", "deadline_date")
	renamed("fristdatum", "deadline_date")
	renamed("fristtext", "deadline_description")
	renamed("stichworte", "keywords")

	// 2) ISO-reformat the deadline date; drop when unparseable
	if v, ok := m["deadline_date"].(string); ok {
		if iso, ok := toISODate(v); ok {
			m["deadline_date"] = iso
		} else {
			delete(m, "deadline_date")
			dropped = append(dropped, "deadline_date(unparseable)")
		}
	}

	// 3) keywords may come back as a comma-joined string
	if v, ok := m["keywords"].(string); ok {
		var kws []any
		for _, kw := range strings.Split(v, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) > 0 {
			m["keywords"] = kws
			dropped = append(dropped, "keywords(split)")
		} else {
			delete(m, "keywords")
			dropped = append(dropped, "keywords(empty)")
		}
	}

	// 4) remove unknown keys (everything not in the schema set below)
	allowed := map[string]struct{}{
		"internal_case_number": {}, "external_case_number": {}, "client": {},
		"opponent": {}, "sender_type": {}, "deadline_date": {},
		"deadline_description": {}, "keywords": {}, "confidence": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	// 5) trim strings; drop empties and literal "null"
	trimKeys := []string{
		"internal_case_number", "external_case_number", "client",
		"opponent", "sender_type", "deadline_description",
	}
	for _, k := range trimKeys {
		switch v := m[k].(type) {
		case string:
			s := strings.TrimSpace(v)
			if s == "" || strings.EqualFold(s, "null") {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		case nil:
			if _, present := m[k]; present {
				delete(m, k)
				dropped = append(dropped, k+"(null)")
			}
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// toISODate accepts YYYY-MM-DD as-is and reformats the German forms
// DD.MM.YYYY and D.M.YYYY.
func toISODate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if isoDatePattern.MatchString(s) {
		return s, true
	}
	match := germanDatePattern.FindStringSubmatch(s)
	if match == nil {
		return "", false
	}
	day, month, year := match[1], match[2], match[3]
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return year + "-" + month + "-" + day, true
}
