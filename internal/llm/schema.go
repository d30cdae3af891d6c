package llm

// BuildDocumentJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass this to the provider as a structured output
// constraint and also use it locally to validate.
func BuildDocumentJSONSchema(senderTypes []string) map[string]any {
	props := map[string]any{
		"internal_case_number": map[string]any{"type": "string", "pattern": `^\d{1,5}/\d{2}\s?[A-Za-zÄÖÜäöü]{0,2}$`},
		"external_case_number": map[string]any{"type": "string", "minLength": 1},
		"client":               map[string]any{"type": "string"},
		"opponent":             map[string]any{"type": "string"},
		"sender_type":          map[string]any{"type": "string"},
		"deadline_date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"deadline_description": map[string]any{"type": "string"},
		"keywords": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string", "minLength": 1},
			"maxItems": 5,
		},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	// Constrain sender_type when the enum is provided.
	if len(senderTypes) > 0 {
		props["sender_type"] = map[string]any{
			"type": "string",
			"enum": senderTypes,
		}
	}

	// Every field is optional: a cover letter may carry none of them and
	// that is a valid extraction result.
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{},
	}
}
