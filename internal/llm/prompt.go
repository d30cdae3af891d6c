package llm

import (
	"strings"
)

// BuildSystemPrompt composes the system message: role, sender-type enum,
// date formatting rules, and deadline guidance. The correspondence is
// German legal mail, so the domain wording stays German while the
// instructions stay English for model reliability.
func BuildSystemPrompt(req ExtractRequest) string {
	var typeLine string
	if len(req.SenderTypes) > 0 {
		typeLine = "If you include 'sender_type' it MUST be exactly one of: " +
			strings.Join(req.SenderTypes, ", ") + ". "
	} else {
		typeLine = "If you include 'sender_type', use a short German label such as Gericht or Versicherung. "
	}

	parts := []string{
		"You are a legal-mail parser for a German law office. Return ONLY JSON that matches the provided JSON Schema.",
		"The input is OCR text of one piece of incoming mail; expect OCR noise and do not invent data that is not visible.",
		"'internal_case_number' is the office's own file number in the form digits/two-digit-year, optionally followed by a short caseworker code (e.g. 151/25 M). Never confuse it with court dockets or insurer references.",
		"'external_case_number' is the sender's reference: a court docket (e.g. 3 C 412/24), an insurer's Schadennummer, or similar.",
		"'client' is the Mandant of the office, 'opponent' the opposing party or sender.",
		typeLine,
		"Use ISO-8601 dates (YYYY-MM-DD) for 'deadline_date'.",
		"If the letter states a deadline (Frist, Stellungnahme bis, Zahlung bis, Einspruchsfrist), put the date in 'deadline_date' and quote the governing phrase in 'deadline_description'.",
		"'keywords' are up to five short German topic words suitable for a filename (e.g. Klageerwiderung, Mahnung).",
		"Never output null. If a field is not present in the text, omit it.",
	}

	if d := strings.TrimSpace(req.ReferenceDate); d != "" {
		parts = append(parts, "Resolve relative date wording (e.g. 'binnen zwei Wochen') against the receipt date "+d+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the document text plus recognition hints. The
// deterministic recognizer has already run; its result is authoritative
// and passed so the model stays consistent with it.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if hint := strings.TrimSpace(req.CaseNumberHint); hint != "" {
		b.WriteString("Known internal case number: ")
		b.WriteString(hint)
		b.WriteString("\n")
	}
	if label := strings.TrimSpace(req.CaseLabelHint); label != "" {
		b.WriteString("Register label: ")
		b.WriteString(label)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.DocumentText)
	b.WriteString("\nDocument text (first ~6k chars):\n")
	if len(text) > 6000 {
		b.WriteString(text[:6000])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
