package llm

import "context"

// DocumentFields is the normalized shape we want from the LLM for one
// mail document.
type DocumentFields struct {
	InternalCaseNumber  string   `json:"internal_case_number,omitempty"` // stem or stem+code
	ExternalCaseNumber  string   `json:"external_case_number,omitempty"` // docket / claim / policy number
	Client              string   `json:"client,omitempty"`               // Mandant
	Opponent            string   `json:"opponent,omitempty"`             // Gegner or sender
	SenderType          string   `json:"sender_type,omitempty"`          // must match the sender-type enum
	DeadlineDate        string   `json:"deadline_date,omitempty"`        // YYYY-MM-DD
	DeadlineDescription string   `json:"deadline_description,omitempty"`
	Keywords            []string `json:"keywords,omitempty"` // short topic words for archival naming
	ModelConfidence     float32  `json:"confidence,omitempty"`

	// DeadlineInferred marks a deadline derived from body-text wording
	// rather than read out of a labeled deadline field. Set by the
	// extractor, never part of the JSON exchange.
	DeadlineInferred bool `json:"-"`
}

type ExtractRequest struct {
	DocumentText string
	// Hints from recognition, passed so the model does not contradict
	// what the deterministic pass already established.
	CaseNumberHint string
	CaseLabelHint  string // register short label, "Mandant ./. Gegner"

	SenderTypes   []string // closed enum for sender_type
	ReferenceDate string   // YYYY-MM-DD, anchors relative deadline wording
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (DocumentFields, []byte /*rawJSON*/, error)
}
