package pipeline

import (
	"github.com/google/uuid"

	"github.com/rhm-kanzlei/posteingang/internal/deadline"
	"github.com/rhm-kanzlei/posteingang/internal/recognize"
)

// DocumentResult is the finalized record for one document of a batch:
// recognized case number, caseworker assignment, extracted fields and
// deadline urgency, keyed for grouping by caseworker code.
type DocumentResult struct {
	Index       int // position within the batch, 0-based
	DocumentID  uuid.UUID
	PageIndexes []int

	CaseNumber      recognize.Candidate
	CaseNumberFound bool
	ExternalNumbers []string
	Assignment      recognize.Assignment

	Client     string
	Opponent   string
	SenderType string
	Keywords   []string

	Deadline deadline.Deadline
	Urgency  deadline.Urgency

	// TextExcerpt is the opening of the document text, for review columns.
	TextExcerpt string
	// PDFFileName is the archival name of the split per-document PDF,
	// filled by the caller once the file exists.
	PDFFileName string

	// ExtractJSON is the raw validated LLM output, kept for review.
	ExtractJSON []byte
	// ExtractErr records an extraction failure for this document. The
	// document still carries its deterministic results.
	ExtractErr error
}

// DocumentError pairs a document index with the error it hit.
type DocumentError struct {
	Index int
	Err   error
}

// RunManifest reports every countable outcome of a batch run. Nothing the
// pipeline skips or falls back on is silent; it all surfaces here.
type RunManifest struct {
	Pages          int
	SeparatorPages int
	Documents      int
	Unassigned     int // documents routed to the unassigned sentinel
	NoCaseNumber   int
	NoDeadline     int
	ExtractErrors  []DocumentError
}

// ByCaseworker groups results by assigned caseworker code. Order within a
// group follows batch order.
func ByCaseworker(results []DocumentResult) map[string][]DocumentResult {
	grouped := make(map[string][]DocumentResult)
	for _, r := range results {
		grouped[r.Assignment.Code] = append(grouped[r.Assignment.Code], r)
	}
	return grouped
}
