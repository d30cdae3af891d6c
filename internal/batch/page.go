package batch

import (
	"strings"

	"github.com/google/uuid"
)

// Page is one OCR-processed page of the scanned batch. Immutable once
// produced by the upstream extraction collaborator.
type Page struct {
	Index int
	Text  string
}

// SeparatorMarker is the derived separator fact for a page.
type SeparatorMarker struct {
	IsSeparator bool
	// CaseworkerCode is the canonical code read off the separator page,
	// empty when absent or unrecognized.
	CaseworkerCode string
}

// Document is a contiguous run of content pages between two separators (or
// batch boundaries). Documents live for one processing run only.
type Document struct {
	ID    uuid.UUID
	Pages []Page
	// SourceCaseworkerCode is the code carried forward from the separator
	// page preceding this document; empty for the leading document.
	SourceCaseworkerCode string
}

// Text returns the concatenated OCR text of all pages, in order.
func (d *Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}

// PageIndexes returns the original batch page indexes of this document.
func (d *Document) PageIndexes() []int {
	out := make([]int, len(d.Pages))
	for i, p := range d.Pages {
		out[i] = p.Index
	}
	return out
}
