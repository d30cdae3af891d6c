package register

import (
	"sort"
	"strings"
	"time"

	"github.com/rhm-kanzlei/posteingang/constants"
)

// CaseRecord is one row of the case register. Stem is the natural key
// ("151/25"); the caseworker code is stored canonical.
type CaseRecord struct {
	Stem           string
	CaseworkerCode string
	Label          string // short label, "Mandant ./. Gegner"
	Opponent       string
	Type           string // Anwalt / Notar
	UpdatedAt      time.Time
}

// Normalize trims fields and folds the caseworker code onto its canonical
// spelling. Returns false when the record has no stem and cannot be keyed.
func (r *CaseRecord) Normalize() bool {
	r.Stem = strings.TrimSpace(r.Stem)
	if r.Stem == "" {
		return false
	}
	r.Label = strings.TrimSpace(r.Label)
	r.Opponent = strings.TrimSpace(r.Opponent)
	r.Type = strings.TrimSpace(r.Type)
	if code, ok := constants.CanonicalizeCode(r.CaseworkerCode); ok {
		r.CaseworkerCode = code
	} else {
		r.CaseworkerCode = strings.ToUpper(strings.TrimSpace(r.CaseworkerCode))
	}
	return true
}

// SplitLabel splits a "Mandant ./. Gegner" short label into its two sides.
// Either side may come back empty when the label has no "./." divider.
func SplitLabel(label string) (client, opponent string) {
	parts := strings.SplitN(label, "./.", 2)
	if len(parts) != 2 {
		return strings.TrimSpace(label), ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// Snapshot is an immutable, read-only view of the register taken at the
// start of a pipeline run. Safe for concurrent readers.
type Snapshot struct {
	records map[string]CaseRecord
}

func NewSnapshot(records []CaseRecord) *Snapshot {
	m := make(map[string]CaseRecord, len(records))
	for _, r := range records {
		if r.Normalize() {
			m[r.Stem] = r
		}
	}
	return &Snapshot{records: m}
}

// Lookup returns the record for a stem.
func (s *Snapshot) Lookup(stem string) (CaseRecord, bool) {
	r, ok := s.records[stem]
	return r, ok
}

// Len returns the number of register entries.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Records returns all entries sorted by stem.
func (s *Snapshot) Records() []CaseRecord {
	out := make([]CaseRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stem < out[j].Stem })
	return out
}
