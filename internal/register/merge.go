package register

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MergePolicy decides which side wins when a stem exists on both sides.
type MergePolicy int

const (
	// LatestWins treats the incoming upload as authoritative: its
	// non-key fields overwrite the stored record. Default.
	LatestWins MergePolicy = iota
	// FirstWins keeps the stored record untouched and only adds new
	// stems, preserving the original entries for audit purposes.
	FirstWins
)

func (p MergePolicy) String() string {
	if p == FirstWins {
		return "first-wins"
	}
	return "latest-wins"
}

// ParseMergePolicy parses the recognized policy names.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest-wins":
		return LatestWins, nil
	case "first-wins":
		return FirstWins, nil
	}
	return LatestWins, fmt.Errorf("unknown merge policy %q", s)
}

// MergeStats reports what a merge did. Skipped counts malformed rows
// (missing stem) excluded from either side; nothing else is dropped.
type MergeStats struct {
	Added   int
	Updated int
	Carried int
	Skipped int
}

// Merge reconciles an incoming register upload against the existing
// records. The result has at most one record per stem and covers every
// stem present in either input. Malformed rows are counted, not fatal.
func Merge(existing, incoming []CaseRecord, policy MergePolicy, now time.Time) ([]CaseRecord, MergeStats) {
	var stats MergeStats

	merged := make(map[string]CaseRecord, len(existing)+len(incoming))
	for _, r := range existing {
		if !r.Normalize() {
			stats.Skipped++
			continue
		}
		merged[r.Stem] = r
	}
	stats.Carried = len(merged)

	seen := make(map[string]struct{}, len(incoming))
	for _, r := range incoming {
		if !r.Normalize() {
			stats.Skipped++
			continue
		}
		prev, exists := merged[r.Stem]
		_, dup := seen[r.Stem]
		seen[r.Stem] = struct{}{}
		if !exists {
			if r.UpdatedAt.IsZero() {
				r.UpdatedAt = now
			}
			merged[r.Stem] = r
			stats.Added++
			continue
		}
		if policy == FirstWins {
			continue
		}
		// Latest wins: incoming non-key fields replace the stored ones
		// and the record's last-updated marker is refreshed.
		prev.CaseworkerCode = r.CaseworkerCode
		prev.Label = r.Label
		prev.Opponent = r.Opponent
		prev.Type = r.Type
		prev.UpdatedAt = now
		merged[r.Stem] = prev
		if dup {
			// A stem repeated within the same upload counts once, as a
			// single add or update against the stored state.
			continue
		}
		stats.Updated++
		stats.Carried--
	}

	out := make([]CaseRecord, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stem < out[j].Stem })
	return out, stats
}
