package register

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mergeNow = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func rec(stem, code, label string) CaseRecord {
	return CaseRecord{Stem: stem, CaseworkerCode: code, Label: label}
}

func stems(records []CaseRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Stem
	}
	return out
}

func TestMerge_LatestWinsOverwritesFields(t *testing.T) {
	existing := []CaseRecord{rec("151/25", "M", "Meyer ./. Schulz")}
	incoming := []CaseRecord{rec("151/25", "SQ", "Meyer ./. Schulz GmbH")}

	merged, stats := Merge(existing, incoming, LatestWins, mergeNow)
	require.Len(t, merged, 1)
	assert.Equal(t, "SQ", merged[0].CaseworkerCode)
	assert.Equal(t, "Meyer ./. Schulz GmbH", merged[0].Label)
	assert.Equal(t, mergeNow, merged[0].UpdatedAt)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Added)
}

func TestMerge_FirstWinsKeepsStored(t *testing.T) {
	existing := []CaseRecord{rec("151/25", "M", "Meyer ./. Schulz")}
	incoming := []CaseRecord{
		rec("151/25", "SQ", "overwrite attempt"),
		rec("152/25", "TS", "Neu ./. Fall"),
	}

	merged, stats := Merge(existing, incoming, FirstWins, mergeNow)
	require.Len(t, merged, 2)
	assert.Equal(t, "M", merged[0].CaseworkerCode)
	assert.Equal(t, "Meyer ./. Schulz", merged[0].Label)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 0, stats.Updated)
}

func TestMerge_KeySetIsUnionAndCommutative(t *testing.T) {
	a := []CaseRecord{rec("1/25", "M", ""), rec("2/25", "SQ", "")}
	b := []CaseRecord{rec("2/25", "TS", ""), rec("3/25", "CV", "")}

	ab, _ := Merge(a, b, LatestWins, mergeNow)
	ba, _ := Merge(b, a, LatestWins, mergeNow)
	assert.Equal(t, stems(ab), stems(ba))
	assert.Equal(t, []string{"1/25", "2/25", "3/25"}, stems(ab))
}

func TestMerge_EmptyIncomingIsIdentity(t *testing.T) {
	existing := []CaseRecord{rec("1/25", "M", "a"), rec("2/25", "SQ", "b")}

	merged, stats := Merge(existing, nil, LatestWins, mergeNow)
	assert.Equal(t, stems(existing), stems(merged))
	assert.Equal(t, MergeStats{Carried: 2}, stats)
}

func TestMerge_DuplicateStemInUploadCountsOnce(t *testing.T) {
	incoming := []CaseRecord{
		rec("151/25", "M", "erste Zeile"),
		rec("151/25", "SQ", "zweite Zeile"),
	}

	merged, stats := Merge(nil, incoming, LatestWins, mergeNow)
	require.Len(t, merged, 1)
	assert.Equal(t, "SQ", merged[0].CaseworkerCode)
	assert.Equal(t, MergeStats{Added: 1}, stats)

	merged, stats = Merge(nil, incoming, FirstWins, mergeNow)
	require.Len(t, merged, 1)
	assert.Equal(t, "M", merged[0].CaseworkerCode)
	assert.Equal(t, MergeStats{Added: 1}, stats)
}

func TestMerge_DuplicateStemAgainstStoredRecord(t *testing.T) {
	existing := []CaseRecord{rec("151/25", "M", "alt")}
	incoming := []CaseRecord{
		rec("151/25", "TS", "erste Zeile"),
		rec("151/25", "SQ", "zweite Zeile"),
	}

	merged, stats := Merge(existing, incoming, LatestWins, mergeNow)
	require.Len(t, merged, 1)
	assert.Equal(t, "SQ", merged[0].CaseworkerCode)
	assert.Equal(t, MergeStats{Updated: 1}, stats)
}

func TestMerge_MalformedRowsSkippedNotFatal(t *testing.T) {
	incoming := []CaseRecord{
		rec("", "M", "kein Stamm"),
		rec("5/25", "TS", "ok"),
		rec("   ", "CV", "nur Leerzeichen"),
	}

	merged, stats := Merge(nil, incoming, LatestWins, mergeNow)
	require.Len(t, merged, 1)
	assert.Equal(t, "5/25", merged[0].Stem)
	assert.Equal(t, 2, stats.Skipped)
}

func TestMerge_NormalizesCaseworkerAliases(t *testing.T) {
	merged, _ := Merge(nil, []CaseRecord{rec("7/25", "FU", ""), rec("8/25", "mq", "")}, LatestWins, mergeNow)
	require.Len(t, merged, 2)
	assert.Equal(t, "FÜ", merged[0].CaseworkerCode)
	assert.Equal(t, "M", merged[1].CaseworkerCode)
}

func TestSplitLabel(t *testing.T) {
	client, opponent := SplitLabel("Meyer ./. Schulz GmbH")
	assert.Equal(t, "Meyer", client)
	assert.Equal(t, "Schulz GmbH", opponent)

	client, opponent = SplitLabel("Nachlass Huber")
	assert.Equal(t, "Nachlass Huber", client)
	assert.Equal(t, "", opponent)
}

func TestSnapshot_Lookup(t *testing.T) {
	snap := NewSnapshot([]CaseRecord{
		rec("151/25", "M", "Meyer ./. Schulz"),
		rec("", "SQ", "malformed"),
	})
	assert.Equal(t, 1, snap.Len())

	r, ok := snap.Lookup("151/25")
	require.True(t, ok)
	assert.Equal(t, "M", r.CaseworkerCode)

	_, ok = snap.Lookup("999/99")
	assert.False(t, ok)
}
