package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhm-kanzlei/posteingang/internal/common"
)

func newTestSegmenter() *Segmenter {
	return NewSegmenter(newTestDetector(), nil)
}

func pagesOf(texts ...string) []Page {
	pages := make([]Page, len(texts))
	for i, t := range texts {
		pages[i] = Page{Index: i, Text: t}
	}
	return pages
}

func TestSegment_NoSeparators_SingleDocument(t *testing.T) {
	s := newTestSegmenter()

	docs, seps, err := s.Segment(pagesOf("Seite eins", "Seite zwei", "Seite drei"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, seps)
	assert.Equal(t, []int{0, 1, 2}, docs[0].PageIndexes())
	assert.Equal(t, "", docs[0].SourceCaseworkerCode)
}

func TestSegment_SeparatorCodePropagatesForward(t *testing.T) {
	s := newTestSegmenter()

	// Leading document, then a separator carrying TS, then one content page.
	docs, seps, err := s.Segment(pagesOf(
		"Schreiben an die Kanzlei, erste Sendung",
		"Trennseite TS",
		"Schreiben der Gegenseite, zweite Sendung",
	))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, []int{1}, seps)

	assert.Equal(t, []int{0}, docs[0].PageIndexes())
	assert.Equal(t, "", docs[0].SourceCaseworkerCode)

	assert.Equal(t, []int{2}, docs[1].PageIndexes())
	assert.Equal(t, "TS", docs[1].SourceCaseworkerCode)
}

func TestSegment_ConsecutiveSeparatorsCollapse(t *testing.T) {
	s := newTestSegmenter()

	docs, seps, err := s.Segment(pagesOf(
		"Inhalt A",
		"Trennseite SQ",
		"Trennseite M",
		"Inhalt B",
	))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Len(t, seps, 2)
	// No empty document between the two separators; the later code wins.
	assert.Equal(t, "M", docs[1].SourceCaseworkerCode)
}

func TestSegment_TrailingSeparator(t *testing.T) {
	s := newTestSegmenter()

	docs, _, err := s.Segment(pagesOf("Inhalt", "Trennseite"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, []int{0}, docs[0].PageIndexes())
}

func TestSegment_PageConservation(t *testing.T) {
	s := newTestSegmenter()

	pages := pagesOf(
		"Inhalt 1", "Trennseite", "Inhalt 2", "Inhalt 3",
		"Trennseite CV", "Inhalt 4", "Trennseite", "Inhalt 5",
	)
	docs, seps, err := s.Segment(pages)
	require.NoError(t, err)

	total := len(seps)
	seen := map[int]bool{}
	for _, d := range docs {
		for _, idx := range d.PageIndexes() {
			assert.False(t, seen[idx], "page %d emitted twice", idx)
			seen[idx] = true
			total++
		}
	}
	assert.Equal(t, len(pages), total)
}

func TestSegment_OrderPreserved(t *testing.T) {
	s := newTestSegmenter()

	docs, _, err := s.Segment(pagesOf("a", "b", "Trennseite", "c", "d"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a\n\nb", docs[0].Text())
	assert.Equal(t, "c\n\nd", docs[1].Text())
}

func TestSegment_EmptyBatch(t *testing.T) {
	s := newTestSegmenter()

	_, _, err := s.Segment(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrEmptyBatch)
}
