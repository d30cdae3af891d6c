package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhm-kanzlei/posteingang/internal/register"
)

var testLabels = []string{"ihr zeichen", "unser zeichen", "ihr az.", "ihr aktenzeichen"}

func newTestRecognizer() *Recognizer {
	return NewRecognizer(testLabels, nil)
}

func snapshotOf(stems ...string) *register.Snapshot {
	records := make([]register.CaseRecord, 0, len(stems))
	for _, s := range stems {
		records = append(records, register.CaseRecord{Stem: s, CaseworkerCode: "SQ"})
	}
	return register.NewSnapshot(records)
}

func TestRecognize_ReferenceField(t *testing.T) {
	r := newTestRecognizer()

	tests := []struct {
		name string
		text string
		stem string
	}{
		{
			name: "label and number on the same line",
			text: "Sehr geehrte Damen und Herren,\nUnser Zeichen: 151/25\nin der Sache ...",
			stem: "151/25",
		},
		{
			name: "number on the following line",
			text: "Ihr Zeichen\n151/25\nDatum: 12.08.2026",
			stem: "151/25",
		},
		{
			name: "ocr double space inside the label",
			text: "Ihr  Zeichen: 97/24",
			stem: "97/24",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := r.Recognize(tt.text, nil)
			require.True(t, ok)
			assert.Equal(t, tt.stem, c.Stem)
			assert.Equal(t, TierReferenceField, c.Tier)
		})
	}
}

func TestRecognize_FullForm(t *testing.T) {
	r := newTestRecognizer()

	tests := []struct {
		name       string
		text       string
		stem       string
		wantSuffix string
	}{
		{name: "suffix after space", text: "wegen der Akte 151/25 M bitten wir", stem: "151/25", wantSuffix: "M"},
		{name: "suffix attached", text: "Akte 151/25SQ", stem: "151/25", wantSuffix: "SQ"},
		{name: "letterhead variant MQ", text: "Az 151/25 MQ", stem: "151/25", wantSuffix: "M"},
		{name: "ascii umlaut variant fu", text: "Az 151/25 fu", stem: "151/25", wantSuffix: "FÜ"},
		{name: "suffix after hyphen", text: "302/24-TS", stem: "302/24", wantSuffix: "TS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := r.Recognize(tt.text, nil)
			require.True(t, ok)
			assert.Equal(t, tt.stem, c.Stem)
			assert.Equal(t, tt.wantSuffix, c.Suffix)
			assert.Equal(t, TierFullForm, c.Tier)
		})
	}
}

func TestRecognize_RegisterStem(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("151/25", "12/24")

	c, ok := r.Recognize("in der Sache 151/25 teilen wir mit", reg)
	require.True(t, ok)
	assert.Equal(t, "151/25", c.Stem)
	assert.Empty(t, c.Suffix)
	assert.Equal(t, TierRegisterStem, c.Tier)
	assert.True(t, c.InRegister)
}

func TestRecognize_RegisterStem_EarliestWins(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("151/25", "302/24")

	// Both stems are in the register; the one appearing first wins.
	c, ok := r.Recognize("Verfahren 302/24 gegen die Sache 151/25", reg)
	require.True(t, ok)
	assert.Equal(t, "302/24", c.Stem)
}

func TestRecognize_BareStemWithoutRegisterHit(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("999/20")

	_, ok := r.Recognize("in der Sache 151/25 teilen wir mit", reg)
	assert.False(t, ok)
}

func TestRecognize_StemNormalization(t *testing.T) {
	r := newTestRecognizer()

	c, ok := r.Recognize("Unser Zeichen: 0151/25", nil)
	require.True(t, ok)
	assert.Equal(t, "151/25", c.Stem)
}

func TestRecognize_DigitBoundaries(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("34567/25", "151/25")

	// A stem embedded in a longer digit run is not a case number.
	_, ok := r.Recognize("Rechnungsnummer 1234567/25", reg)
	assert.False(t, ok)

	// A three-digit "year" is not a case number either.
	_, ok = r.Recognize("Betrag 151/253 EUR", reg)
	assert.False(t, ok)
}

func TestRecognize_SurnameAfterStemIsNotSuffix(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("151/25")

	// "Meier" is a word, not a code suffix; the stem still matches tier 3.
	c, ok := r.Recognize("Sache 151/25 Meier gegen Schulz", reg)
	require.True(t, ok)
	assert.Empty(t, c.Suffix)
	assert.Equal(t, TierRegisterStem, c.Tier)
}

func TestRecognize_SuffixRejectsTrailingDigit(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("151/25")

	// "M3" is a token, not a code suffix followed by noise.
	c, ok := r.Recognize("Sache 151/25 M3 vom 12.08.2026", reg)
	require.True(t, ok)
	assert.Empty(t, c.Suffix)
	assert.Equal(t, TierRegisterStem, c.Tier)

	// Without a register hit the bare stem yields no candidate at all.
	_, ok = r.Recognize("Sache 151/25 M3 vom 12.08.2026", nil)
	assert.False(t, ok)
}

func TestRecognize_TierOrdering(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("12/24")

	// A labeled reference beats a full-form match later in the text.
	text := "Unser Zeichen: 12/24\nwegen der Akte 151/25 M"
	c, ok := r.Recognize(text, reg)
	require.True(t, ok)
	assert.Equal(t, "12/24", c.Stem)
	assert.Equal(t, TierReferenceField, c.Tier)
}

func TestRecognize_Idempotent(t *testing.T) {
	r := newTestRecognizer()
	reg := snapshotOf("151/25")
	text := "Ihr Zeichen: 151/25 SQ\nFrist bis 12.09.2026"

	first, ok1 := r.Recognize(text, reg)
	second, ok2 := r.Recognize(text, reg)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestExternalNumbers(t *testing.T) {
	text := "Aktenzeichen beim Amtsgericht: 3 C 412/24\n" +
		"Schadennummer: 20260812345\n" +
		"Versicherungsnummer AB1234567\n" +
		"ohne Kennwort 999999999"

	got := ExternalNumbers(text)
	assert.Equal(t, []string{"3 C 412/24", "20260812345", "AB1234567"}, got)
}

func TestExternalNumbers_Deduplicates(t *testing.T) {
	text := "Schadennummer: 20260812345\nSchaden-Nr. 20260812345"
	assert.Equal(t, []string{"20260812345"}, ExternalNumbers(text))
}
