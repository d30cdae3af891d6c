package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDetector() *SeparatorDetector {
	return NewSeparatorDetector(DetectorConfig{Marker: "Trennseite", MinSimilarity: 0.80})
}

func TestDetect_Marker(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name     string
		text     string
		want     bool
		wantCode string
	}{
		{name: "exact marker", text: "Trennseite", want: true},
		{name: "lowercase", text: "trennseite", want: true},
		{name: "marker with code", text: "Trennseite TS", want: true, wantCode: "TS"},
		{name: "code before marker", text: "SQ\nTrennseite", want: true, wantCode: "SQ"},
		{name: "ocr digit for letter", text: "Trenn5eite", want: true},
		{name: "split across whitespace", text: "Trenn seite", want: true},
		{name: "single dropped char", text: "Trennseit", want: true},
		{name: "content page", text: "Sehr geehrte Damen und Herren, in der Sache 151/25 ...", want: false},
		{name: "too little of the marker", text: "Tr", want: false},
		{name: "empty page", text: "   ", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := d.Detect(tt.text)
			assert.Equal(t, tt.want, m.IsSeparator)
			assert.Equal(t, tt.wantCode, m.CaseworkerCode)
		})
	}
}

func TestDetect_CodeNormalization(t *testing.T) {
	d := newTestDetector()

	// MQ is a letterhead variant of M, FU the ASCII form of FÜ.
	m := d.Detect("Trennseite MQ")
	assert.True(t, m.IsSeparator)
	assert.Equal(t, "M", m.CaseworkerCode)

	m = d.Detect("Trennseite fu")
	assert.True(t, m.IsSeparator)
	assert.Equal(t, "FÜ", m.CaseworkerCode)
}

func TestDetect_UnknownCodeTreatedAsAbsent(t *testing.T) {
	d := newTestDetector()

	m := d.Detect("Trennseite XY")
	assert.True(t, m.IsSeparator)
	assert.Equal(t, "", m.CaseworkerCode)
}
