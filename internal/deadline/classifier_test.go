package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var today = time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)

func onDay(offset int) Deadline {
	return Deadline{Date: today.AddDate(0, 0, offset), Description: "Stellungnahme"}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    Deadline
		want Urgency
	}{
		{name: "2 days out is critical", d: onDay(2), want: UrgencyCritical},
		{name: "5 days out is important", d: onDay(5), want: UrgencyImportant},
		{name: "10 days out is upcoming", d: onDay(10), want: UrgencyUpcoming},
		{name: "30 days out is normal", d: onDay(30), want: UrgencyNormal},
		{name: "1 day overdue is still critical", d: onDay(-1), want: UrgencyCritical},
		{name: "missing date has its own tier", d: Deadline{Description: "Frist unleserlich"}, want: UrgencyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.d, today))
		})
	}
}

func TestClassify_TierBoundaries(t *testing.T) {
	assert.Equal(t, UrgencyCritical, Classify(onDay(3), today))
	assert.Equal(t, UrgencyImportant, Classify(onDay(4), today))
	assert.Equal(t, UrgencyImportant, Classify(onDay(7), today))
	assert.Equal(t, UrgencyUpcoming, Classify(onDay(8), today))
	assert.Equal(t, UrgencyUpcoming, Classify(onDay(14), today))
	assert.Equal(t, UrgencyNormal, Classify(onDay(15), today))
}

func TestParseDate(t *testing.T) {
	ts, ok := ParseDate("2025-12-10")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), ts)

	ts, ok = ParseDate("10.12.2025")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), ts)

	_, ok = ParseDate("")
	assert.False(t, ok)

	_, ok = ParseDate("demnächst")
	assert.False(t, ok)
}
