package deadline

import (
	"strings"
	"time"
)

// Urgency buckets a deadline relative to a reference date.
type Urgency string

// Stable values (exported verbatim into spreadsheets and logs).
const (
	UrgencyCritical  Urgency = "kritisch"   // due within 3 days, overdue included
	UrgencyImportant Urgency = "dringend"   // due within 7 days
	UrgencyUpcoming  Urgency = "anstehend"  // due within 14 days
	UrgencyNormal    Urgency = "normal"     // further out
	UrgencyNone      Urgency = "ohne-frist" // no parseable deadline date
)

// Source says where a deadline came from.
type Source string

const (
	SourceExtracted Source = "feld"      // field-extracted by the AI collaborator
	SourceInferred  Source = "ermittelt" // inferred from document text
)

// Deadline is a date plus its descriptive text. The urgency tier is always
// recomputed against the current reference date, never stored.
type Deadline struct {
	Date        time.Time // zero when unparseable or absent
	Description string
	Source      Source
}

// HasDate reports whether the deadline carries a usable date.
func (d Deadline) HasDate() bool {
	return !d.Date.IsZero()
}

// DaysUntil returns whole calendar days from today to the deadline,
// negative for overdue deadlines.
func (d Deadline) DaysUntil(today time.Time) int {
	return int(midnight(d.Date).Sub(midnight(today)).Hours() / 24)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Classify computes the urgency tier for a deadline against "today".
// Overdue deadlines classify as critical; surfacing them is the point.
// A deadline without a date gets its own tier, never "normal".
func Classify(d Deadline, today time.Time) Urgency {
	if !d.HasDate() {
		return UrgencyNone
	}
	days := d.DaysUntil(today)
	switch {
	case days <= 3:
		return UrgencyCritical
	case days <= 7:
		return UrgencyImportant
	case days <= 14:
		return UrgencyUpcoming
	default:
		return UrgencyNormal
	}
}

// dateLayouts are the formats deadline dates arrive in: ISO from the AI
// collaborator, German day-first from document text.
var dateLayouts = []string{"2006-01-02", "02.01.2006", "2.1.2006"}

// ParseDate parses a deadline date tolerantly. Returns the zero time and
// false when the input is empty or matches no known layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}
