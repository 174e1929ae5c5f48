package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/fbdash/internal/dataset"
)

// Apply returns the records matching st in input order. It never fails; no
// match yields an empty, non-nil slice.
func Apply(records []dataset.Record, st State) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if st.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether r passes every categorical selection and lies
// within the inclusive date bounds.
func (s State) Matches(r dataset.Record) bool {
	for _, f := range dataset.CategoricalFields {
		if !s.Get(f).Matches(r.Get(f)) {
			return false
		}
	}
	d := truncateDay(r.Date)
	if !s.From.IsZero() && d.Before(truncateDay(s.From)) {
		return false
	}
	if !s.To.IsZero() && d.After(truncateDay(s.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var boundLayouts = []string{dataset.DateLayout, "2006-01-02T15:04:05", time.RFC3339}

// ParseDate parses a date bound as sent by a date picker. Any time of day
// is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}
