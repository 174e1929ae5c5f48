// Package selection persists the last-used filter state of a client as a
// single key-value snapshot. Every change overwrites the whole record.
package selection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kalambet/fbdash/internal/dataset"
	"github.com/kalambet/fbdash/internal/filter"
)

// Snapshot is the persisted selection record. Its JSON form is what browser
// clients keep in localStorage under StorageKey.
type Snapshot struct {
	Brand    filter.Selection `json:"brand"`
	Model    filter.Selection `json:"model"`
	Fact     filter.Selection `json:"fact"`
	Country  filter.Selection `json:"country"`
	Source   filter.Selection `json:"source"`
	FromDate *string          `json:"from_date"`
	ToDate   *string          `json:"to_date"`
}

// StorageKey is the client-local storage key of the snapshot.
const StorageKey = "stored-dropdown-values"

// FromState captures st. Zero date bounds are written as null.
func FromState(st filter.State) Snapshot {
	return Snapshot{
		Brand:    st.Brand,
		Model:    st.Model,
		Fact:     st.Fact,
		Country:  st.Country,
		Source:   st.Source,
		FromDate: formatDate(st.From),
		ToDate:   formatDate(st.To),
	}
}

// State rebuilds the filter state. Null dates stay zero; a malformed date is
// an error.
func (s Snapshot) State() (filter.State, error) {
	st := filter.State{
		Brand:   s.Brand,
		Model:   s.Model,
		Fact:    s.Fact,
		Country: s.Country,
		Source:  s.Source,
	}
	var err error
	if st.From, err = parseDate(s.FromDate); err != nil {
		return filter.State{}, fmt.Errorf("from_date: %w", err)
	}
	if st.To, err = parseDate(s.ToDate); err != nil {
		return filter.State{}, fmt.Errorf("to_date: %w", err)
	}
	return st, nil
}

// Decode parses a snapshot from its JSON form.
func Decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding selection: %w", err)
	}
	return s, nil
}

func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

func formatDate(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(dataset.DateLayout)
	return &s
}

func parseDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	return filter.ParseDate(*s)
}
