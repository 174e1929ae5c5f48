// Package filter implements the cascading option rules and the row
// predicate of the feedback dashboard. Everything here is a pure function of
// a read-only dataset and a selection state.
package filter

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/kalambet/fbdash/internal/dataset"
)

// The "select all" sentinel only exists at the wire boundary; inside the
// process it is the AllValues mode.
const (
	SelectAllValue = "select_all"
	SelectAllLabel = "Select All"
)

// Mode tells the three shapes a dropdown selection can take apart.
type Mode uint8

const (
	Unset Mode = iota
	AllValues
	SpecificValues
)

func (m Mode) String() string {
	switch m {
	case AllValues:
		return "all"
	case SpecificValues:
		return "specific"
	}
	return "unset"
}

// Selection is the value of one multi-select dropdown. The zero value is Unset.
type Selection struct {
	mode   Mode
	values []string
}

// None returns an Unset selection.
func None() Selection { return Selection{} }

// All returns the "select all" selection.
func All() Selection { return Selection{mode: AllValues} }

// Values returns a selection of specific values, dropping duplicates.
// With no values it is Unset.
func Values(vs ...string) Selection {
	if len(vs) == 0 {
		return Selection{}
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return Selection{mode: SpecificValues, values: out}
}

// FromList converts a dropdown value list as sent by a client. A list that
// contains the sentinel is AllValues whatever else it holds.
func FromList(vs []string) Selection {
	if slices.Contains(vs, SelectAllValue) {
		return All()
	}
	return Values(vs...)
}

func (s Selection) Mode() Mode { return s.mode }

// IsSet reports whether anything was chosen.
func (s Selection) IsSet() bool { return s.mode != Unset }

func (s Selection) IsAll() bool { return s.mode == AllValues }

// Values returns the specific values, or nil for Unset and AllValues.
func (s Selection) Values() []string { return slices.Clone(s.values) }

// List is the wire form: nil for Unset, the sentinel alone for AllValues.
func (s Selection) List() []string {
	switch s.mode {
	case AllValues:
		return []string{SelectAllValue}
	case SpecificValues:
		return slices.Clone(s.values)
	}
	return nil
}

// Matches reports whether v passes this selection as a row predicate.
// Unset and AllValues do not restrict; values absent from the data simply
// match nothing.
func (s Selection) Matches(v string) bool {
	if s.mode != SpecificValues {
		return true
	}
	return slices.Contains(s.values, v)
}

func (s Selection) Equal(o Selection) bool {
	return s.mode == o.mode && slices.Equal(s.values, o.values)
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var vs []string
	if err := json.Unmarshal(data, &vs); err != nil {
		return err
	}
	*s = FromList(vs)
	return nil
}

// State is the full filter configuration of one session. Zero From or To
// means no bound on that side.
type State struct {
	Brand   Selection
	Model   Selection
	Fact    Selection
	Country Selection
	Source  Selection
	From    time.Time
	To      time.Time
}

// Get returns the selection for a categorical field.
func (s State) Get(f dataset.Field) Selection {
	switch f {
	case dataset.FieldBrand:
		return s.Brand
	case dataset.FieldModel:
		return s.Model
	case dataset.FieldFact:
		return s.Fact
	case dataset.FieldCountry:
		return s.Country
	case dataset.FieldSource:
		return s.Source
	}
	return None()
}

// Set returns a copy of s with the selection for f replaced.
func (s State) Set(f dataset.Field, sel Selection) State {
	switch f {
	case dataset.FieldBrand:
		s.Brand = sel
	case dataset.FieldModel:
		s.Model = sel
	case dataset.FieldFact:
		s.Fact = sel
	case dataset.FieldCountry:
		s.Country = sel
	case dataset.FieldSource:
		s.Source = sel
	}
	return s
}

// WithDateDefaults fills unset date bounds, normally with the dataset's
// min and max date.
func (s State) WithDateDefaults(min, max time.Time) State {
	if s.From.IsZero() {
		s.From = min
	}
	if s.To.IsZero() {
		s.To = max
	}
	return s
}

func (s State) Equal(o State) bool {
	for _, f := range dataset.CategoricalFields {
		if !s.Get(f).Equal(o.Get(f)) {
			return false
		}
	}
	return s.From.Equal(o.From) && s.To.Equal(o.To)
}
