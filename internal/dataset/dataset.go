package dataset

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Dataset is the read-only feedback table. It is built once and never
// mutated, so concurrent readers need no locking.
type Dataset struct {
	id       string
	records  []Record
	minDate  time.Time
	maxDate  time.Time
	distinct map[Field][]string
}

// New builds a Dataset from records in file order. Index is assigned here as
// the 1-based position; any Index already set on the input is ignored.
func New(records []Record) *Dataset {
	d := &Dataset{
		id:       uuid.New().String(),
		records:  make([]Record, len(records)),
		distinct: make(map[Field][]string, len(CategoricalFields)),
	}
	for i, r := range records {
		r.Index = i + 1
		d.records[i] = r
		if i == 0 || r.Date.Before(d.minDate) {
			d.minDate = r.Date
		}
		if i == 0 || r.Date.After(d.maxDate) {
			d.maxDate = r.Date
		}
	}
	for _, f := range CategoricalFields {
		d.distinct[f] = distinctValues(d.records, f)
	}
	return d
}

func distinctValues(records []Record, f Field) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		v := r.Get(f)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ID identifies this load of the dataset. A restarted process gets a new ID.
func (d *Dataset) ID() string { return d.id }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns a copy of all records in file order.
func (d *Dataset) Records() []Record { return slices.Clone(d.records) }

// Each calls fn for every record in file order until fn returns false.
func (d *Dataset) Each(fn func(Record) bool) {
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// DateRange returns the earliest and latest record dates. Both are zero for
// an empty dataset.
func (d *Dataset) DateRange() (min, max time.Time) {
	return d.minDate, d.maxDate
}

// Distinct returns the distinct values of a categorical field in order of
// first occurrence.
func (d *Dataset) Distinct(f Field) []string {
	return slices.Clone(d.distinct[f])
}
