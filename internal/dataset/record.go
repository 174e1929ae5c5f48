package dataset

import (
	"encoding/json"
	"time"
)

// DateLayout is the ISO layout used when dates leave the process.
const DateLayout = "2006-01-02"

// Field names a categorical column of the feedback table.
type Field string

const (
	FieldBrand   Field = "brand"
	FieldModel   Field = "model"
	FieldFact    Field = "fact"
	FieldCountry Field = "country"
	FieldSource  Field = "source"
)

// CategoricalFields lists the filterable columns in cascade order.
var CategoricalFields = []Field{FieldBrand, FieldModel, FieldFact, FieldCountry, FieldSource}

// Record is one row of the feedback table.
type Record struct {
	Index    int
	Brand    string
	Model    string
	Fact     string
	Country  string
	Source   string
	Feedback string
	Date     time.Time
}

// Get returns the value of a categorical field. Unknown fields yield "".
func (r Record) Get(f Field) string {
	switch f {
	case FieldBrand:
		return r.Brand
	case FieldModel:
		return r.Model
	case FieldFact:
		return r.Fact
	case FieldCountry:
		return r.Country
	case FieldSource:
		return r.Source
	}
	return ""
}

type recordJSON struct {
	Index    int    `json:"index"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Fact     string `json:"fact"`
	Country  string `json:"country"`
	Source   string `json:"source"`
	Feedback string `json:"feedback"`
	Date     string `json:"date"`
}

// MarshalJSON writes the date at day granularity.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Index:    r.Index,
		Brand:    r.Brand,
		Model:    r.Model,
		Fact:     r.Fact,
		Country:  r.Country,
		Source:   r.Source,
		Feedback: r.Feedback,
		Date:     r.Date.Format(DateLayout),
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	*r = Record{
		Index:    raw.Index,
		Brand:    raw.Brand,
		Model:    raw.Model,
		Fact:     raw.Fact,
		Country:  raw.Country,
		Source:   raw.Source,
		Feedback: raw.Feedback,
		Date:     d,
	}
	return nil
}
