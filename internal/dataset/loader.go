package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultDateLayout accepts day-month-year with one- or two-digit day and month.
const DefaultDateLayout = "2-1-2006"

// DefaultEncoding matches the encoding the feedback exports are produced in.
const DefaultEncoding = "latin1"

var requiredColumns = []string{"brand", "model", "fact", "country", "source", "feedback", "date"}

// LoadOptions controls how the source table is decoded.
type LoadOptions struct {
	// Encoding is an IANA charset name. Empty or "utf-8" reads the bytes as is.
	Encoding string
	// DateLayout is a Go time layout for the date column.
	DateLayout string
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	return o
}

// Load reads the feedback table at path. Any failure to open, decode or
// parse the file is a *DataLoadError; the first malformed date aborts the
// load with a *DateParseError.
func Load(path string, opts LoadOptions) (*Dataset, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Parse(f, opts)
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) && dle.Path == "" {
			dle.Path = path
		}
		return nil, err
	}
	slog.Info("dataset loaded", "path", path, "rows", ds.Len(), "duration", time.Since(start))
	return ds, nil
}

// Parse reads a feedback table from r.
func Parse(r io.Reader, opts LoadOptions) (*Dataset, error) {
	opts = opts.withDefaults()

	dec, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, &DataLoadError{Err: err}
	}
	if dec != nil {
		r = dec.NewDecoder().Reader(r)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataLoadError{Err: errors.New("empty file: header row expected")}
	}
	if err != nil {
		return nil, &DataLoadError{Err: fmt.Errorf("reading header: %w", err)}
	}
	cols, err := columnIndexes(header)
	if err != nil {
		return nil, &DataLoadError{Err: err}
	}

	var records []Record
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Err: fmt.Errorf("reading row: %w", err)}
		}
		line++

		get := func(name string) string {
			i := cols[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		raw := strings.TrimSpace(get("date"))
		date, err := time.Parse(opts.DateLayout, raw)
		if err != nil {
			return nil, &DateParseError{Line: line, Value: raw, Err: err}
		}

		records = append(records, Record{
			Brand:    get("brand"),
			Model:    get("model"),
			Fact:     get("fact"),
			Country:  get("country"),
			Source:   get("source"),
			Feedback: get("feedback"),
			Date:     date,
		})
	}

	return New(records), nil
}

func columnIndexes(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return cols, nil
}

// lookupEncoding returns nil for UTF-8 input.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "cp1252", "windows-1252":
		return charmap.Windows1252, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}
