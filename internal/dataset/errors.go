package dataset

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is wrapped by DataLoadError when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// DataLoadError reports a source file that could not be read or decoded.
type DataLoadError struct {
	Path string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading dataset: %v", e.Err)
	}
	return fmt.Sprintf("loading dataset %s: %v", e.Path, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// DateParseError reports a row whose date does not match the configured layout.
// Line is the 1-based data line, not counting the header.
type DateParseError struct {
	Line  int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("line %d: invalid date %q: %v", e.Line, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }
