package filter

import "github.com/kalambet/fbdash/internal/dataset"

// Page is one window of a filtered row set. Page indexes start at 0.
type Page struct {
	Rows      []dataset.Record `json:"rows"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	PageCount int              `json:"page_count"`
}

// Paginate cuts page number page out of rows. A page past the end is clamped
// to the last page; an empty row set yields page 0 with no rows.
func Paginate(rows []dataset.Record, page, size int) Page {
	if size < 1 {
		size = 1
	}
	count := (len(rows) + size - 1) / size
	if page >= count {
		page = count - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * size
	end := min(start+size, len(rows))
	out := make([]dataset.Record, 0, end-start)
	out = append(out, rows[start:end]...)

	return Page{
		Rows:      out,
		Total:     len(rows),
		Page:      page,
		PageSize:  size,
		PageCount: count,
	}
}
