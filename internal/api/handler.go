package api

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kalambet/fbdash/internal/dataset"
	"github.com/kalambet/fbdash/internal/filter"
	"github.com/kalambet/fbdash/internal/selection"
)

const maxRequestBodySize = 1 << 20 // 1MB

// DefaultPageSize is the number of table rows per page.
const DefaultPageSize = 5

//go:embed web/index.html
var webFS embed.FS

var pageTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

// Deps holds dependencies for the dashboard handler.
type Deps struct {
	Dataset  *dataset.Dataset
	PageSize int
}

type dashboard struct {
	ds       *dataset.Dataset
	resolver *filter.Resolver
	pageSize int
	minDate  time.Time
	maxDate  time.Time
}

// NewDashboardHandler returns the HTTP surface of the dashboard: the page,
// the JSON API it calls and a health check. Any origin is allowed.
func NewDashboardHandler(deps Deps) http.Handler {
	d := &dashboard{
		ds:       deps.Dataset,
		resolver: filter.NewResolver(deps.Dataset),
		pageSize: deps.PageSize,
	}
	if d.pageSize < 1 {
		d.pageSize = DefaultPageSize
	}
	d.minDate, d.maxDate = deps.Dataset.DateRange()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", d.handleHealth)
	r.Get("/", d.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/meta", d.handleMeta)
		r.Post("/options", d.handleOptions)
		r.Post("/rows", d.handleRows)
		r.Post("/view", d.handleView)
	})

	return r
}

func (d *dashboard) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"dataset_id": d.ds.ID(),
		"rows":       d.ds.Len(),
	})
}

type dropdown struct {
	Field       dataset.Field
	Placeholder string
}

func (d *dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	fields := make([]string, 0, len(dataset.CategoricalFields))
	dropdowns := make([]dropdown, 0, len(dataset.CategoricalFields))
	for _, f := range dataset.CategoricalFields {
		fields = append(fields, string(f))
		dropdowns = append(dropdowns, dropdown{Field: f, Placeholder: Placeholders[f]})
	}

	data := map[string]any{
		"Title":      "Vehicle Feedback",
		"Dropdowns":  dropdowns,
		"Fields":     fields,
		"PageSize":   d.pageSize,
		"StorageKey": selection.StorageKey,
		"MinDate":    displayDate(d.minDate),
		"MaxDate":    displayDate(d.maxDate),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		slog.Error("rendering page", "error", err)
	}
}

// Meta describes the loaded dataset and the presentation constants.
type Meta struct {
	DatasetID    string                   `json:"dataset_id"`
	Rows         int                      `json:"rows"`
	MinDate      *string                  `json:"min_date"`
	MaxDate      *string                  `json:"max_date"`
	PageSize     int                      `json:"page_size"`
	SelectAll    filter.Option            `json:"select_all"`
	FactColors   map[string]string        `json:"fact_colors"`
	Placeholders map[dataset.Field]string `json:"placeholders"`
	StorageKey   string                   `json:"storage_key"`
}

func (d *dashboard) meta() Meta {
	snap := selection.FromState(filter.State{From: d.minDate, To: d.maxDate})
	return Meta{
		DatasetID:    d.ds.ID(),
		Rows:         d.ds.Len(),
		MinDate:      snap.FromDate,
		MaxDate:      snap.ToDate,
		PageSize:     d.pageSize,
		SelectAll:    filter.SelectAllOption,
		FactColors:   FactColors,
		Placeholders: Placeholders,
		StorageKey:   selection.StorageKey,
	}
}

func (d *dashboard) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.meta())
}

func (d *dashboard) handleOptions(w http.ResponseWriter, r *http.Request) {
	st, ok := d.decodeState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.resolver.Resolve(st))
}

func (d *dashboard) handleRows(w http.ResponseWriter, r *http.Request) {
	page, size, ok := d.pageParams(w, r)
	if !ok {
		return
	}
	st, ok := d.decodeState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, filter.Paginate(filter.Apply(d.ds.Records(), st), page, size))
}

// View is everything the page needs after a selection change.
type View struct {
	Selection selection.Snapshot `json:"selection"`
	Options   filter.Options     `json:"options"`
	Page      filter.Page        `json:"page"`
}

func (d *dashboard) handleView(w http.ResponseWriter, r *http.Request) {
	page, size, ok := d.pageParams(w, r)
	if !ok {
		return
	}
	st, ok := d.decodeState(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, View{
		Selection: selection.FromState(st),
		Options:   d.resolver.Resolve(st),
		Page:      filter.Paginate(filter.Apply(d.ds.Records(), st), page, size),
	})
}

// decodeState reads a persisted selection record from the request body. An
// empty body is an unset selection. Missing bounds take the dataset's range.
func (d *dashboard) decodeState(w http.ResponseWriter, r *http.Request) (filter.State, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()

	var snap selection.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return filter.State{}, false
	}

	st, err := snap.State()
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid selection: %v", err)
		return filter.State{}, false
	}
	return st.WithDateDefaults(d.minDate, d.maxDate), true
}

func (d *dashboard) pageParams(w http.ResponseWriter, r *http.Request) (page, size int, ok bool) {
	page, err := intParam(r, "page", 0)
	if err != nil || page < 0 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "page must be a non-negative integer")
		return 0, 0, false
	}
	size, err = intParam(r, "page_size", d.pageSize)
	if err != nil || size < 1 {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "page_size must be a positive integer")
		return 0, 0, false
	}
	return page, size, true
}

func intParam(r *http.Request, key string, defaultVal int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}

func displayDate(t time.Time) string {
	if t.IsZero() {
		return "DD-MM-YYYY"
	}
	return t.Format("02-01-2006")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
