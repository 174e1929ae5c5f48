package filter

import "github.com/kalambet/fbdash/internal/dataset"

// Option is one dropdown entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SelectAllOption is always the first entry of a non-empty option list.
var SelectAllOption = Option{Label: SelectAllLabel, Value: SelectAllValue}

// Options holds the option list of every dropdown.
type Options struct {
	Brand   []Option `json:"brand"`
	Model   []Option `json:"model"`
	Fact    []Option `json:"fact"`
	Country []Option `json:"country"`
	Source  []Option `json:"source"`
}

// rule derives the options of target from the selections of upstream.
type rule struct {
	target   dataset.Field
	upstream []dataset.Field
}

var cascade = []rule{
	{target: dataset.FieldModel, upstream: []dataset.Field{dataset.FieldBrand}},
	{target: dataset.FieldFact, upstream: []dataset.Field{dataset.FieldModel}},
	{target: dataset.FieldCountry, upstream: []dataset.Field{dataset.FieldModel, dataset.FieldFact}},
	{target: dataset.FieldSource, upstream: []dataset.Field{dataset.FieldModel, dataset.FieldFact, dataset.FieldCountry}},
}

// Resolver computes dropdown option lists over a read-only dataset.
type Resolver struct {
	ds *dataset.Dataset
}

func NewResolver(ds *dataset.Dataset) *Resolver {
	return &Resolver{ds: ds}
}

// BrandOptions lists every brand; brand has no upstream dropdown.
func (r *Resolver) BrandOptions() []Option {
	return withSelectAll(r.ds.Distinct(dataset.FieldBrand))
}

func (r *Resolver) ModelOptions(brand Selection) []Option {
	return r.resolve(cascade[0], State{Brand: brand})
}

func (r *Resolver) FactOptions(model Selection) []Option {
	return r.resolve(cascade[1], State{Model: model})
}

func (r *Resolver) CountryOptions(model, fact Selection) []Option {
	return r.resolve(cascade[2], State{Model: model, Fact: fact})
}

func (r *Resolver) SourceOptions(model, fact, country Selection) []Option {
	return r.resolve(cascade[3], State{Model: model, Fact: fact, Country: country})
}

// Resolve computes every option list for st. Date bounds play no part.
func (r *Resolver) Resolve(st State) Options {
	return Options{
		Brand:   r.BrandOptions(),
		Model:   r.resolve(cascade[0], st),
		Fact:    r.resolve(cascade[1], st),
		Country: r.resolve(cascade[2], st),
		Source:  r.resolve(cascade[3], st),
	}
}

// resolve applies one rule. An unset upstream empties the list; "select all"
// anywhere upstream widens it to the whole column; otherwise only rows
// matching every upstream selection contribute.
func (r *Resolver) resolve(ru rule, st State) []Option {
	anyAll := false
	for _, f := range ru.upstream {
		sel := st.Get(f)
		if !sel.IsSet() {
			return []Option{}
		}
		if sel.IsAll() {
			anyAll = true
		}
	}
	if anyAll {
		return withSelectAll(r.ds.Distinct(ru.target))
	}

	seen := make(map[string]struct{})
	var values []string
	r.ds.Each(func(rec dataset.Record) bool {
		for _, f := range ru.upstream {
			if !st.Get(f).Matches(rec.Get(f)) {
				return true
			}
		}
		v := rec.Get(ru.target)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			values = append(values, v)
		}
		return true
	})
	return withSelectAll(values)
}

func withSelectAll(values []string) []Option {
	out := make([]Option, 0, len(values)+1)
	out = append(out, SelectAllOption)
	for _, v := range values {
		out = append(out, Option{Label: v, Value: v})
	}
	return out
}
