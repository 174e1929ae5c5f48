package filter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/fbdash/internal/dataset"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// twoRows is the two-row scenario used throughout the dashboard docs.
func twoRows() *dataset.Dataset {
	return dataset.New([]dataset.Record{
		{Brand: "A", Model: "X", Fact: "Engine", Country: "US", Source: "Web", Feedback: "first", Date: day(2023, 1, 10)},
		{Brand: "B", Model: "Y", Fact: "Brake", Country: "UK", Source: "App", Feedback: "second", Date: day(2023, 2, 15)},
	})
}

func fleet() *dataset.Dataset {
	return dataset.New([]dataset.Record{
		{Brand: "Volvo", Model: "XC60", Fact: "Engine", Country: "SE", Source: "Web", Date: day(2023, 1, 1)},
		{Brand: "Volvo", Model: "XC90", Fact: "Seats", Country: "DE", Source: "App", Date: day(2023, 1, 5)},
		{Brand: "BMW", Model: "X5", Fact: "Engine", Country: "DE", Source: "Forum", Date: day(2023, 2, 1)},
		{Brand: "BMW", Model: "X3", Fact: "Brake", Country: "US", Source: "Web", Date: day(2023, 2, 10)},
		{Brand: "Volvo", Model: "XC60", Fact: "Brake", Country: "US", Source: "Dealer", Date: day(2023, 3, 1)},
		{Brand: "Audi", Model: "Q5", Fact: "Steering", Country: "SE", Source: "App", Date: day(2023, 3, 20)},
	})
}

func values(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func indexes(recs []dataset.Record) []int {
	out := make([]int, len(recs))
	for i, r := range recs {
		out[i] = r.Index
	}
	return out
}

func TestScenario_BrandFilter(t *testing.T) {
	ds := twoRows()
	min, max := ds.DateRange()

	got := Apply(ds.Records(), State{Brand: Values("A"), From: min, To: max})

	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Feedback)
}

func TestScenario_SelectAllBrandListsAllModels(t *testing.T) {
	r := NewResolver(twoRows())

	opts := r.ModelOptions(All())

	assert.Equal(t, []string{SelectAllValue, "X", "Y"}, values(opts))
}

func TestScenario_UnsetCountryEmptiesSources(t *testing.T) {
	r := NewResolver(twoRows())

	opts := r.SourceOptions(Values("X"), Values("Engine"), FromList([]string{}))

	assert.Empty(t, opts)
}

func TestResolve_Cascade(t *testing.T) {
	r := NewResolver(fleet())

	opts := r.Resolve(State{
		Brand:   Values("Volvo"),
		Model:   Values("XC60"),
		Fact:    Values("Brake", "Engine"),
		Country: Values("US"),
	})

	assert.Equal(t, []string{SelectAllValue, "Volvo", "BMW", "Audi"}, values(opts.Brand))
	assert.Equal(t, []string{SelectAllValue, "XC60", "XC90"}, values(opts.Model))
	assert.Equal(t, []string{SelectAllValue, "Engine", "Brake"}, values(opts.Fact))
	assert.Equal(t, []string{SelectAllValue, "SE", "US"}, values(opts.Country))
	// Only the XC60/Brake/US row qualifies for sources.
	assert.Equal(t, []string{SelectAllValue, "Dealer"}, values(opts.Source))
}

func TestResolve_FactDependsOnlyOnModel(t *testing.T) {
	r := NewResolver(fleet())

	// Brand is ignored by the fact rule even when it contradicts the model.
	opts := r.Resolve(State{Brand: Values("Audi"), Model: Values("X5")})

	assert.Equal(t, []string{SelectAllValue, "Engine"}, values(opts.Fact))
}

func TestResolve_SelectAllWidensWholeDomain(t *testing.T) {
	r := NewResolver(fleet())

	// "select all" on fact ignores the model constraint for countries.
	opts := r.CountryOptions(Values("Q5"), All())

	assert.Equal(t, []string{SelectAllValue, "SE", "DE", "US"}, values(opts))
}

func TestResolve_UnsetUpstreamEmptiesEverythingBelow(t *testing.T) {
	r := NewResolver(fleet())

	opts := r.Resolve(State{})

	assert.Len(t, opts.Brand, 4)
	assert.Empty(t, opts.Model)
	assert.Empty(t, opts.Fact)
	assert.Empty(t, opts.Country)
	assert.Empty(t, opts.Source)
	assert.NotNil(t, opts.Model)
}

func TestResolve_StaleUpstreamYieldsOnlySentinel(t *testing.T) {
	r := NewResolver(fleet())

	opts := r.ModelOptions(Values("Tesla"))

	assert.Equal(t, []Option{SelectAllOption}, opts)
}

func TestResolve_SelectAllIgnoresDateRange(t *testing.T) {
	r := NewResolver(fleet())
	narrow := State{Brand: All(), From: day(2023, 3, 20), To: day(2023, 3, 20)}

	opts := r.Resolve(narrow)

	assert.Equal(t, append([]string{SelectAllValue}, fleet().Distinct(dataset.FieldModel)...), values(opts.Model))
}

func TestApply_SubsetAndOrderPreserving(t *testing.T) {
	ds := fleet()
	recs := ds.Records()

	got := Apply(recs, State{Fact: Values("Engine", "Brake")})

	assert.Equal(t, []int{1, 3, 4, 5}, indexes(got))
}

func TestApply_Idempotent(t *testing.T) {
	recs := fleet().Records()
	st := State{Brand: Values("Volvo"), Country: Values("US", "SE"), From: day(2023, 1, 1), To: day(2023, 12, 31)}

	first := Apply(recs, st)
	second := Apply(recs, st)

	assert.Equal(t, first, second)
	assert.Equal(t, first, Apply(first, st))
}

func TestApply_SelectAllAndUnsetDoNotFilter(t *testing.T) {
	recs := fleet().Records()

	assert.Len(t, Apply(recs, State{}), len(recs))
	assert.Len(t, Apply(recs, State{Brand: All(), Model: All(), Fact: All(), Country: All(), Source: All()}), len(recs))
	// The sentinel wins over other values in the same list.
	assert.Len(t, Apply(recs, State{Brand: FromList([]string{"Audi", SelectAllValue})}), len(recs))
}

func TestApply_Monotonic(t *testing.T) {
	recs := fleet().Records()

	wide := len(Apply(recs, State{Brand: Values("Volvo", "BMW")}))
	narrow := len(Apply(recs, State{Brand: Values("Volvo")}))
	fromAll := len(Apply(recs, State{Brand: All()}))

	assert.LessOrEqual(t, narrow, wide)
	assert.LessOrEqual(t, wide, fromAll)
}

func TestApply_DateBoundsInclusive(t *testing.T) {
	recs := fleet().Records()

	got := Apply(recs, State{From: day(2023, 1, 5), To: day(2023, 2, 10)})

	assert.Equal(t, []int{2, 3, 4}, indexes(got))
}

func TestApply_DateBoundWithTimeOfDay(t *testing.T) {
	recs := fleet().Records()

	got := Apply(recs, State{From: day(2023, 3, 20).Add(15 * time.Hour), To: day(2023, 3, 20).Add(time.Hour)})

	assert.Equal(t, []int{6}, indexes(got))
}

func TestApply_ZeroBoundsAreOpen(t *testing.T) {
	recs := fleet().Records()

	assert.Len(t, Apply(recs, State{To: day(2023, 1, 31)}), 2)
	assert.Len(t, Apply(recs, State{From: day(2023, 3, 1)}), 2)
}

func TestApply_StaleValuesMatchNothing(t *testing.T) {
	got := Apply(fleet().Records(), State{Model: Values("Model T")})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectionJSON(t *testing.T) {
	cases := []struct {
		in   string
		mode Mode
		out  string
	}{
		{`null`, Unset, `null`},
		{`[]`, Unset, `null`},
		{`["select_all"]`, AllValues, `["select_all"]`},
		{`["A","select_all"]`, AllValues, `["select_all"]`},
		{`["A","B","A"]`, SpecificValues, `["A","B"]`},
	}
	for _, tc := range cases {
		var s Selection
		require.NoError(t, json.Unmarshal([]byte(tc.in), &s), tc.in)
		assert.Equal(t, tc.mode, s.Mode(), tc.in)

		b, err := json.Marshal(s)
		require.NoError(t, err)
		assert.JSONEq(t, tc.out, string(b), tc.in)
	}
}

func TestSelectionJSON_RejectsScalar(t *testing.T) {
	var s Selection
	assert.Error(t, json.Unmarshal([]byte(`"A"`), &s))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2023-01-10", "2023-01-10T00:00:00", "2023-01-10T13:45:00Z"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, day(2023, 1, 10), got, in)
	}

	_, err := ParseDate("10-01-2023")
	assert.Error(t, err)
}

func TestStateWithDateDefaults(t *testing.T) {
	st := State{To: day(2023, 2, 1)}.WithDateDefaults(day(2023, 1, 1), day(2023, 12, 31))

	assert.Equal(t, day(2023, 1, 1), st.From)
	assert.Equal(t, day(2023, 2, 1), st.To)
}
