package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kalambet/fbdash/internal/api"
	"github.com/kalambet/fbdash/internal/config"
	"github.com/kalambet/fbdash/internal/dataset"
	"github.com/kalambet/fbdash/internal/filter"
	"github.com/kalambet/fbdash/internal/selection"
	"github.com/kalambet/fbdash/internal/storage"
)

const defaultProfile = "default"

// --- query ---

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Filter the feedback rows and print one page",
	Long: `Filter the feedback rows and print one page.

The profile's last selection is restored first; flags replace individual
fields and the result is saved back. Pass select_all to pick every value of
a field, or an empty value to clear it.

Examples:
  fbdash query --brand Volvo --model XC60,XC90
  fbdash query --brand select_all --from 2023-01-01 --to 2023-03-31
  fbdash query --page 2 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelectionCommand(cmd, printRows)
	},
}

// --- options ---

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the selectable values of every filter",
	Long: `Print the selectable values of every filter for the profile's selection.

Flags override the restored selection the same way as in "fbdash query".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSelectionCommand(cmd, printOptions)
	},
}

// --- profiles ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List saved selection profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		return listProfiles(cmd.OutOrStdout(), store)
	},
}

func init() {
	for _, c := range []*cobra.Command{queryCmd, optionsCmd} {
		addSelectionFlags(c.Flags())
	}
	queryCmd.Flags().Int("page", 1, "page number, starting at 1")
}

func addSelectionFlags(fs *pflag.FlagSet) {
	for _, f := range dataset.CategoricalFields {
		fs.StringSlice(string(f), nil, fmt.Sprintf("%s values (comma-separated, %s for all)", f, filter.SelectAllValue))
	}
	fs.String("from", "", "inclusive start date, YYYY-MM-DD (empty for the first date)")
	fs.String("to", "", "inclusive end date, YYYY-MM-DD (empty for the last date)")
	fs.String("profile", defaultProfile, "name of the saved selection to use")
	fs.Bool("json", false, "print JSON")
}

// applyFlagOverrides replaces the fields of st whose flags were given.
func applyFlagOverrides(fs *pflag.FlagSet, st filter.State) (filter.State, error) {
	for _, f := range dataset.CategoricalFields {
		name := string(f)
		if !fs.Changed(name) {
			continue
		}
		vals, err := fs.GetStringSlice(name)
		if err != nil {
			return st, err
		}
		st = st.Set(f, filter.FromList(compact(vals)))
	}

	for _, b := range []struct {
		name string
		dst  *time.Time
	}{{"from", &st.From}, {"to", &st.To}} {
		if !fs.Changed(b.name) {
			continue
		}
		raw, _ := fs.GetString(b.name)
		if raw == "" {
			*b.dst = time.Time{}
			continue
		}
		t, err := filter.ParseDate(raw)
		if err != nil {
			return st, fmt.Errorf("--%s: %w", b.name, err)
		}
		*b.dst = t
	}
	return st, nil
}

func compact(vals []string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// profileKey namespaces a profile under the browser storage key.
func profileKey(profile string) string {
	return selection.StorageKey + "/" + profile
}

type session struct {
	ds    *dataset.Dataset
	state filter.State
	flags *pflag.FlagSet
	cfg   config.Config
}

type renderFunc func(w io.Writer, s session) error

func runSelectionCommand(cmd *cobra.Command, render renderFunc) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	ds, err := loadDataset(cfg)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	return runSelection(cmd.OutOrStdout(), cmd.Flags(), cfg, ds, store, render)
}

// runSelection restores the profile's selection, applies flag overrides,
// saves the result and renders it.
func runSelection(w io.Writer, fs *pflag.FlagSet, cfg config.Config, ds *dataset.Dataset, store selection.Store, render renderFunc) error {
	profile, _ := fs.GetString("profile")
	if profile == "" {
		profile = defaultProfile
	}

	minDate, maxDate := ds.DateRange()
	p := selection.NewPersister(store, profileKey(profile), minDate, maxDate)

	st, _, err := p.Load()
	if err != nil {
		return err
	}
	if st, err = applyFlagOverrides(fs, st); err != nil {
		return err
	}
	st = st.WithDateDefaults(minDate, maxDate)

	if _, err := p.Save(st); err != nil {
		return err
	}

	return render(w, session{ds: ds, state: st, flags: fs, cfg: cfg})
}

func printRows(w io.Writer, s session) error {
	pageNum, _ := s.flags.GetInt("page")
	page := filter.Paginate(filter.Apply(s.ds.Records(), s.state), pageNum-1, s.cfg.UI.PageSize)

	if asJSON, _ := s.flags.GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Selection selection.Snapshot `json:"selection"`
			Page      filter.Page        `json:"page"`
		}{selection.FromState(s.state), page})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BRAND\tMODEL\tFACT\tFEEDBACK")
	for _, r := range page.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Brand, r.Model, r.Fact, r.Feedback)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if page.PageCount == 0 {
		fmt.Fprintln(w, colorize(colorCyan, "no rows"))
		return nil
	}
	fmt.Fprintln(w, colorize(colorCyan, fmt.Sprintf("page %d/%d (%d rows)", page.Page+1, page.PageCount, page.Total)))
	return nil
}

func printOptions(w io.Writer, s session) error {
	opts := filter.NewResolver(s.ds).Resolve(s.state)

	if asJSON, _ := s.flags.GetBool("json"); asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	}

	lists := map[dataset.Field][]filter.Option{
		dataset.FieldBrand:   opts.Brand,
		dataset.FieldModel:   opts.Model,
		dataset.FieldFact:    opts.Fact,
		dataset.FieldCountry: opts.Country,
		dataset.FieldSource:  opts.Source,
	}
	for _, f := range dataset.CategoricalFields {
		sel := s.state.Get(f)
		fmt.Fprintln(w, colorize(colorBold, api.Placeholders[f]+":"))
		if len(lists[f]) == 0 {
			fmt.Fprintln(w, "    (none)")
			continue
		}
		for _, o := range lists[f] {
			mark := " "
			if (o.Value == filter.SelectAllValue && sel.IsAll()) || (o.Value != filter.SelectAllValue && sel.Mode() == filter.SpecificValues && sel.Matches(o.Value)) {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s\n", mark, o.Label)
		}
	}

	fmt.Fprintf(w, "%s %s .. %s\n", colorize(colorBold, "Dates:"),
		s.state.From.Format(dataset.DateLayout), s.state.To.Format(dataset.DateLayout))
	return nil
}

func listProfiles(w io.Writer, store *storage.Store) error {
	saved, err := store.ListSelections()
	if err != nil {
		return err
	}
	prefix := profileKey("")
	if len(saved) == 0 {
		fmt.Fprintln(w, "no saved profiles")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSAVED")
	for _, s := range saved {
		name, ok := strings.CutPrefix(s.Key, prefix)
		if !ok {
			name = filepath.Base(s.Key)
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, s.SavedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
