package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sheetdash/engine"
	"github.com/spektr-org/sheetdash/schema"
)

// controls holds the filter and visibility flags shared by rows and chart.
type controls struct {
	filters []string
	hidden  []string
}

func (c *controls) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&c.filters, "filter", "f", nil, "Filter a column: HEADER=VALUE (repeatable)")
	cmd.Flags().StringArrayVar(&c.hidden, "hide", nil, "Hide a column and disable its filter (repeatable)")
}

// apply runs the flag controls as state transitions. Unknown headers are
// an error here rather than silently ignored.
func (c *controls) apply(st *schema.State) (*schema.State, error) {
	for _, f := range c.filters {
		header, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --filter %q: want HEADER=VALUE", f)
		}
		if !st.Schema.HasHeader(header) {
			return nil, fmt.Errorf("unknown header %q", header)
		}
		st = st.WithFilter(header, value)
	}
	for _, h := range c.hidden {
		if !st.Schema.HasHeader(h) {
			return nil, fmt.Errorf("unknown header %q", h)
		}
		st = st.WithVisibility(h, false)
	}
	return st, nil
}

func newRowsCommand(a *app) *cobra.Command {
	var ctl controls

	cmd := &cobra.Command{
		Use:   "rows FILE...",
		Short: "Print the filtered rows of a batch",
		Long: `Load up to max_files spreadsheets and print the rows that pass every
--filter, with the file each row came from. Hidden columns are neither
shown nor filtered.`,
		Example: `  sheetdash rows q1.xlsx q2.csv --filter Region=north --hide Notes`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			if st, err = ctl.apply(st); err != nil {
				return err
			}

			res, err := st.Execute(engine.ModeTable, engine.ChartRequest{}, a.engineOpts...)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, rowsOutput(res))
		},
	}
	ctl.register(cmd)
	return cmd
}

func rowsOutput(res *engine.Result) tabular {
	t := res.Table
	out := tabular{
		doc:     res,
		headers: []string{"Source"},
		align:   []string{"left"},
	}
	for _, c := range t.Columns {
		out.headers = append(out.headers, c.Label)
		out.align = append(out.align, c.Align)
	}
	for i, r := range t.Rows {
		out.rows = append(out.rows, append([]string{t.Sources[i]}, r...))
	}
	if t.Summary != nil {
		out.footer = t.Summary.Label
	}
	return out
}
