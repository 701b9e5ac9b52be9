package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sheetdash/decoder"
	"github.com/spektr-org/sheetdash/schema"
)

// maxListedValues bounds the distinct values shown per column in a table.
const maxListedValues = 5

func newSchemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema FILE...",
		Short: "Show the unified columns of a batch",
		Long: `Load up to max_files spreadsheets and print their unified columns in
first-seen order, with inferred kind, distinct values and the files that
carry each column.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, report, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, schemaOutput(st.Schema, report))
		},
	}
}

func schemaOutput(u *schema.Unified, report *decoder.Report) tabular {
	out := tabular{
		doc: struct {
			Schema *schema.Unified  `json:"schema"`
			Report *decoder.Report `json:"report"`
		}{u, report},
		headers: []string{"Header", "Kind", "Distinct", "Filled", "Cardinality", "Sources", "Values"},
		align:   []string{"left", "left", "right", "right"},
	}
	for _, c := range u.Columns {
		out.rows = append(out.rows, []string{
			c.Header,
			string(c.Kind),
			strconv.Itoa(c.DistinctCount),
			strconv.Itoa(c.FilledCount),
			c.CardinalityHint,
			strings.Join(c.Sources, ", "),
			listValues(u.DistinctValues[c.Header]),
		})
	}
	if suggested := schema.SuggestChartColumns(u); len(suggested) > 0 {
		out.footer = "Chart columns: " + strings.Join(suggested, ", ")
	}
	return out
}

func listValues(vals []string) string {
	if len(vals) <= maxListedValues {
		return strings.Join(vals, ", ")
	}
	return strings.Join(vals[:maxListedValues], ", ") + ", …"
}
