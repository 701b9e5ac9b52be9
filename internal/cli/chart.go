package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spektr-org/sheetdash/engine"
)

func newChartCommand(a *app) *cobra.Command {
	var (
		ctl  controls
		req  engine.ChartRequest
		mode string
	)

	cmd := &cobra.Command{
		Use:   "chart FILE...",
		Short: "Aggregate filtered rows into chart data",
		Long: `Group the filtered rows by --column and measure each group over
--aggregate. With --secondary, inner groups become series and missing
pairs are zero. Prints labels and series; drawing is left to the caller.`,
		Example: `  sheetdash chart sales.xlsx --column Region --aggregate Units --mode pie
  sheetdash chart sales.xlsx --column Region --aggregate Units --secondary Team --mode stacked-bar`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewMode, err := engine.ParseViewMode(mode)
			if err != nil {
				return err
			}
			if !viewMode.IsChart() {
				return fmt.Errorf("%q is not a chart mode: %w", mode, engine.ErrUnknownViewMode)
			}

			st, _, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			if st, err = ctl.apply(st); err != nil {
				return err
			}

			res, err := st.Execute(viewMode, req, a.engineOpts...)
			if err != nil {
				return err
			}
			if res.Type == "placeholder" && a.cfg.Output == "table" {
				_, err := cmd.OutOrStdout().Write([]byte(res.Reply + "\n"))
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output, chartOutput(req, res))
		},
	}

	cmd.Flags().StringVar(&req.Column, "column", "", "Category column (labels)")
	cmd.Flags().StringVar(&req.Aggregate, "aggregate", "", "Measured column")
	cmd.Flags().StringVar(&req.Secondary, "secondary", "", "Inner grouping column (series)")
	cmd.Flags().StringVar(&mode, "mode", string(engine.ModeBar), "View mode (pie|doughnut|bar|stacked-bar|horizontal-bar)")
	ctl.register(cmd)

	return cmd
}

func chartOutput(req engine.ChartRequest, res *engine.Result) tabular {
	out := tabular{doc: res}
	chart := res.Chart
	if chart == nil {
		// placeholder: one message cell for grid formats
		out.headers = []string{"message"}
		out.rows = [][]string{{res.Reply}}
		return out
	}

	out.headers = []string{req.Column}
	out.align = []string{"left"}
	for _, s := range chart.Series {
		out.headers = append(out.headers, s.Name)
		out.align = append(out.align, "right")
	}
	for i, label := range chart.Labels {
		row := []string{label}
		for _, s := range chart.Series {
			row = append(row, strconv.FormatFloat(s.Values[i], 'f', -1, 64))
		}
		out.rows = append(out.rows, row)
	}
	out.footer = res.Reply
	return out
}
