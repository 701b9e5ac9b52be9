package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// tabular is output that renders both as a grid and as a document.
type tabular struct {
	doc     any // json/yaml payload
	headers []string
	rows    [][]string
	footer  string   // printed under the table only
	align   []string // per column: "left" or "right"
}

func render(w io.Writer, format string, out tabular) error {
	switch format {
	case "json":
		return renderJSON(w, out.doc)
	case "yaml":
		return renderYAML(w, out.doc)
	case "csv":
		return renderCSV(w, out.headers, out.rows)
	default:
		return renderTable(w, out)
	}
}

func renderTable(w io.Writer, out tabular) error {
	if len(out.rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(out.headers))
	for i, h := range out.headers {
		header[i] = h
	}
	t.AppendHeader(header)

	var configs []table.ColumnConfig
	for i, a := range out.align {
		if a == "right" {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.SetColumnConfigs(configs)

	for _, r := range out.rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	t.Render()
	if out.footer != "" {
		_, _ = fmt.Fprintln(w, out.footer)
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderYAML goes through JSON so field names and key order match the
// JSON output.
func renderYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	plainStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plainStyle(c)
	}
}

func renderCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
