package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"filedesk/internal/model"
)

// FormatTable renders the per-column statistics of r as a plain-text table.
func FormatTable(r model.AnalysisResult) string {
	if r.Unavailable {
		return "analysis unavailable"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "columns total: %d\n", r.ColumnsTotal)
	sel := r.ColumnsSelected
	if sel == "" {
		sel = "all"
	}
	fmt.Fprintf(&b, "columns selected: %s\n", sel)
	if len(r.PerColumn) == 0 {
		b.WriteString("no numeric columns")
		return b.String()
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Sum", "Average", "Max"})
	for _, c := range r.PerColumn {
		t.AppendRow(table.Row{c.Column, num(c.Sum), num(c.Average), num(c.Max)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleLight)
	b.WriteString(t.Render())
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
