package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable renders rows under headers with a rounded border. Columns
// listed in rightAligned (zero-based) are right-aligned; everything else is
// left-aligned.
func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}
	rightSet := make(map[int]struct{}, len(rightAligned))
	for _, col := range rightAligned {
		rightSet[col] = struct{}{}
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, h := range headers {
		header[i] = h
		align := text.AlignLeft
		if _, ok := rightSet[i]; ok {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
