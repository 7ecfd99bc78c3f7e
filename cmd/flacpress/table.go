package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// consoleTable accumulates rows for a rounded terminal table. Count columns
// are right-aligned by 1-based position; everything else stays left-aligned.
type consoleTable struct {
	writer table.Writer
	width  int
}

func newConsoleTable(headers ...string) *consoleTable {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	return &consoleTable{writer: tw, width: len(headers)}
}

func (t *consoleTable) rightAlign(columns ...int) *consoleTable {
	configs := make([]table.ColumnConfig, 0, len(columns))
	for _, col := range columns {
		configs = append(configs, table.ColumnConfig{
			Number:      col,
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		})
	}
	t.writer.SetColumnConfigs(configs)
	return t
}

func (t *consoleTable) addRow(cells ...string) {
	row := make(table.Row, t.width)
	for i := 0; i < t.width && i < len(cells); i++ {
		row[i] = cells[i]
	}
	t.writer.AppendRow(row)
}

func (t *consoleTable) render() string {
	return t.writer.Render()
}
