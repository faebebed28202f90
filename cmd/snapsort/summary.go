package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"snapsort/internal/organizer"
)

const summaryDurationUnit = 10 * time.Millisecond

// renderSummary produces the end-of-run report: a rounded table on a
// terminal, plain key=value lines when output is piped.
func renderSummary(summary organizer.Summary) string {
	rows := summaryRows(summary)
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		parts := make([]string, 0, len(rows))
		for _, row := range rows {
			key := strings.ReplaceAll(strings.ToLower(row[0]), " ", "_")
			parts = append(parts, fmt.Sprintf("%s=%s", key, row[1]))
		}
		return strings.Join(parts, " ")
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func summaryRows(summary organizer.Summary) [][]string {
	rows := [][]string{
		{"Run", summary.RunID},
		{"Scanned", fmt.Sprintf("%d", summary.Scanned)},
		{"Moved", fmt.Sprintf("%d", summary.Moved)},
		{"Copied", fmt.Sprintf("%d", summary.Copied)},
		{"Renamed", fmt.Sprintf("%d", summary.Renamed)},
		{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
		{"Unknown", fmt.Sprintf("%d", summary.Unknown)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
		{"Duration", summary.Duration.Round(summaryDurationUnit).String()},
	}
	if summary.DryRun {
		rows = append(rows, []string{"Dry run", "yes"})
	}
	if summary.DirsRemoved > 0 {
		rows = append(rows, []string{"Dirs removed", fmt.Sprintf("%d", summary.DirsRemoved)})
	}
	return rows
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
