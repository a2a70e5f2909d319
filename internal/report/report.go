// Package report renders profiles, discovered keys, and stored runs as
// terminal tables.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"keyscout/internal/profile"
	"keyscout/internal/storage"
)

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

// ProfileTable renders per-column statistics in schema order.
func ProfileTable(profiles []profile.Column) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		temporal := ""
		if p.IsTemporal {
			temporal = "yes"
		}
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(p.DistinctCount),
			fmt.Sprintf("%.1f%%", p.DistinctRatio*100),
			fmt.Sprintf("%.1f%%", p.NullRatio*100),
			fmt.Sprintf("%.2f", p.NameScore),
			temporal,
		})
	}
	return renderTable(
		[]string{"column", "distinct", "distinct %", "null %", "name score", "temporal"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

// KeysTable renders discovered key combinations in reporting order.
func KeysTable(keys [][]string) string {
	rows := make([][]string, 0, len(keys))
	for i, key := range keys {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(len(key)),
			strings.Join(key, " + "),
		})
	}
	return renderTable(
		[]string{"#", "size", "columns"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft},
	)
}

// RunsTable renders stored runs, newest first as returned by ListRuns.
func RunsTable(runs []storage.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		truncated := ""
		if r.Truncated {
			truncated = "yes"
		}
		rows = append(rows, []string{
			r.ID,
			r.Dataset,
			r.Mode,
			strconv.Itoa(r.RowCount),
			strconv.Itoa(r.SampledRows),
			strconv.Itoa(len(r.Keys)),
			truncated,
			r.StartedAt.Format(time.RFC3339),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
		})
	}
	return renderTable(
		[]string{"run", "dataset", "mode", "rows", "sampled", "keys", "truncated", "started", "duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignRight},
	)
}
