package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"gdxtoolbox/internal/exporter"
	"gdxtoolbox/pkg/contracts/domain"
)

// Output formats accepted by --output
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

var outputFormats = []string{formatTable, formatCSV, formatJSON}

func checkFormat(format string) error {
	for _, f := range outputFormats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (want table, csv or json)", format)
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderSummaries(w io.Writer, summaries []domain.TableSummary) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Table", "Rows", "Columns"})
	for _, s := range summaries {
		t.AppendRow(table.Row{s.Name, s.Rows, len(s.Columns)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
	fmt.Fprintf(w, "(%d tables)\n", len(summaries))
}

// renderRows prints up to limit rows; limit <= 0 prints all
func renderRows(w io.Writer, tbl *domain.Table, limit int) {
	n := tbl.Len()
	shown := n
	if limit > 0 && limit < n {
		shown = limit
	}

	t := newWriter(w)
	header := make(table.Row, len(tbl.Columns))
	configs := make([]table.ColumnConfig, 0, len(tbl.Columns))
	for j, c := range tbl.Columns {
		header[j] = c.Name
		if c.Kind != domain.KindString {
			configs = append(configs, table.ColumnConfig{Number: j + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i := 0; i < shown; i++ {
		row := make(table.Row, len(tbl.Columns))
		for j, c := range tbl.Columns {
			row[j] = c.Text(i)
		}
		t.AppendRow(row)
	}
	t.Render()

	if shown < n {
		fmt.Fprintf(w, "(showing %d of %d rows)\n", shown, n)
		return
	}
	fmt.Fprintf(w, "(%d rows)\n", n)
}

func renderFrame(w io.Writer, frame *domain.Frame) {
	title := frame.Title
	if frame.Unit != "" {
		title = fmt.Sprintf("%s [%s]", title, frame.Unit)
	}

	// on its own line so narrow frames do not wrap it
	fmt.Fprintln(w, title)

	t := newWriter(w)

	header := table.Row{""}
	configs := make([]table.ColumnConfig, 0, len(frame.Series))
	for j, s := range frame.Series {
		header = append(header, s.Name)
		configs = append(configs, table.ColumnConfig{Number: j + 2, Align: text.AlignRight})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for i, label := range frame.Index {
		row := table.Row{label}
		for _, s := range frame.Series {
			row = append(row, strconv.FormatFloat(s.Values[i], 'g', 6, 64))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func writeFrames(w io.Writer, frames []*domain.Frame, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(frames)
	case formatCSV:
		for i, frame := range frames {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if err := exporter.WriteFrame(w, frame); err != nil {
				return err
			}
		}
		return nil
	default:
		for i, frame := range frames {
			if i > 0 {
				fmt.Fprintln(w)
			}
			renderFrame(w, frame)
		}
		return nil
	}
}

func writeTable(w io.Writer, tbl *domain.Table, format string, limit int) error {
	switch format {
	case formatJSON:
		rows := tbl.Rows()
		if limit > 0 && limit < len(rows) {
			rows = rows[:limit]
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case formatCSV:
		return exporter.WriteTable(w, tbl)
	default:
		renderRows(w, tbl, limit)
		return nil
	}
}
