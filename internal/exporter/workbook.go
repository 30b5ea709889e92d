package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

const (
	maxSheetName = 31
	defaultSheet = "Sheet1"
)

var chartTypes = map[domain.ChartKind]excelize.ChartType{
	domain.ChartLine:        excelize.Line,
	domain.ChartStackedArea: excelize.AreaStacked,
	domain.ChartStackedBar:  excelize.ColStacked,
	domain.ChartPie:         excelize.Pie,
}

// WorkbookWriter writes chart frames and tables to an Excel workbook. Every
// frame gets a sheet holding its data and a native chart; every table gets a
// sheet written through the excelize stream writer.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	return &WorkbookWriter{logger: logger.With(slog.String("component", "workbook_writer"))}
}

// Write renders the workbook to dst
func (w *WorkbookWriter) Write(dst io.Writer, tables domain.Collection, frames []*domain.Frame) error {
	if len(tables) == 0 && len(frames) == 0 {
		return apperrors.NewAppValidationError("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	names := newSheetNames()
	for _, frame := range frames {
		sheet := names.next(frame.Name)
		if err := w.writeFrame(f, sheet, frame); err != nil {
			return fmt.Errorf("failed to write chart %s: %w", frame.Name, err)
		}
	}
	for _, name := range tables.Names() {
		sheet := names.next(name)
		if err := w.writeTable(f, sheet, tables[name]); err != nil {
			return fmt.Errorf("failed to write table %s: %w", name, err)
		}
	}

	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)

	w.logger.Info("Writing workbook",
		slog.Int("charts", len(frames)),
		slog.Int("tables", len(tables)))
	return f.Write(dst)
}

// Save writes the workbook to a file, creating its directory
func (w *WorkbookWriter) Save(path string, tables domain.Collection, frames []*domain.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := w.Write(file, tables, frames); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

func (w *WorkbookWriter) newSheet(f *excelize.File, sheet string) error {
	_, err := f.NewSheet(sheet)
	return err
}

// writeTable streams one table, header first
func (w *WorkbookWriter) writeTable(f *excelize.File, sheet string, table *domain.Table) error {
	if err := w.newSheet(f, sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(table.Columns))
	for j, c := range table.Columns {
		header[j] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := 0; i < table.Len(); i++ {
		row := make([]interface{}, len(table.Columns))
		for j, c := range table.Columns {
			row[j] = c.Value(i)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// writeFrame writes the frame data from A1 and anchors a chart beside it
func (w *WorkbookWriter) writeFrame(f *excelize.File, sheet string, frame *domain.Frame) error {
	if err := w.newSheet(f, sheet); err != nil {
		return err
	}

	header := []interface{}{"index"}
	for _, s := range frame.Series {
		header = append(header, s.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, label := range frame.Index {
		row := []interface{}{label}
		for _, s := range frame.Series {
			row = append(row, s.Values[i])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if len(frame.Index) == 0 || len(frame.Series) == 0 {
		return nil
	}
	chart, err := buildChart(sheet, frame)
	if err != nil {
		return err
	}
	anchor, err := excelize.CoordinatesToCellName(len(frame.Series)+3, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheet, anchor, chart)
}

func buildChart(sheet string, frame *domain.Frame) (*excelize.Chart, error) {
	chartType, ok := chartTypes[frame.Kind]
	if !ok {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported chart kind %q", frame.Kind))
	}

	ref := quoteSheet(sheet)
	last := len(frame.Index) + 1
	categories := fmt.Sprintf("%s!$A$2:$A$%d", ref, last)

	series := frame.Series
	if frame.Kind == domain.ChartPie {
		series = series[:1]
	}

	chart := &excelize.Chart{
		Type:      chartType,
		Title:     []excelize.RichTextRun{{Text: frame.Title}},
		Legend:    excelize.ChartLegend{Position: "right"},
		Dimension: excelize.ChartDimension{Width: 720, Height: 400},
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Title:          []excelize.RichTextRun{{Text: frame.Unit}},
		},
	}
	if frame.Kind == domain.ChartPie {
		vary := true
		chart.VaryColors = &vary
		chart.PlotArea = excelize.ChartPlotArea{ShowPercent: true}
	}

	for j, s := range series {
		col, err := excelize.ColumnNumberToName(j + 2)
		if err != nil {
			return nil, err
		}
		cs := excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", ref, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", ref, col, col, last),
		}
		if s.Color != "" && frame.Kind != domain.ChartPie {
			cs.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(s.Color, "#")}}
		}
		if frame.Kind == domain.ChartLine {
			cs.Line = excelize.ChartLine{Width: 2}
		}
		chart.Series = append(chart.Series, cs)
	}
	return chart, nil
}

// quoteSheet quotes a sheet name for use in a cell reference
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// sheetNames hands out unique, valid sheet names that never clash with the
// default sheet of a new workbook
type sheetNames struct {
	lower map[string]bool
}

func newSheetNames() *sheetNames {
	return &sheetNames{lower: make(map[string]bool)}
}

func (s *sheetNames) next(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.Trim(name, "'"))
	if clean == "" {
		clean = "sheet"
	}

	candidate := truncate(clean, maxSheetName)
	for n := 2; s.lower[strings.ToLower(candidate)] || strings.EqualFold(candidate, defaultSheet); n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate = truncate(clean, maxSheetName-len(suffix)) + suffix
	}

	s.lower[strings.ToLower(candidate)] = true
	return candidate
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
