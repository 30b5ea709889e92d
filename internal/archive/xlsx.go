package archive

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// XLSXReader reads workbooks holding one symbol per sheet
type XLSXReader struct {
	logger *slog.Logger
}

// NewXLSXReader creates an XLSX reader
func NewXLSXReader(logger *slog.Logger) *XLSXReader {
	return &XLSXReader{logger: logger.With(slog.String("component", "xlsx_reader"))}
}

// Extension implements Reader
func (r *XLSXReader) Extension() string {
	return "xlsx"
}

// Read loads every sheet as a table. The first row is the header; rows
// without any content are skipped.
func (r *XLSXReader) Read(ctx context.Context, path string) (domain.Collection, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewReadError("cannot open archive", err).WithContext("path", path)
	}

	start := time.Now()
	r.logger.InfoContext(ctx, "Trying to read archive", slog.String("path", path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewReadError("malformed workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	tables := make(domain.Collection, len(sheets))
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apperrors.NewReadError("cannot read sheet", err).
				WithContext("path", path).
				WithContext("sheet", sheet)
		}

		if len(rows) == 0 {
			tables[sheet] = &domain.Table{Name: sheet}
			continue
		}

		records := make([][]string, 0, len(rows)-1)
		for _, row := range rows[1:] {
			if blankRow(row) {
				continue
			}
			records = append(records, row)
		}

		table, err := buildTable(sheet, rows[0], records)
		if err != nil {
			return nil, apperrors.NewReadError("malformed sheet", err).
				WithContext("path", path).
				WithContext("sheet", sheet)
		}
		tables[sheet] = table
	}

	r.logger.InfoContext(ctx, "Archive read",
		slog.String("path", path),
		slog.Int("tables", len(tables)),
		slog.Duration("duration", time.Since(start)))

	return tables, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
