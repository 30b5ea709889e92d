package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/pkg/contracts/domain"
)

// NormalizeColumns lowercases every column name, renames abbreviated
// dimensions to their canonical names and converts the year column to
// integers where every value allows it.
//
// A rename whose target already exists is skipped with a warning; the first
// column in table order that maps to a canonical name wins, so with both t and
// time only one becomes year. The same holds for lowercasing: Year next to year
// keeps its original casing. Year conversion failures leave the column
// untouched.
func NormalizeColumns(ctx context.Context, tables domain.Collection, rules Rules, logger *slog.Logger) {
	for _, name := range tables.Names() {
		table := tables[name]

		for _, col := range table.ColumnNames() {
			lower := strings.ToLower(col)
			if lower == col {
				continue
			}
			if err := table.RenameColumn(col, lower); err != nil {
				logger.WarnContext(ctx, "column name collision, keeping original name",
					slog.String("table", name),
					slog.String("column", col),
					slog.String("target", lower))
			}
		}

		for _, col := range table.ColumnNames() {
			canonical, ok := rules.ColumnRenames[col]
			if !ok || canonical == col {
				continue
			}
			if err := table.RenameColumn(col, canonical); err != nil {
				logger.WarnContext(ctx, "column name collision, keeping original name",
					slog.String("table", name),
					slog.String("column", col),
					slog.String("target", canonical))
			}
		}

		year := table.Column(rules.YearColumn)
		if year == nil {
			continue
		}
		converted, err := coerceInt(year)
		if err != nil {
			logger.DebugContext(ctx, "year column left unchanged",
				slog.String("table", name),
				slog.String("reason", err.Error()))
			continue
		}
		// same length, cannot fail
		_ = table.SetColumn(converted)
	}
}

// coerceInt converts a column to integers. Strings must parse as base-10
// integers, floats must be finite and are truncated toward zero. The whole
// column converts or nothing does.
func coerceInt(col *domain.Column) (*domain.Column, error) {
	switch col.Kind {
	case domain.KindInt:
		return col, nil
	case domain.KindFloat:
		out := make([]int64, len(col.Floats))
		for i, f := range col.Floats {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("row %d: non-finite value %v", i, f)
			}
			// int64(f) is undefined outside [-2^63, 2^63)
			if f >= math.MaxInt64 || f < math.MinInt64 {
				return nil, fmt.Errorf("row %d: value %v out of integer range", i, f)
			}
			out[i] = int64(f)
		}
		return domain.NewIntColumn(col.Name, out), nil
	default:
		out := make([]int64, len(col.Strings))
		for i, s := range col.Strings {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			out[i] = int64(n)
		}
		return domain.NewIntColumn(col.Name, out), nil
	}
}

// NormalizeAgeClasses strips the age prefix from the age column of each named
// table and converts the remainder to integers. Values without the prefix are
// parsed as they are. A missing table, a missing age column or a remainder
// that is not an integer is a DATA_FORMAT error.
func NormalizeAgeClasses(tables domain.Collection, names []string, rules Rules) error {
	for _, name := range names {
		table, err := requireTable(tables, name)
		if err != nil {
			return err
		}

		age := table.Column(rules.AgeColumn)
		if age == nil {
			return apperrors.NewDataFormatError(
				fmt.Sprintf("table %s has no %s column", name, rules.AgeColumn), nil,
			).WithContext("table", name)
		}

		values := make([]int64, age.Len())
		for i := range values {
			text := strings.TrimSpace(age.Text(i))
			n, err := strconv.Atoi(strings.TrimPrefix(text, rules.AgePrefix))
			if err != nil {
				return apperrors.NewDataFormatError(
					fmt.Sprintf("table %s row %d: age class %q is not %s<integer>", name, i, text, rules.AgePrefix), err,
				).WithContext("table", name).WithContext("row", i)
			}
			values[i] = int64(n)
		}

		if err := table.SetColumn(domain.NewIntColumn(age.Name, values)); err != nil {
			return apperrors.NewDataFormatError("cannot replace age column", err)
		}
	}
	return nil
}
