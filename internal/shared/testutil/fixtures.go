package testutil

import (
	"context"
	"fmt"
	"testing"

	"gdxtoolbox/pkg/contracts/domain"
)

// ModelYears are the milestone years of a model run
var ModelYears = []int{2020, 2030, 2040, 2050, 2060, 2070, 2080, 2090, 2100}

// TableFromRows builds a table from a header and rows. Column kinds follow
// the Go type of the first row: string, int or float64.
func TableFromRows(t testing.TB, name string, header []string, rows ...[]any) *domain.Table {
	t.Helper()

	columns := make([]*domain.Column, len(header))
	for j, h := range header {
		if len(rows) == 0 {
			columns[j] = domain.NewStringColumn(h, []string{})
			continue
		}
		switch rows[0][j].(type) {
		case int:
			values := make([]int64, len(rows))
			for i, row := range rows {
				values[i] = int64(row[j].(int))
			}
			columns[j] = domain.NewIntColumn(h, values)
		case float64:
			values := make([]float64, len(rows))
			for i, row := range rows {
				values[i] = row[j].(float64)
			}
			columns[j] = domain.NewFloatColumn(h, values)
		default:
			values := make([]string, len(rows))
			for i, row := range rows {
				values[i] = fmt.Sprint(row[j])
			}
			columns[j] = domain.NewStringColumn(h, values)
		}
	}

	table, err := domain.NewTable(name, columns...)
	if err != nil {
		t.Fatalf("building table %s: %v", name, err)
	}
	return table
}

// ScenarioTables returns a cleaned collection shaped like the output of a
// full model run, with deterministic values
func ScenarioTables(t testing.TB) domain.Collection {
	t.Helper()

	var deltaT, emissions, clearing, livestock, outputs, byProcess [][]any
	for i, y := range ModelYears {
		f := float64(i)
		deltaT = append(deltaT, []any{y, 1.1 + 0.1*f})

		emissions = append(emissions,
			[]any{y, "CO2_FFI", 30000.0 - 2000*f},
			[]any{y, "CO2_LU", 4000.0 - 500*f},
			[]any{y, "CH4", 300.0 - 10*f},
			[]any{y, "N2O", 10.0},
		)

		clearing = append(clearing,
			[]any{y, "TropicalHumid", 0.2},
			[]any{y, "Boreal", 0.1},
		)

		livestock = append(livestock,
			[]any{y, "LVST_milk", 800.0 + 10*f},
			[]any{y, "LVST_beef", 70.0},
			[]any{y, "LVST_poultry", 130.0 + f},
		)

		outputs = append(outputs,
			[]any{"COAL", y, 150.0 - 10*f},
			[]any{"CRUD", y, 180.0},
			[]any{"NGAS", y, 100.0 + 5*f},
			// a second row for the same commodity and year is summed
			[]any{"NGAS", y, 1.0},
		)

		byProcess = append(byProcess,
			[]any{"TRAN_PASS_BusDiesel", "PKM", y, 2e6},
			[]any{"TRAN_PASS_CarBEV", "PKM", y, 1e6 * (1 + f)},
			[]any{"TRAN_FRGT_ShipsHFO", "TKM", y, 9e6},
			[]any{"TRAN_FRGT_TruckBEV", "TKM", y, 1e6 * f},
			[]any{"ELEC_Coal", "ELECGen", y, 36000.0},
			[]any{"ELEC_SPV1", "ELECGen", y, 1500.0 + 1000*f},
			// heat output of a generator is not electricity
			[]any{"ELEC_Coal", "HEAT", y, 99000.0},
			[]any{"XTRC_Coal", "COAL", y, 150.0 - 10*f},
		)
	}

	return domain.Collection{
		"CLIM_DeltaT":    TableFromRows(t, "CLIM_DeltaT", []string{"year", "level"}, deltaT...),
		"EmissionAnnual": TableFromRows(t, "EmissionAnnual", []string{"year", "emission", "level"}, emissions...),
		"LU_AreaByUse": TableFromRows(t, "LU_AreaByUse", []string{"year", "landuse", "value"},
			[]any{2020, "crops", 15.0},
			[]any{2020, "pastr", 30.0},
			[]any{2020, "primf", 25.0},
			[]any{2050, "crops", 17.0},
			[]any{2050, "pastr", 28.0},
			[]any{2050, "primf", 22.0},
		),
		"LU_Area_SecdF": TableFromRows(t, "LU_Area_SecdF", []string{"year", "age", "biome", "level"},
			[]any{2050, 0, "Boreal", 0.5},
			[]any{2050, 10, "Boreal", 0.25},
			[]any{2050, 0, "TropicalHumid", 1.0},
			[]any{2050, 10, "TropicalHumid", 0.75},
			[]any{2060, 0, "Boreal", 9.0},
		),
		"LU_clear_pri":        TableFromRows(t, "LU_clear_pri", []string{"year", "biome", "level"}, clearing...),
		"LVST_product_output": TableFromRows(t, "LVST_product_output", []string{"year", "lvst_products", "level"}, livestock...),
		"OutputAnnual":        TableFromRows(t, "OutputAnnual", []string{"commodity", "year", "level"}, outputs...),
		"OutputAnnualByProcess": TableFromRows(t, "OutputAnnualByProcess",
			[]string{"process", "commodity", "year", "level"}, byProcess...),
	}
}

// StubReader is an archive reader returning a fixed collection. Every Read
// returns a deep copy so callers may mutate the result.
type StubReader struct {
	Ext    string
	Tables domain.Collection
	Err    error
	Paths  []string
}

// Extension implements the archive reader contract
func (s *StubReader) Extension() string {
	if s.Ext == "" {
		return "gdx"
	}
	return s.Ext
}

// Read implements the archive reader contract
func (s *StubReader) Read(ctx context.Context, path string) (domain.Collection, error) {
	s.Paths = append(s.Paths, path)
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(domain.Collection, len(s.Tables))
	for name, table := range s.Tables {
		out[name] = table.Filter(func(int) bool { return true })
	}
	return out, nil
}
