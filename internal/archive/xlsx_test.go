package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "gdxtoolbox/internal/errors"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "run.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXReader_Read(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"EmissionAnnual": {
			{"YEAR", "EMISSION", "LEVEL", "Marginal"},
			{"2020", "CO2", 1.5, 0},
			{},
			{"2030", "CO2", 2.5, 0},
		},
		"Empty": {},
	})

	tables, err := NewXLSXReader(testLogger()).Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"EmissionAnnual", "Empty"}, tables.Names())

	emissions := tables["EmissionAnnual"]
	assert.Equal(t, []string{"YEAR", "EMISSION", "LEVEL", "Marginal"}, emissions.ColumnNames())
	assert.Equal(t, 2, emissions.Len())
	assert.Equal(t, []float64{1.5, 2.5}, emissions.Column("LEVEL").Floats)
	assert.Equal(t, []string{"2020", "2030"}, emissions.Column("YEAR").Strings)

	assert.True(t, tables["Empty"].Empty())
}

func TestXLSXReader_Errors(t *testing.T) {
	reader := NewXLSXReader(testLogger())

	_, err := reader.Read(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))

	garbage := filepath.Join(t.TempDir(), "garbage.xlsx")
	require.NoError(t, os.WriteFile(garbage, []byte("not a zip"), 0644))
	_, err = reader.Read(context.Background(), garbage)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))
}
