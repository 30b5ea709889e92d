package exporter

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gdxtoolbox/internal/charts"
	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/shared/testutil"
	"gdxtoolbox/pkg/contracts/domain"
)

func chartParts(t *testing.T, data []byte) []string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var parts []string
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "xl/charts/chart") {
			parts = append(parts, f.Name)
		}
	}
	return parts
}

func TestWorkbookWriter_Write(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	tables := testutil.ScenarioTables(t)

	var frames []*domain.Frame
	for _, name := range []string{charts.ChartEmissions, charts.ChartLandUse, charts.ChartSecondaryForest} {
		built, err := charts.Build(tables, name, charts.Params{Year: 2050})
		require.NoError(t, err)
		frames = append(frames, built...)
	}

	var buf bytes.Buffer
	err := NewWorkbookWriter(logger).Write(&buf, domain.Collection{
		"EmissionAnnual": tables["EmissionAnnual"],
		"CLIM_DeltaT":    tables["CLIM_DeltaT"],
	}, frames)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"emissions_co2", "emissions_ch4", "emissions_n2o", "land_use", "secondary_forest",
		"CLIM_DeltaT", "EmissionAnnual",
	}, f.GetSheetList())
	assert.Len(t, chartParts(t, buf.Bytes()), len(frames))

	rows, err := f.GetRows("EmissionAnnual")
	require.NoError(t, err)
	require.Len(t, rows, tables["EmissionAnnual"].Len()+1)
	assert.Equal(t, []string{"year", "emission", "level"}, rows[0])
	assert.Equal(t, []string{"2020", "CO2_FFI", "30000"}, rows[1])

	rows, err = f.GetRows("land_use")
	require.NoError(t, err)
	assert.Equal(t, []string{"index", "value"}, rows[0])
	assert.Equal(t, []string{"crops", "17"}, rows[1])
}

func TestWorkbookWriter_Empty(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	err := NewWorkbookWriter(logger).Write(&bytes.Buffer{}, nil, nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestWorkbookWriter_Save(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "reports", "run.xlsx")
	tables := testutil.ScenarioTables(t)

	require.NoError(t, NewWorkbookWriter(logger).Save(path, tables, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, tables.Names(), f.GetSheetList())
}

func TestWorkbookWriter_SaveFailureRemovesFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "bad.xlsx")

	err := NewWorkbookWriter(logger).Save(path, nil, nil)

	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSheetNames(t *testing.T) {
	names := newSheetNames()

	assert.Equal(t, "EmissionAnnual", names.next("EmissionAnnual"))
	assert.Equal(t, "emissionannual_2", names.next("emissionannual"))
	assert.Equal(t, "Sheet1_2", names.next("Sheet1"))
	assert.Equal(t, "a_b_c", names.next("a/b?c"))

	long := strings.Repeat("x", 40)
	first := names.next(long)
	assert.Len(t, first, maxSheetName)
	second := names.next(long)
	assert.Len(t, second, maxSheetName)
	assert.True(t, strings.HasSuffix(second, "_2"))
}

func TestBuildChart_Kinds(t *testing.T) {
	frame := &domain.Frame{
		Title:  "Test",
		Unit:   "Mt",
		Index:  []string{"2020", "2030"},
		Series: []domain.Series{{Name: "a", Color: "#1f77b4", Values: []float64{1, 2}}},
	}

	for kind, want := range chartTypes {
		frame.Kind = kind
		chart, err := buildChart("it's", frame)
		require.NoError(t, err)
		assert.Equal(t, want, chart.Type)
		require.Len(t, chart.Series, 1)
		assert.Equal(t, "'it''s'!$B$2:$B$3", chart.Series[0].Values)
		assert.Equal(t, "'it''s'!$A$2:$A$3", chart.Series[0].Categories)
	}

	frame.Kind = "radar"
	_, err := buildChart("x", frame)
	assert.Error(t, err)
}
