package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"gdxtoolbox/internal/archive"
	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/infrastructure"
	"gdxtoolbox/internal/shared/testutil"
	"gdxtoolbox/pkg/contracts/domain"
)

// rawArchive mirrors what the gdx reader returns for a small model run
func rawArchive(t *testing.T) domain.Collection {
	t.Helper()
	return domain.Collection{
		"EQ_Balance": testutil.TableFromRows(t, "EQ_Balance",
			[]string{"t", "Level", "Marginal", "Lower", "Upper", "Scale"},
			[]any{"2020", 0.0, 1.0, 0.0, 0.0, 1.0},
		),
		"data_input": testutil.TableFromRows(t, "data_input",
			[]string{"i", "Value"},
			[]any{"a", 1.0},
		),
		"EmissionAnnual": testutil.TableFromRows(t, "EmissionAnnual",
			[]string{"YEAR", "EMISSION", "LEVEL", "Marginal"},
			[]any{"2020", "CO2", 35000.0, 0.0},
			[]any{"2030", "CO2", 30000.0, 0.0},
		),
	}
}

func newTestImporter(t *testing.T, reader archive.Reader, allowList string, opts ...Option) *Importer {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewImporter(archive.NewRegistry(reader), allowList, logger, opts...)
}

func TestImporter_EndToEnd(t *testing.T) {
	reader := &testutil.StubReader{Tables: rawArchive(t)}
	im := newTestImporter(t, reader, writeList(t, "EmissionAnnual\n"))

	tables, err := im.Import(context.Background(), "run", "results", true)

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("results", "run.gdx")}, reader.Paths)
	assert.Equal(t, []string{"EmissionAnnual"}, tables.Names())

	emissions := tables["EmissionAnnual"]
	assert.Equal(t, []string{"year", "emission", "level"}, emissions.ColumnNames())
	assert.Equal(t, []int64{2020, 2030}, emissions.Column("year").Ints)
	assert.Equal(t, []float64{35000, 30000}, emissions.Column("level").Floats)
}

func TestImporter_WithoutEssentialFilter(t *testing.T) {
	raw := rawArchive(t)
	raw["LU_Area_SecdF"] = testutil.TableFromRows(t, "LU_Area_SecdF",
		[]string{"t", "age", "pool", "Level"},
		[]any{"2050", "age10", "Boreal", 1.0},
	)
	raw["LU_clear_sec"] = testutil.TableFromRows(t, "LU_clear_sec",
		[]string{"t", "age", "pool", "Level"},
		[]any{"2050", "age0", "Boreal", 0.1},
	)
	raw["Empty"] = testutil.TableFromRows(t, "Empty", []string{"t"})
	raw["Objective"] = testutil.TableFromRows(t, "Objective", []string{"Level"}, []any{1.0})

	// the allow-list is never read when filtering is off
	im := newTestImporter(t, &testutil.StubReader{Tables: raw}, filepath.Join(t.TempDir(), "absent.txt"))

	tables, err := im.Import(context.Background(), "run.gdx", "", false)

	require.NoError(t, err)
	assert.Equal(t, []string{"EmissionAnnual", "LU_Area_SecdF", "LU_clear_sec"}, tables.Names())
	secdf := tables["LU_Area_SecdF"]
	assert.Equal(t, []string{"year", "age", "biome", "level"}, secdf.ColumnNames())
	assert.Equal(t, []int64{10}, secdf.Column("age").Ints)
}

func TestImporter_MissingAgeTableWithoutFilter(t *testing.T) {
	im := newTestImporter(t, &testutil.StubReader{Tables: rawArchive(t)}, "")

	tables, err := im.Import(context.Background(), "run", "", false)

	require.Error(t, err)
	assert.Nil(t, tables)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
}

func TestImporter_AllowedAgeTableMissing(t *testing.T) {
	im := newTestImporter(t, &testutil.StubReader{Tables: rawArchive(t)},
		writeList(t, "EmissionAnnual\nLU_Area_SecdF\n"))

	_, err := im.Import(context.Background(), "run", "", true)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeDataFormat))
}

func TestImporter_MissingAllowList(t *testing.T) {
	im := newTestImporter(t, &testutil.StubReader{Tables: rawArchive(t)},
		filepath.Join(t.TempDir(), "missing.txt"))

	tables, err := im.Import(context.Background(), "run", "", true)

	require.Error(t, err)
	assert.Nil(t, tables)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestImporter_ReaderError(t *testing.T) {
	readErr := apperrors.NewReadError("archive is corrupt", errors.New("bad header"))
	im := newTestImporter(t, &testutil.StubReader{Err: readErr}, "")

	_, err := im.Import(context.Background(), "run", "", false)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))
}

func TestImporter_Properties(t *testing.T) {
	rules := DefaultRules()
	allowed := []string{"EmissionAnnual", "LU_AreaByUse", "LU_Area_SecdF", "LU_clear_sec"}

	raw := rawArchive(t)
	raw["LU_AreaByUse"] = testutil.TableFromRows(t, "LU_AreaByUse",
		[]string{"T", "Use", "Value"},
		[]any{"2020", "crops", 15.0},
	)
	raw["LU_Area_SecdF"] = testutil.TableFromRows(t, "LU_Area_SecdF",
		[]string{"t", "age", "pool", "Level", "Lower", "Upper"},
		[]any{"2050", "age10", "Boreal", 1.0, 0.0, 5.0},
	)
	raw["LU_clear_sec"] = testutil.TableFromRows(t, "LU_clear_sec",
		[]string{"t", "age", "pool", "Level"},
		[]any{"2050", "age0", "Boreal", 0.1},
	)
	raw["LU_clear_pri"] = testutil.TableFromRows(t, "LU_clear_pri", []string{"t"})
	raw["Unlisted"] = testutil.TableFromRows(t, "Unlisted", []string{"a"}, []any{"x"})

	im := newTestImporter(t, &testutil.StubReader{Tables: raw}, writeList(t, "EmissionAnnual\nLU_AreaByUse\nLU_Area_SecdF\nLU_clear_sec\n"))
	tables, err := im.Import(context.Background(), "run", "", true)
	require.NoError(t, err)

	keep := make(map[string]bool)
	for _, name := range allowed {
		keep[name] = true
	}
	for name, table := range tables {
		assert.False(t, table.Empty(), "%s is empty", name)
		assert.False(t, rules.IsJunkKey(name), "%s is junk", name)
		assert.True(t, keep[name], "%s is not allowed", name)
		for _, col := range rules.JunkColumns {
			assert.False(t, table.HasColumn(col), "%s keeps %s", name, col)
		}
		for _, col := range table.ColumnNames() {
			_, abbreviated := rules.ColumnRenames[col]
			assert.False(t, abbreviated, "%s.%s", name, col)
		}
	}

	t.Run("idempotent", func(t *testing.T) {
		before := map[string][]string{}
		for name, table := range tables {
			before[name] = table.ColumnNames()
		}
		require.NoError(t, im.Clean(context.Background(), tables, true))
		for name, table := range tables {
			assert.Equal(t, before[name], table.ColumnNames())
		}
	})
}

func TestImporter_AgeStepAfterRecleaning(t *testing.T) {
	// integer age columns already parsed are accepted again
	tables := domain.Collection{
		"LU_Area_SecdF": testutil.TableFromRows(t, "LU_Area_SecdF", []string{"age"}, []any{10}),
		"LU_clear_sec":  testutil.TableFromRows(t, "LU_clear_sec", []string{"age"}, []any{0}),
	}
	im := newTestImporter(t, &testutil.StubReader{}, "")

	require.NoError(t, im.Clean(context.Background(), tables, false))
	assert.Equal(t, []int64{10}, tables["LU_Area_SecdF"].Column("age").Ints)
}

func TestImporter_ExcludedAgeTableIsSkipped(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	reader := &testutil.StubReader{Tables: rawArchive(t)}
	im := NewImporter(archive.NewRegistry(reader), writeList(t, "EmissionAnnual"), logger)

	_, err := im.Import(context.Background(), "run", "", true)

	require.NoError(t, err)
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "age table excluded by essential outputs list")
	testutil.AssertLogAttr(t, handler, "table", "LU_clear_sec")
}

func TestImporter_RunIDPerImport(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	im := NewImporter(archive.NewRegistry(&testutil.StubReader{Tables: rawArchive(t)}), writeList(t, "EmissionAnnual"), logger)

	for i := 0; i < 2; i++ {
		_, err := im.Import(context.Background(), "run", "", true)
		require.NoError(t, err)
	}

	var ids []any
	for _, rec := range handler.GetRecords() {
		if rec.Message == "Data fetch successful" {
			ids = append(ids, rec.Attrs["run_id"])
		}
	}
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestImporter_ResolvePath(t *testing.T) {
	registry := archive.NewRegistry(&testutil.StubReader{Ext: "gdx"}, &testutil.StubReader{Ext: "xlsx"})
	logger, _ := testutil.NewTestLogger(t)
	im := NewImporter(registry, "", logger)

	tests := []struct {
		filename string
		folder   string
		want     string
	}{
		{"run", "results", filepath.Join("results", "run.gdx")},
		{"run.gdx", "results", filepath.Join("results", "run.gdx")},
		{"run.xlsx", "", "run.xlsx"},
		{"run.v2", "", "run.v2.gdx"},
		{"scenario.1.5C", "out", filepath.Join("out", "scenario.1.5C.gdx")},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, im.ResolvePath(tt.filename, tt.folder))
		})
	}
}

func TestImporter_XLSX(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "EmissionAnnual"))
	rows := [][]any{
		{"T", "E", "Level", "Marginal"},
		{2020, "CO2", 35000.5, 0},
		{2030, "CO2", 30000, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("EmissionAnnual", cell, &row))
	}
	_, err := f.NewSheet("EQ_Balance")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("EQ_Balance", "A1", &[]any{"t", "Level"}))
	require.NoError(t, f.SetSheetRow("EQ_Balance", "A2", &[]any{2020, 1}))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "run.xlsx")))
	require.NoError(t, f.Close())

	logger, _ := testutil.NewTestLogger(t)
	registry := archive.NewRegistry(archive.NewXLSXReader(logger))
	im := NewImporter(registry, writeList(t, "EmissionAnnual\n"), logger)

	tables, err := im.Import(context.Background(), "run.xlsx", dir, true)

	require.NoError(t, err)
	assert.Equal(t, []string{"EmissionAnnual"}, tables.Names())
	emissions := tables["EmissionAnnual"]
	assert.Equal(t, []string{"year", "e", "level"}, emissions.ColumnNames())
	assert.Equal(t, []int64{2020, 2030}, emissions.Column("year").Ints)
	assert.Equal(t, []float64{35000.5, 30000}, emissions.Column("level").Floats)
}

func TestImporter_MissingArchive(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	registry := archive.NewRegistry(archive.NewGDXReader("gdxdump", nil, logger))
	im := NewImporter(registry, "", logger)

	_, err := im.Import(context.Background(), "nope", t.TempDir(), false)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))
}

func TestImporter_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreatePipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	im := newTestImporter(t, &testutil.StubReader{Tables: rawArchive(t)},
		writeList(t, "EmissionAnnual\n"), WithMetrics(metrics))
	_, err = im.Import(context.Background(), "run", "", true)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["gdx_imports_total"])
	assert.True(t, names["gdx_pipeline_stage_duration_seconds"])
	assert.True(t, names["gdx_tables_removed_total"])
}

func TestImportGDXFile_MissingArchive(t *testing.T) {
	_, err := ImportGDXFile(context.Background(), "absent", t.TempDir(), false)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))
}

func TestDefaultEssentialOutputsFileShipped(t *testing.T) {
	path := filepath.Join("..", "..", DefaultEssentialOutputsFile)
	_, err := os.Stat(path)
	require.NoError(t, err)

	names, err := LoadEssentialOutputs(path)
	require.NoError(t, err)
	assert.Contains(t, names, "EmissionAnnual")
	assert.Contains(t, names, "LU_Area_SecdF")
}
