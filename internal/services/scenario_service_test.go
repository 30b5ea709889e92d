package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"gdxtoolbox/internal/charts"
	"gdxtoolbox/internal/config"
	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/exporter"
	"gdxtoolbox/internal/files"
	"gdxtoolbox/internal/infrastructure"
	"gdxtoolbox/internal/shared/testutil"
	"gdxtoolbox/pkg/contracts/domain"
)

type scenarioFixture struct {
	service    *ScenarioService
	importer   *MockImporter
	resultsDir string
	reportsDir string
}

func newScenarioFixture(t *testing.T, opts ...ScenarioOption) *scenarioFixture {
	t.Helper()
	base := t.TempDir()
	results := filepath.Join(base, "results")
	reports := filepath.Join(base, "reports")
	require.NoError(t, os.MkdirAll(results, 0755))
	for _, name := range []string{"baseline.gdx", "policy.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(results, name), []byte("x"), 0644))
	}

	logger, _ := testutil.NewTestLogger(t)
	importer := &MockImporter{}
	paths := &config.Paths{BaseDir: base, ResultsDir: results, ReportsDir: reports}
	service := NewScenarioService(
		files.NewDiscovery(results, "gdx", "xlsx"),
		importer,
		exporter.NewCSVWriter(paths, logger),
		exporter.NewWorkbookWriter(logger),
		logger,
		opts...,
	)
	return &scenarioFixture{service: service, importer: importer, resultsDir: results, reportsDir: reports}
}

// expectImport makes the importer return the scenario fixture for baseline
func (f *scenarioFixture) expectImport(t *testing.T, essential bool) {
	f.importer.On("Import", mock.Anything, "baseline.gdx", f.resultsDir, essential).
		Return(testutil.ScenarioTables(t), nil)
}

func TestScenarioService_ListScenarios(t *testing.T) {
	f := newScenarioFixture(t)

	archives, err := f.service.ListScenarios(context.Background())

	require.NoError(t, err)
	require.Len(t, archives, 2)
	assert.Equal(t, "baseline", archives[0].Scenario)
	assert.Equal(t, "gdx", archives[0].Format)
	assert.Equal(t, "policy", archives[1].Scenario)
	assert.Equal(t, "xlsx", archives[1].Format)
}

func TestScenarioService_Import(t *testing.T) {
	t.Run("by scenario name", func(t *testing.T) {
		f := newScenarioFixture(t)
		f.expectImport(t, false)

		tables, err := f.service.Import(context.Background(), "baseline", false)

		require.NoError(t, err)
		assert.True(t, tables.Has("EmissionAnnual"))
		f.importer.AssertExpectations(t)
	})

	t.Run("unknown scenario", func(t *testing.T) {
		f := newScenarioFixture(t)

		_, err := f.service.Import(context.Background(), "absent", true)

		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
		f.importer.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("path traversal", func(t *testing.T) {
		f := newScenarioFixture(t)

		_, err := f.service.Import(context.Background(), "../baseline.gdx", true)

		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
	})

	t.Run("importer failure", func(t *testing.T) {
		f := newScenarioFixture(t)
		f.importer.On("Import", mock.Anything, "policy.xlsx", f.resultsDir, true).
			Return(nil, apperrors.NewReadError("corrupt archive", nil))

		tables, err := f.service.Import(context.Background(), "policy.xlsx", true)

		assert.Nil(t, tables)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))
	})

	t.Run("timeout bounds the import context", func(t *testing.T) {
		f := newScenarioFixture(t, WithImportTimeout(time.Minute))
		hasDeadline := mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		})
		f.importer.On("Import", hasDeadline, "baseline.gdx", f.resultsDir, true).
			Return(domain.Collection{}, nil)

		_, err := f.service.Import(context.Background(), "baseline", true)

		require.NoError(t, err)
		f.importer.AssertExpectations(t)
	})
}

func TestScenarioService_Tables(t *testing.T) {
	f := newScenarioFixture(t)
	f.expectImport(t, true)

	summaries, err := f.service.Tables(context.Background(), "baseline", true)

	require.NoError(t, err)
	require.NotEmpty(t, summaries)
	assert.Equal(t, "CLIM_DeltaT", summaries[0].Name)
	assert.Equal(t, []string{"year", "level"}, summaries[0].Columns)
	assert.Equal(t, len(testutil.ModelYears), summaries[0].Rows)
}

func TestScenarioService_Table(t *testing.T) {
	f := newScenarioFixture(t)
	f.expectImport(t, true)

	table, err := f.service.Table(context.Background(), "baseline", "EmissionAnnual", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"year", "emission", "level"}, table.ColumnNames())

	_, err = f.service.Table(context.Background(), "baseline", "Absent", true)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestScenarioService_Chart(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreatePipelineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	f := newScenarioFixture(t, WithScenarioMetrics(metrics))
	f.expectImport(t, true)

	frames, err := f.service.Chart(context.Background(), "baseline", charts.ChartEmissions, charts.Params{})
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, "emissions_co2", frames[0].Name)

	_, err = f.service.Chart(context.Background(), "baseline", "radar", charts.Params{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var built int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "gdx_charts_built_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				built += dp.Value
			}
		}
	}
	assert.Equal(t, int64(3), built)
}

func TestScenarioService_Commodities(t *testing.T) {
	f := newScenarioFixture(t)
	f.expectImport(t, true)

	commodities, err := f.service.Commodities(context.Background(), "baseline")
	require.NoError(t, err)
	assert.Equal(t, []string{"COAL", "CRUD", "NGAS"}, commodities)

	_, err = f.service.Commodities(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestScenarioService_ExportWorkbook(t *testing.T) {
	tests := []struct {
		name       string
		req        ExportRequest
		wantSheets []string
		absent     []string
	}{
		{
			name:       "every buildable chart",
			req:        ExportRequest{EssentialOnly: true},
			wantSheets: []string{"delta_t", "emissions_co2", "net_emissions_co2eq", "passenger_transport"},
			absent:     []string{"land_use", "EmissionAnnual"},
		},
		{
			name:       "year enables the land-use charts",
			req:        ExportRequest{EssentialOnly: true, Params: charts.Params{Year: 2050}},
			wantSheets: []string{"land_use", "secondary_forest"},
		},
		{
			name:       "selected charts with tables",
			req:        ExportRequest{EssentialOnly: true, IncludeTables: true, Charts: []string{charts.ChartDeltaT}},
			wantSheets: []string{"delta_t", "CLIM_DeltaT", "EmissionAnnual"},
			absent:     []string{"emissions_co2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newScenarioFixture(t)
			f.expectImport(t, true)

			var buf bytes.Buffer
			require.NoError(t, f.service.ExportWorkbook(context.Background(), &buf, "baseline", tt.req))

			wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			defer wb.Close()

			sheets := wb.GetSheetList()
			for _, want := range tt.wantSheets {
				assert.Contains(t, sheets, want)
			}
			for _, absent := range tt.absent {
				assert.NotContains(t, sheets, absent)
			}
		})
	}
}

func TestScenarioService_ExportWorkbook_StrictCharts(t *testing.T) {
	f := newScenarioFixture(t)
	f.expectImport(t, true)

	err := f.service.ExportWorkbook(context.Background(), &bytes.Buffer{}, "baseline", ExportRequest{
		EssentialOnly: true,
		Charts:        []string{charts.ChartLandUse},
	})

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestScenarioService_ExportCSV(t *testing.T) {
	f := newScenarioFixture(t)
	f.expectImport(t, true)

	written, err := f.service.ExportCSV(context.Background(), "baseline", "baseline", true)
	require.NoError(t, err)

	tables := testutil.ScenarioTables(t)
	require.Len(t, written, len(tables))
	for _, name := range tables.Names() {
		_, err := os.Stat(filepath.Join(f.reportsDir, "baseline", name+".csv"))
		assert.NoError(t, err, name)
	}
}

func TestScenarioService_ExportCSV_Cancelled(t *testing.T) {
	f := newScenarioFixture(t)
	f.expectImport(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := f.service.ExportCSV(ctx, "baseline", t.TempDir(), true)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}
