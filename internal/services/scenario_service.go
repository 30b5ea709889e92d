package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"gdxtoolbox/internal/charts"
	apperrors "gdxtoolbox/internal/errors"
	"gdxtoolbox/internal/exporter"
	"gdxtoolbox/internal/files"
	"gdxtoolbox/internal/infrastructure"
	"gdxtoolbox/pkg/contracts/domain"
)

// ArchiveImporter runs the import pipeline on one archive
type ArchiveImporter interface {
	Import(ctx context.Context, filename, folderPath string, onlyEssentialOutputs bool) (domain.Collection, error)
}

// ScenarioService exposes the result archives of the results directory.
// Every call imports the archive afresh; nothing is cached between calls.
type ScenarioService struct {
	discovery *files.Discovery
	importer  ArchiveImporter
	csv       *exporter.CSVWriter
	workbook  *exporter.WorkbookWriter
	metrics   *infrastructure.PipelineMetrics
	timeout   time.Duration
	logger    *slog.Logger
}

// ScenarioOption configures a ScenarioService
type ScenarioOption func(*ScenarioService)

// WithImportTimeout bounds every import. Zero disables the bound.
func WithImportTimeout(timeout time.Duration) ScenarioOption {
	return func(s *ScenarioService) { s.timeout = timeout }
}

// WithScenarioMetrics sets the instruments counting built charts
func WithScenarioMetrics(metrics *infrastructure.PipelineMetrics) ScenarioOption {
	return func(s *ScenarioService) { s.metrics = metrics }
}

// NewScenarioService creates a scenario service
func NewScenarioService(discovery *files.Discovery, importer ArchiveImporter, csv *exporter.CSVWriter, workbook *exporter.WorkbookWriter, logger *slog.Logger, opts ...ScenarioOption) *ScenarioService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ScenarioService{
		discovery: discovery,
		importer:  importer,
		csv:       csv,
		workbook:  workbook,
		logger:    logger.With(slog.String("service", "scenario")),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("ScenarioService initialized",
		slog.String("results_dir", discovery.BasePath()),
		slog.Duration("import_timeout", s.timeout))
	return s
}

// ExportRequest selects what goes into an export
type ExportRequest struct {
	// Charts to include. Empty means every chart the scenario can build.
	Charts        []string
	Params        charts.Params
	IncludeTables bool
	EssentialOnly bool
}

// ListScenarios returns the archives in the results directory
func (s *ScenarioService) ListScenarios(ctx context.Context) ([]files.FileInfo, error) {
	archives, err := s.discovery.FindArchives()
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "ListScenarios: scanned results directory",
		slog.Int("count", len(archives)))
	return archives, nil
}

// Import imports and cleans the named scenario
func (s *ScenarioService) Import(ctx context.Context, name string, essentialOnly bool) (domain.Collection, error) {
	file, err := s.discovery.Lookup(name)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	tables, err := s.importer.Import(ctx, file.Name, filepath.Dir(file.Path), essentialOnly)
	if err != nil {
		s.logger.ErrorContext(ctx, "Import failed",
			slog.String("scenario", name),
			slog.String("error", err.Error()))
		return nil, err
	}
	return tables, nil
}

// Tables imports the scenario and summarizes its tables
func (s *ScenarioService) Tables(ctx context.Context, name string, essentialOnly bool) ([]domain.TableSummary, error) {
	tables, err := s.Import(ctx, name, essentialOnly)
	if err != nil {
		return nil, err
	}
	return tables.Summaries(), nil
}

// Table imports the scenario and returns one of its tables
func (s *ScenarioService) Table(ctx context.Context, name, table string, essentialOnly bool) (*domain.Table, error) {
	tables, err := s.Import(ctx, name, essentialOnly)
	if err != nil {
		return nil, err
	}
	t, ok := tables.Get(table)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("table %s", table)).
			WithContext("scenario", name)
	}
	return t, nil
}

// Commodities imports the scenario's essential outputs and lists the
// commodities commodity_production and commodity_by_process accept
func (s *ScenarioService) Commodities(ctx context.Context, name string) ([]string, error) {
	tables, err := s.Import(ctx, name, true)
	if err != nil {
		return nil, err
	}
	return charts.Commodities(tables)
}

// Chart imports the scenario from its essential outputs and builds a chart
func (s *ScenarioService) Chart(ctx context.Context, name, chart string, params charts.Params) ([]*domain.Frame, error) {
	tables, err := s.Import(ctx, name, true)
	if err != nil {
		return nil, err
	}
	return s.build(ctx, tables, chart, params)
}

func (s *ScenarioService) build(ctx context.Context, tables domain.Collection, chart string, params charts.Params) ([]*domain.Frame, error) {
	frames, err := charts.Build(tables, chart, params)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ChartsBuilt.Add(ctx, int64(len(frames)), metric.WithAttributes(attribute.String("chart", chart)))
	}
	return frames, nil
}

// ExportWorkbook writes the scenario's charts, and optionally its tables, as
// an Excel workbook to dst. Charts named explicitly must build; with no names
// every chart is tried and the ones the scenario lacks data for are skipped.
func (s *ScenarioService) ExportWorkbook(ctx context.Context, dst io.Writer, name string, req ExportRequest) error {
	tables, err := s.Import(ctx, name, req.EssentialOnly)
	if err != nil {
		return err
	}

	frames, err := s.exportFrames(ctx, tables, req)
	if err != nil {
		return err
	}

	var sheets domain.Collection
	if req.IncludeTables {
		sheets = tables
	}

	s.logger.InfoContext(ctx, "Exporting workbook",
		slog.String("scenario", name),
		slog.Int("frames", len(frames)),
		slog.Int("tables", len(sheets)))
	return s.workbook.Write(dst, sheets, frames)
}

func (s *ScenarioService) exportFrames(ctx context.Context, tables domain.Collection, req ExportRequest) ([]*domain.Frame, error) {
	names := req.Charts
	strict := len(names) > 0
	if !strict {
		names = charts.Names()
	}

	var frames []*domain.Frame
	for _, chart := range names {
		built, err := s.build(ctx, tables, chart, req.Params)
		if err != nil {
			if strict {
				return nil, err
			}
			s.logger.DebugContext(ctx, "Skipping chart",
				slog.String("chart", chart),
				slog.String("reason", err.Error()))
			continue
		}
		frames = append(frames, built...)
	}
	return frames, nil
}

// ExportCSV writes every table of the scenario to <dir>/<table>.csv and
// returns the written paths. A relative dir lands in the reports directory.
func (s *ScenarioService) ExportCSV(ctx context.Context, name, dir string, essentialOnly bool) ([]string, error) {
	tables, err := s.Import(ctx, name, essentialOnly)
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(tables))
	for _, table := range tables.Names() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		path := filepath.Join(dir, table+".csv")
		if err := s.csv.ExportTable(path, tables[table]); err != nil {
			return written, apperrors.NewStorageError(fmt.Sprintf("failed to export table %s", table), err)
		}
		written = append(written, path)
	}
	return written, nil
}
