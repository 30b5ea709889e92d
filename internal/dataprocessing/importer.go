package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gdxtoolbox/internal/archive"
	"gdxtoolbox/internal/infrastructure"
	"gdxtoolbox/pkg/contracts/domain"
)

// DefaultExtension is appended to archive names that carry no supported extension
const DefaultExtension = "gdx"

// DefaultEssentialOutputsFile is the allow-list used by ImportGDXFile
var DefaultEssentialOutputsFile = filepath.Join("configs", "essential_outputs.txt")

// Importer runs the import and cleaning pipeline. It holds no per-import
// state and is safe for concurrent use; every call returns a fresh collection.
type Importer struct {
	rules                Rules
	registry             *archive.Registry
	essentialOutputsFile string
	logger               *slog.Logger
	tracer               trace.Tracer
	metrics              *infrastructure.PipelineMetrics
}

// Option configures an Importer
type Option func(*Importer)

// WithRules replaces the default cleaning rules
func WithRules(rules Rules) Option {
	return func(im *Importer) { im.rules = rules }
}

// WithTracer sets the tracer used for pipeline spans
func WithTracer(tracer trace.Tracer) Option {
	return func(im *Importer) { im.tracer = tracer }
}

// WithMetrics sets the instruments recording stage durations
func WithMetrics(metrics *infrastructure.PipelineMetrics) Option {
	return func(im *Importer) { im.metrics = metrics }
}

// NewImporter creates an importer reading archives through registry and the
// allow-list at essentialOutputsFile
func NewImporter(registry *archive.Registry, essentialOutputsFile string, logger *slog.Logger, opts ...Option) *Importer {
	im := &Importer{
		rules:                DefaultRules(),
		registry:             registry,
		essentialOutputsFile: essentialOutputsFile,
		logger:               logger.With(slog.String("component", "importer")),
		tracer:               otel.Tracer("gdxtoolbox/dataprocessing"),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportGDXFile imports an archive with the default readers, rules and
// allow-list. gdxdump is looked up on PATH.
func ImportGDXFile(ctx context.Context, filename, folderPath string, onlyEssentialOutputs bool) (domain.Collection, error) {
	logger := slog.Default()
	registry := archive.NewRegistry(
		archive.NewGDXReader("gdxdump", nil, logger),
		archive.NewXLSXReader(logger),
	)
	return NewImporter(registry, DefaultEssentialOutputsFile, logger).
		Import(ctx, filename, folderPath, onlyEssentialOutputs)
}

// ResolvePath appends the default extension when filename has no supported
// one and joins it onto folderPath
func (im *Importer) ResolvePath(filename, folderPath string) string {
	if !im.registry.Supports(extensionOf(filename)) {
		filename = filename + "." + DefaultExtension
	}
	if folderPath == "" {
		return filename
	}
	return filepath.Join(folderPath, filename)
}

// extensionOf returns the text after the last dot, or "" without a dot
func extensionOf(filename string) string {
	base := filepath.Base(filename)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// Import reads the archive and returns the cleaned collection. On failure no
// partial collection is returned.
func (im *Importer) Import(ctx context.Context, filename, folderPath string, onlyEssentialOutputs bool) (domain.Collection, error) {
	path := im.ResolvePath(filename, folderPath)
	format := extensionOf(path)
	runID := uuid.NewString()

	ctx, span := im.tracer.Start(ctx, "pipeline.import", trace.WithAttributes(
		attribute.String("import.run_id", runID),
		attribute.String("archive.path", path),
		attribute.Bool("only_essential_outputs", onlyEssentialOutputs),
	))
	defer span.End()

	start := time.Now()
	tables, err := im.importPath(ctx, path, onlyEssentialOutputs)
	infrastructure.RecordImportMetrics(ctx, im.metrics, format, time.Since(start), len(tables), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("tables", len(tables)))
	im.logger.InfoContext(ctx, "Data fetch successful",
		slog.String("run_id", runID),
		slog.String("archive", filepath.Base(path)),
		slog.Int("tables", len(tables)),
		slog.Duration("duration", time.Since(start)))
	return tables, nil
}

func (im *Importer) importPath(ctx context.Context, path string, onlyEssentialOutputs bool) (domain.Collection, error) {
	reader, err := im.registry.ForPath(path)
	if err != nil {
		return nil, err
	}

	var tables domain.Collection
	err = im.stage(ctx, "read", func(ctx context.Context) (int, error) {
		var readErr error
		tables, readErr = reader.Read(ctx, path)
		return 0, readErr
	})
	if err != nil {
		return nil, err
	}

	if err := im.Clean(ctx, tables, onlyEssentialOutputs); err != nil {
		return nil, err
	}
	return tables, nil
}

// Clean applies the cleaning stages to tables in place: empty tables, junk
// keys, junk columns, the optional allow-list, column normalization and age
// classes, in that order.
//
// The age step requires its tables to be present. A table deliberately
// excluded by the allow-list is skipped instead.
func (im *Importer) Clean(ctx context.Context, tables domain.Collection, onlyEssentialOutputs bool) error {
	before := len(tables)
	im.logger.InfoContext(ctx, "Cleaning up data", slog.Int("tables", before))

	stages := []struct {
		name string
		run  func() int
	}{
		{"remove_empty", func() int { return len(RemoveEmpty(tables)) }},
		{"remove_junk_keys", func() int { return len(RemoveJunkKeys(tables, im.rules)) }},
		{"remove_junk_columns", func() int {
			RemoveJunkColumns(tables, im.rules)
			return 0
		}},
	}
	for _, s := range stages {
		run := s.run
		if err := im.stage(ctx, s.name, func(context.Context) (int, error) { return run(), nil }); err != nil {
			return err
		}
	}

	ageTables := im.rules.AgeTables
	if onlyEssentialOutputs {
		var allowed []string
		err := im.stage(ctx, "essential_outputs", func(context.Context) (int, error) {
			var loadErr error
			allowed, loadErr = LoadEssentialOutputs(im.essentialOutputsFile)
			if loadErr != nil {
				return 0, loadErr
			}
			return len(FilterEssentialOutputs(tables, allowed)), nil
		})
		if err != nil {
			return err
		}
		ageTables = im.allowedAgeTables(ctx, allowed)
	}

	err := im.stage(ctx, "normalize_columns", func(ctx context.Context) (int, error) {
		NormalizeColumns(ctx, tables, im.rules, im.logger)
		return 0, nil
	})
	if err != nil {
		return err
	}

	err = im.stage(ctx, "normalize_age_classes", func(context.Context) (int, error) {
		return 0, NormalizeAgeClasses(tables, ageTables, im.rules)
	})
	if err != nil {
		return err
	}

	im.logger.InfoContext(ctx, "Cleanup complete",
		slog.Int("tables_before", before),
		slog.Int("tables_after", len(tables)))
	return nil
}

// allowedAgeTables returns the age tables the allow-list keeps
func (im *Importer) allowedAgeTables(ctx context.Context, allowed []string) []string {
	keep := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		keep[name] = true
	}

	var out []string
	for _, name := range im.rules.AgeTables {
		if keep[name] {
			out = append(out, name)
			continue
		}
		im.logger.InfoContext(ctx, "age table excluded by essential outputs list",
			slog.String("table", name))
	}
	return out
}

// stage runs one pipeline step inside a span and records its duration and
// the number of tables it removed
func (im *Importer) stage(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) error {
	ctx, span := im.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	removed, err := fn(ctx)
	duration := time.Since(start)
	infrastructure.RecordStageMetrics(ctx, im.metrics, name, duration, removed)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	span.SetAttributes(attribute.Int("tables.removed", removed))
	im.logger.DebugContext(ctx, "stage complete",
		slog.String("stage", name),
		slog.Int("tables_removed", removed),
		slog.Duration("duration", duration))
	return nil
}
