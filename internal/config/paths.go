package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths
type Paths struct {
	BaseDir              string
	ResultsDir           string
	ReportsDir           string
	LogsDir              string
	EssentialOutputsFile string
}

// GetPaths resolves the configured paths. Relative entries are joined onto
// BaseDir, which falls back to the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:              base,
		ResultsDir:           resolve(cfg.ResultsDir),
		ReportsDir:           resolve(cfg.ReportsDir),
		LogsDir:              resolve(cfg.LogsDir),
		EssentialOutputsFile: resolve(cfg.EssentialOutputsFile),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist.
// The results directory is input only and is never created.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ResultPath returns the path of an archive inside the results directory
func (p *Paths) ResultPath(filename string) string {
	return filepath.Join(p.ResultsDir, filename)
}

// ReportPath returns the path of a generated report
func (p *Paths) ReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("results_dir", p.ResultsDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("essential_outputs_file", p.EssentialOutputsFile),
		slog.Bool("essential_outputs_present", FileExists(p.EssentialOutputsFile)),
	)
}
