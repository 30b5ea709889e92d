// Package cli provides the gdxtool command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"gdxtoolbox/internal/app"
	"gdxtoolbox/internal/config"
	"gdxtoolbox/internal/infrastructure"
	"gdxtoolbox/internal/services"
)

// options holds the global flags and the state PersistentPreRunE builds
type options struct {
	configFile string
	folder     string
	logLevel   string

	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "gdxtool",
		Short: "Import, inspect, chart and export model result archives",
		Long: `gdxtool reads GDX (through gdxdump) and XLSX result archives, cleans them
into named tables and turns them into charts, CSV files or Excel workbooks.

An archive argument is a file path, or a bare scenario name looked up in
--folder (default: the configured results directory).`,
		Version: app.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			// one trace ID per invocation ties its log records together
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
			return opts.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.providers != nil {
				return opts.providers.Shutdown(cmd.Context())
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.folder, "folder", "", "folder holding the archives (default: results directory)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newTablesCommand(opts))
	rootCmd.AddCommand(newShowCommand(opts))
	rootCmd.AddCommand(newChartCommand(opts))
	rootCmd.AddCommand(newCommoditiesCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))

	return rootCmd
}

// load reads the configuration and sets up logging and tracing. Logs go to
// stderr so command output stays pipeable.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return err
	}

	otelCfg := app.OTelConfig(cfg)
	otelCfg.EnableMetrics = false
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	o.cfg, o.paths, o.logger, o.providers = cfg, paths, logger, providers
	return nil
}

// scenario resolves an archive argument to a scenario service rooted at the
// archive's folder and the name to look up there
func (o *options) scenario(archive string) (*services.ScenarioService, string) {
	folder := o.folder
	if dir := filepath.Dir(archive); dir != "." {
		folder = dir
	}
	if folder == "" {
		folder = o.paths.ResultsDir
	}

	paths := *o.paths
	paths.ResultsDir = folder

	container := app.NewServices(o.cfg, &paths, o.providers, infrastructure.NoopPipelineMetrics(), o.logger)
	return container.Scenario, filepath.Base(archive)
}
