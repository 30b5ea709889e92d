package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gdxtoolbox/internal/charts"
	"gdxtoolbox/internal/middleware"
	"gdxtoolbox/internal/services"
)

func newTablesCommand(opts *options) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "tables <archive>",
		Short: "Import an archive and list its tables",
		Example: `  # Essential outputs of results/baseline.gdx
  gdxtool tables baseline

  # Every table that survives cleaning
  gdxtool tables runs/policy.xlsx --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, name := opts.scenario(args[0])
			summaries, err := service.Tables(cmd.Context(), name, !all)
			if err != nil {
				return err
			}
			renderSummaries(cmd.OutOrStdout(), summaries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "keep tables outside the essential outputs list")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	var (
		all    bool
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "show <archive> <table>",
		Short: "Print the rows of one table",
		Example: `  gdxtool show baseline EmissionAnnual --limit 5
  gdxtool show baseline LU_Area --all --output csv > lu_area.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			service, name := opts.scenario(args[0])
			tbl, err := service.Table(cmd.Context(), name, args[1], !all)
			if err != nil {
				return err
			}
			return writeTable(cmd.OutOrStdout(), tbl, format, limit)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "look the table up among all tables, not only essential outputs")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows for table and json output (0 for all)")
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table|csv|json)")
	registerFormatCompletion(cmd)
	return cmd
}

func newChartCommand(opts *options) *cobra.Command {
	var (
		params charts.Params
		format string
	)

	cmd := &cobra.Command{
		Use:   "chart <archive> <chart>",
		Short: "Build a chart frame from an archive",
		Long: `Build a chart frame from the essential outputs of an archive and print it.

Charts: ` + strings.Join(charts.Names(), ", "),
		Example: `  gdxtool chart baseline emissions
  gdxtool chart baseline land_use --year 2050
  gdxtool chart baseline commodity_production --commodities COAL,NGAS --cumulative --scale-by 1000`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return charts.Names(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if err := middleware.NewValidationMiddleware(opts.logger).ValidateStruct(params); err != nil {
				return err
			}
			service, name := opts.scenario(args[0])
			frames, err := service.Chart(cmd.Context(), name, args[1], params)
			if err != nil {
				return err
			}
			return writeFrames(cmd.OutOrStdout(), frames, format)
		},
	}

	addChartFlags(cmd, &params)
	cmd.Flags().StringVarP(&format, "output", "o", formatTable, "output format (table|csv|json)")
	registerFormatCompletion(cmd)
	return cmd
}

func newCommoditiesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "commodities <archive>",
		Short: "List the commodities accepted by the commodity charts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, name := opts.scenario(args[0])
			commodities, err := service.Commodities(cmd.Context(), name)
			if err != nil {
				return err
			}
			for _, c := range commodities {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var (
		out           string
		format        string
		all           bool
		includeTables bool
		chartNames    []string
		params        charts.Params
	)

	cmd := &cobra.Command{
		Use:   "export <archive>",
		Short: "Export an archive to an Excel workbook or CSV files",
		Long: `Export an archive.

xlsx writes one sheet per chart frame with a native Excel chart, plus one
sheet per table with --tables. Without --charts every chart the archive can
build is included.

csv writes <out>/<table>.csv for every table.`,
		Example: `  gdxtool export baseline --out baseline.xlsx
  gdxtool export baseline --out baseline.xlsx --charts land_use --year 2050 --tables
  gdxtool export baseline --out csv/baseline --format csv --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			dst, err := filepath.Abs(out)
			if err != nil {
				return err
			}
			service, name := opts.scenario(args[0])
			w := cmd.OutOrStdout()

			switch format {
			case "csv":
				written, err := service.ExportCSV(cmd.Context(), name, dst, !all)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "wrote %d CSV files to %s\n", len(written), dst)
				return nil

			case "xlsx":
				if err := middleware.NewValidationMiddleware(opts.logger).ValidateStruct(params); err != nil {
					return err
				}
				var buf bytes.Buffer
				req := services.ExportRequest{
					Charts:        chartNames,
					Params:        params,
					IncludeTables: includeTables,
					EssentialOnly: !all,
				}
				if err := service.ExportWorkbook(cmd.Context(), &buf, name, req); err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
					return err
				}
				if err := os.WriteFile(dst, buf.Bytes(), 0644); err != nil {
					return fmt.Errorf("failed to write workbook: %w", err)
				}
				fmt.Fprintf(w, "wrote %s\n", dst)
				return nil

			default:
				return fmt.Errorf("unknown export format %q (want xlsx or csv)", format)
			}
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output workbook (xlsx) or directory (csv)")
	cmd.Flags().StringVar(&format, "format", "xlsx", "export format (xlsx|csv)")
	cmd.Flags().BoolVar(&all, "all", false, "keep tables outside the essential outputs list")
	cmd.Flags().BoolVar(&includeTables, "tables", false, "add one sheet per table to the workbook")
	cmd.Flags().StringSliceVar(&chartNames, "charts", nil, "charts to include (default: all that can be built)")
	addChartFlags(cmd, &params)

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"xlsx", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("charts", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return charts.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func addChartFlags(cmd *cobra.Command, p *charts.Params) {
	cmd.Flags().IntVar(&p.Year, "year", 0, "milestone year (land_use, secondary_forest)")
	cmd.Flags().StringVar(&p.Unit, "unit", "", "display unit (net_emissions_co2eq and commodity charts)")
	cmd.Flags().BoolVar(&p.Joules, "joules", false, "show electricity in joules instead of watt-hours")
	cmd.Flags().StringSliceVar(&p.Commodities, "commodities", nil, "commodities for commodity_production")
	cmd.Flags().StringVar(&p.Commodity, "commodity", "", "commodity for commodity_by_process")
	cmd.Flags().BoolVar(&p.Stacked, "stacked", false, "stack the series")
	cmd.Flags().BoolVar(&p.Cumulative, "cumulative", false, "accumulate values over the years")
	cmd.Flags().Float64Var(&p.ScaleBy, "scale-by", 0, "divide values by this factor")
}

func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})
}
