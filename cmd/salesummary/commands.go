package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"salescli/internal/app"
	"salescli/internal/config"
	"salescli/internal/exporter"
	"salescli/internal/infrastructure"
	"salescli/pkg/contracts"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	sheet      string
	logLevel   string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "salesummary",
		Short:         "Summarize sales spreadsheets",
		Long:          "salesummary reads sales records (Date, Region, Product, Units, Price) and reports row and region counts, the top 3 products by revenue and each region's trailing 7-day mean daily revenue.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file (default: salesummary.yaml or configs/salesummary.yaml)")
	root.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Worksheet to read from workbooks (default: first sheet)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	root.AddCommand(
		newSummarizeCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger
// and application
func (o *rootOptions) setup(ctx context.Context) (*app.Application, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.sheet != "" {
		cfg.Input.Sheet = o.sheet
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, o.stderr)
	if err != nil {
		return nil, nil, err
	}

	application, err := app.NewApplication(ctx, cfg, logger)
	if err != nil {
		_ = infrastructure.CloseLogFile()
		return nil, nil, err
	}
	return application, logger, nil
}

func (o *rootOptions) teardown(ctx context.Context, application *app.Application) {
	_ = application.Close(context.WithoutCancel(ctx))
	_ = infrastructure.CloseLogFile()
}

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	var (
		output  string
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "summarize <file|sheets://id/range>",
		Short: "Summarize one spreadsheet, CSV file or Google Sheets range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := infrastructure.EnsureTraceID(cmd.Context())

			application, _, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer opts.teardown(ctx, application)

			summary, err := application.SummaryService.Summarize(ctx, args[0])
			if err != nil {
				return err
			}

			var sink exporter.Sink = exporter.NewWriterSink(opts.stdout, !compact)
			if output != "" {
				sink = exporter.NewFileSink(output, !compact, application.Logger)
			}
			return sink.Write(ctx, summary)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the summary to a file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "Write compact JSON instead of indented JSON")
	return cmd
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "batch <input-dir>",
		Short: "Summarize every spreadsheet in a directory into <name>.summary.json files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			inDir := args[0]
			if outDir == "" {
				outDir = inDir
			}

			application, logger, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer opts.teardown(ctx, application)

			results, err := application.SummaryService.SummarizeDirectory(ctx, inDir, outDir)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(opts.stderr, "FAIL %s: %v\n", r.Input, r.Err)
					continue
				}
				fmt.Fprintf(opts.stderr, "ok   %s -> %s\n", r.Input, r.Output)
			}
			logger.InfoContext(ctx, "batch finished",
				slog.Int("inputs", len(results)),
				slog.Int("failed", failed))

			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for summary files (default: the input directory)")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the summary HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			application, _, err := opts.setup(ctx)
			if err != nil {
				return err
			}
			defer infrastructure.CloseLogFile()

			if cmd.Flags().Changed("port") {
				application.Config.Server.Port = port
				application.Server.Addr = application.Config.Address()
			}
			return application.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override the configured listen port")
	return cmd
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(opts.stdout, contracts.GetFullVersionString())
		},
	}
}
