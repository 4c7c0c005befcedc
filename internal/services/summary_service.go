package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"salescli/internal/config"
	"salescli/internal/dataprocessing"
	"salescli/internal/exporter"
	"salescli/internal/files"
	"salescli/internal/infrastructure"
	"salescli/internal/validation"
	"salescli/pkg/contracts/domain"
)

// Source kinds used as the metrics "source" attribute
const (
	SourceFile   = "file"
	SourceSheets = "sheets"
	SourceUpload = "upload"
)

// SourceKind classifies a source string for metrics
func SourceKind(source string) string {
	if dataprocessing.IsSheetsURI(source) {
		return SourceSheets
	}
	return SourceFile
}

// SummaryService loads inputs, runs the pipeline and records each run
type SummaryService struct {
	loader    dataprocessing.Loader
	pipeline  *dataprocessing.Pipeline
	metrics   *infrastructure.PipelineMetrics
	validator *validation.FileValidator
	discovery *files.Discovery
	tracer    trace.Tracer
	sheet     string
	workers   int
	logger    *slog.Logger
}

// NewSummaryService creates a summary service. metrics and tracer may be nil.
func NewSummaryService(loader dataprocessing.Loader, pipeline *dataprocessing.Pipeline, metrics *infrastructure.PipelineMetrics, tracer trace.Tracer, cfg config.InputConfig, batch config.BatchConfig, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("salescli/services")
	}
	if pipeline == nil {
		pipeline = dataprocessing.NewPipeline(logger, tracer, dataprocessing.DefaultOptions())
	}
	workers := batch.Workers
	if workers < 1 {
		workers = config.DefaultBatchWorkers
	}
	return &SummaryService{
		loader:    loader,
		pipeline:  pipeline,
		metrics:   metrics,
		validator: validation.NewFileValidator(logger),
		discovery: files.NewDiscovery(""),
		tracer:    tracer,
		sheet:     cfg.Sheet,
		workers:   workers,
		logger:    logger,
	}
}

// Summarize loads source (a file path or sheets:// URI) and summarizes it
func (s *SummaryService) Summarize(ctx context.Context, source string) (domain.SalesSummary, error) {
	start := time.Now()
	kind := SourceKind(source)

	t, err := s.load(ctx, source)
	if err != nil {
		s.metrics.RecordRun(ctx, kind, 0, 0, time.Since(start), err)
		return domain.SalesSummary{}, err
	}
	return s.run(ctx, kind, t, start)
}

// SummarizeReader reads an uploaded workbook or CSV named name and summarizes it
func (s *SummaryService) SummarizeReader(ctx context.Context, r io.Reader, name string) (domain.SalesSummary, error) {
	start := time.Now()

	t, err := dataprocessing.ReadTable(r, name, s.sheet)
	if err != nil {
		s.metrics.RecordRun(ctx, SourceUpload, 0, 0, time.Since(start), err)
		return domain.SalesSummary{}, err
	}
	return s.run(ctx, SourceUpload, t, start)
}

func (s *SummaryService) load(ctx context.Context, source string) (dataprocessing.Table, error) {
	ctx, span := s.tracer.Start(ctx, "summary.load",
		trace.WithAttributes(attribute.String("summary.source_kind", SourceKind(source))))
	defer span.End()

	if err := s.validator.ValidateSource(source); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid source")
		return dataprocessing.Table{}, err
	}

	t, err := s.loader.Load(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return dataprocessing.Table{}, err
	}
	span.SetAttributes(attribute.Int("summary.rows", t.Len()))
	return t, nil
}

func (s *SummaryService) run(ctx context.Context, kind string, t dataprocessing.Table, start time.Time) (domain.SalesSummary, error) {
	summary, stats, err := s.pipeline.Run(ctx, t)
	duration := time.Since(start)
	s.metrics.RecordRun(ctx, kind, stats.Rows, stats.Fallbacks, duration, err)
	if err != nil {
		s.logger.WarnContext(ctx, "summary failed",
			slog.String("source_kind", kind),
			slog.String("status", infrastructure.RunStatus(err)),
			slog.String("error", err.Error()))
		return domain.SalesSummary{}, err
	}

	s.logger.InfoContext(ctx, "summary completed",
		slog.String("source_kind", kind),
		slog.Int("rows", summary.RowCount),
		slog.Int("regions", summary.Regions),
		slog.Int("coercion_fallbacks", stats.Fallbacks),
		slog.Duration("duration", duration))
	return summary, nil
}

// BatchResult is the outcome for one input of a directory run
type BatchResult struct {
	Input   string
	Output  string
	Summary domain.SalesSummary
	Err     error
}

// SummarizeDirectory summarizes every spreadsheet in inDir and writes
// <name>.summary.json files into outDir. Inputs are processed concurrently,
// bounded by the configured worker count. A failing input does not stop the
// others; its error is reported in its BatchResult. Results follow the
// discovery order (by file name).
func (s *SummaryService) SummarizeDirectory(ctx context.Context, inDir, outDir string) ([]BatchResult, error) {
	if err := s.validator.ValidateInputDirectory(inDir); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateOutputDirectory(outDir); err != nil {
		return nil, err
	}

	inputs, err := s.discovery.FindSpreadsheets(inDir)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "batch started",
		slog.String("input_dir", inDir),
		slog.String("output_dir", outDir),
		slog.Int("inputs", len(inputs)),
		slog.Int("workers", s.workers))

	results := make([]BatchResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(s.workers)

	for i, in := range inputs {
		results[i] = BatchResult{Input: in.Path, Output: files.SummaryPath(outDir, in.Path)}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Summary, results[i].Err = s.summarizeTo(ctx, in.Path, results[i].Output)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.InfoContext(ctx, "batch completed",
		slog.Int("inputs", len(results)),
		slog.Int("failed", failed))

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *SummaryService) summarizeTo(ctx context.Context, input, output string) (domain.SalesSummary, error) {
	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateTraceID())
	summary, err := s.Summarize(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "batch input failed",
			slog.String("input", input),
			slog.String("error", err.Error()))
		return domain.SalesSummary{}, err
	}
	if err := exporter.NewFileSink(output, true, s.logger).Write(ctx, summary); err != nil {
		return domain.SalesSummary{}, err
	}
	return summary, nil
}
