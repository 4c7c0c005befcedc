package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salescli/pkg/contracts/domain"
)

// Fixed pipeline parameters
const (
	DefaultTopN   = 3
	DefaultWindow = 7 * 24 * time.Hour
)

// Options holds the pipeline parameters. Production code always uses
// DefaultOptions; other values exist for boundary tests.
type Options struct {
	TopN   int
	Window time.Duration
}

// DefaultOptions returns top 3 products and a 7-day window
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, Window: DefaultWindow}
}

// Assemble combines the counts and both aggregates into a summary.
// RowCount counts every record; Regions counts distinct non-empty regions.
func Assemble(records []domain.SalesRecord, top []domain.ProductRevenue, rolling map[string]domain.NullFloat) domain.SalesSummary {
	regions := make(map[string]struct{})
	for _, r := range records {
		if r.Region != "" {
			regions[r.Region] = struct{}{}
		}
	}

	if top == nil {
		top = []domain.ProductRevenue{}
	}
	if rolling == nil {
		rolling = map[string]domain.NullFloat{}
	}

	return domain.SalesSummary{
		RowCount:       len(records),
		Regions:        len(regions),
		TopProducts:    top,
		RollingRevenue: rolling,
	}
}

// Pipeline runs normalization and aggregation over one table. Each Run is
// independent; a Pipeline holds no state between runs.
type Pipeline struct {
	opts       Options
	logger     *slog.Logger
	tracer     trace.Tracer
	normalizer *Normalizer
}

// NewPipeline creates a pipeline. A nil tracer uses the global provider.
func NewPipeline(logger *slog.Logger, tracer trace.Tracer, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer("salescli/dataprocessing")
	}
	return &Pipeline{
		opts:       opts,
		logger:     logger,
		tracer:     tracer,
		normalizer: NewNormalizer(logger),
	}
}

// Run normalizes t, derives revenue and builds the summary. Schema and date
// errors abort the run and no summary is returned.
func (p *Pipeline) Run(ctx context.Context, t Table) (domain.SalesSummary, NormalizeStats, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int("pipeline.input_rows", t.Len())))
	defer span.End()

	nctx, nspan := p.tracer.Start(ctx, "pipeline.normalize")
	records, stats, err := p.normalizer.Normalize(nctx, t)
	if err != nil {
		nspan.RecordError(err)
		nspan.SetStatus(codes.Error, err.Error())
		nspan.End()
		span.SetStatus(codes.Error, "normalization failed")
		return domain.SalesSummary{}, NormalizeStats{}, err
	}
	nspan.SetAttributes(
		attribute.Int("pipeline.coercion_fallbacks", stats.Fallbacks),
		attribute.Int("pipeline.undated_rows", stats.Undated))
	nspan.End()

	ComputeRevenue(records)

	_, tspan := p.tracer.Start(ctx, "pipeline.top_products")
	top := TopProducts(records, p.opts.TopN)
	tspan.End()

	_, rspan := p.tracer.Start(ctx, "pipeline.rolling")
	rolling := RollingRevenue(records, p.opts.Window)
	rspan.SetAttributes(attribute.Int("pipeline.regions", len(rolling)))
	rspan.End()

	summary := Assemble(records, top, rolling)

	p.logger.DebugContext(ctx, "pipeline completed",
		slog.Int("rows", summary.RowCount),
		slog.Int("regions", summary.Regions),
		slog.Int("coercion_fallbacks", stats.Fallbacks),
		slog.Int("undated_rows", stats.Undated))

	return summary, stats, nil
}
