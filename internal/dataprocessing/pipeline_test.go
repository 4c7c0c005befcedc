package dataprocessing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apperrors "salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

func salesTable(rows ...[]string) Table {
	return Table{Columns: []string{"Date", "Region", "Product", "Units", "Price"}, Rows: rows}
}

func TestPipeline_Run_Example(t *testing.T) {
	tbl := salesTable(
		[]string{"2024-01-01", "East", "A", "2", "10.0"},
		[]string{"2024-01-01", "East", "B", "1", "5.0"},
		[]string{"2024-01-08", "East", "A", "1", "10.0"},
	)

	summary, stats, err := NewPipeline(nil, nil, DefaultOptions()).Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.RowCount)
	assert.Equal(t, 1, summary.Regions)
	assert.Equal(t, []domain.ProductRevenue{
		{Product: "A", Revenue: domain.Float(30)},
		{Product: "B", Revenue: domain.Float(5)},
	}, summary.TopProducts)
	// 2024-01-01 is outside (01-01, 01-08]
	assert.Equal(t, map[string]domain.NullFloat{"East": domain.Float(10)}, summary.RollingRevenue)
	assert.Zero(t, stats.Fallbacks)
}

func TestPipeline_Run_OffsetDatesShareUTCDay(t *testing.T) {
	tbl := salesTable(
		[]string{"2024-01-01T23:00:00-05:00", "E", "A", "1", "10"},
		[]string{"2024-01-02T01:00:00Z", "E", "A", "1", "20"},
	)

	summary, _, err := NewPipeline(nil, nil, DefaultOptions()).Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.NullFloat{"E": domain.Float(30)}, summary.RollingRevenue)
}

func TestPipeline_Run_NonNumericPrice(t *testing.T) {
	tbl := salesTable(
		[]string{"2024-01-01", "East", "A", "2", "abc"},
		[]string{"2024-01-02", "West", "B", "1", "4"},
	)

	summary, stats, err := NewPipeline(nil, nil, DefaultOptions()).Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RowCount)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.Equal(t, []domain.ProductRevenue{
		{Product: "B", Revenue: domain.Float(4)},
		{Product: "A", Revenue: domain.Float(0)},
	}, summary.TopProducts)
	assert.Equal(t, domain.Float(0), summary.RollingRevenue["East"])
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	summary, _, err := NewPipeline(nil, nil, DefaultOptions()).Run(context.Background(), salesTable())
	require.NoError(t, err)

	assert.Equal(t, domain.SalesSummary{
		TopProducts:    []domain.ProductRevenue{},
		RollingRevenue: map[string]domain.NullFloat{},
	}, summary)
}

func TestPipeline_Run_FatalErrors(t *testing.T) {
	tests := []struct {
		name   string
		table  Table
		target error
	}{
		{
			name:   "missing column",
			table:  Table{Columns: []string{"date", "region", "product", "units"}, Rows: [][]string{}},
			target: apperrors.ErrSchema,
		},
		{
			name:   "bad date",
			table:  salesTable([]string{"31/31/2024", "East", "A", "1", "1"}),
			target: apperrors.ErrDateParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, _, err := NewPipeline(nil, nil, DefaultOptions()).Run(context.Background(), tt.table)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))
			assert.Equal(t, domain.SalesSummary{}, summary)
		})
	}
}

func TestPipeline_Run_Counts(t *testing.T) {
	tbl := salesTable(
		[]string{"2024-01-01", "East", "A", "1", "1"},
		[]string{"2024-01-01", "east", "A", "x", "1"},
		[]string{"", "West", "B", "1", "1"},
		[]string{"2024-01-03", "", "C", "1", "1"},
		[]string{"2024-01-04", "East", "", "1", "1"},
	)

	summary, stats, err := NewPipeline(nil, nil, DefaultOptions()).Run(context.Background(), tbl)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.RowCount, "every record counts")
	assert.Equal(t, 3, summary.Regions, "East, east, West")
	assert.Equal(t, 1, stats.Undated)
	assert.Len(t, summary.RollingRevenue, 3)
	assert.False(t, summary.RollingRevenue["West"].Valid)
}

func TestPipeline_Run_Options(t *testing.T) {
	tbl := salesTable(
		[]string{"2024-01-01", "East", "A", "1", "1"},
		[]string{"2024-01-02", "East", "B", "1", "2"},
	)

	summary, _, err := NewPipeline(nil, nil, Options{TopN: 0, Window: 0}).Run(context.Background(), tbl)
	require.NoError(t, err)
	assert.Empty(t, summary.TopProducts)
	assert.False(t, summary.RollingRevenue["East"].Valid)

	summary, _, err = NewPipeline(nil, nil, Options{TopN: 1, Window: 48 * time.Hour}).Run(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductRevenue{{Product: "B", Revenue: domain.Float(2)}}, summary.TopProducts)
	assert.Equal(t, domain.Float(1.5), summary.RollingRevenue["East"])
}

func TestPipeline_Run_Idempotent(t *testing.T) {
	tbl := salesTable(
		[]string{"2024-01-01", "East", "A", "2", "10"},
		[]string{"2024-01-03", "West", "B", "1", "5"},
		[]string{"2024-01-05", "East", "C", "3", "1.5"},
	)
	p := NewPipeline(nil, nil, DefaultOptions())

	first, _, err := p.Run(context.Background(), tbl)
	require.NoError(t, err)
	second, _, err := p.Run(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPipeline_Run_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	p := NewPipeline(nil, tp.Tracer("test"), DefaultOptions())
	_, _, err := p.Run(context.Background(), salesTable([]string{"2024-01-01", "East", "A", "1", "1"}))
	require.NoError(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{"pipeline.normalize", "pipeline.top_products", "pipeline.rolling", "pipeline.run"}, names)
}

func TestAssemble_NilAggregates(t *testing.T) {
	summary := Assemble(nil, nil, nil)
	assert.NotNil(t, summary.TopProducts)
	assert.NotNil(t, summary.RollingRevenue)
}
