package http

import (
	"context"
	"io"

	"salescli/pkg/contracts/domain"
)

// SummaryServiceInterface defines the summary operations the handlers need
type SummaryServiceInterface interface {
	SummarizeReader(ctx context.Context, r io.Reader, name string) (domain.SalesSummary, error)
}
