package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"salescli/internal/errors"
	"salescli/pkg/contracts/domain"
)

// dateLayouts are tried in order for text date cells
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
	"2006 01 02",
}

// maxExcelSerial is 9999-12-31, the last date a workbook can hold
const maxExcelSerial = 2958465

// NormalizeStats describes what normalization absorbed without failing
type NormalizeStats struct {
	Rows      int
	Fallbacks int // units or price cells coerced to zero
	Undated   int // rows whose date cell was empty
}

// Normalizer turns a raw Table into typed sales records
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a normalizer; a nil logger uses slog.Default
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize resolves the required columns and coerces every row.
//
// A missing required column is a schema error and an unparseable non-empty
// date is a parse error; both abort with no records. Non-numeric units or
// price become 0 and are only counted. Revenue is left unset.
func (n *Normalizer) Normalize(ctx context.Context, t Table) ([]domain.SalesRecord, NormalizeStats, error) {
	idx, found, ok := columnIndex(t.Columns)
	if !ok {
		return nil, NormalizeStats{}, errors.NewSchemaError(RequiredColumns, found)
	}

	stats := NormalizeStats{Rows: len(t.Rows)}
	records := make([]domain.SalesRecord, 0, len(t.Rows))

	for i, row := range t.Rows {
		rowNum := i + 1

		date, dated, err := parseDate(cell(row, idx[ColDate]))
		if err != nil {
			return nil, NormalizeStats{}, errors.NewDateParseError(rowNum, cell(row, idx[ColDate]))
		}
		if !dated {
			stats.Undated++
		}

		units, unitsOK := coerceNumber(cell(row, idx[ColUnits]))
		price, priceOK := coerceNumber(cell(row, idx[ColPrice]))
		if !unitsOK || !priceOK {
			stats.Fallbacks++
			n.logger.DebugContext(ctx, "numeric coercion fallback",
				slog.Int("row", rowNum),
				slog.String("units", cell(row, idx[ColUnits])),
				slog.String("price", cell(row, idx[ColPrice])))
		}

		records = append(records, domain.SalesRecord{
			Date:    date,
			Dated:   dated,
			Region:  cell(row, idx[ColRegion]),
			Product: cell(row, idx[ColProduct]),
			Units:   units,
			Price:   price,
		})
	}

	return records, stats, nil
}

// parseDate interprets a date cell. An empty cell is a missing date, not an
// error. A bare number is read as an Excel serial date.
func parseDate(raw string) (time.Time, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 0 && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return t, true, nil
		}
	}

	return time.Time{}, false, errors.ErrDateParse
}

// coerceNumber parses a units or price cell. Anything that is not a number,
// including NaN, becomes 0 with ok=false. Infinities are kept.
func coerceNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
