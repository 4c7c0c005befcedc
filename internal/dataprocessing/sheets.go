package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"salescli/internal/errors"
)

// SheetsScheme prefixes Google Sheets sources: sheets://<spreadsheet-id>[/<range>]
const SheetsScheme = "sheets://"

// IsSheetsURI reports whether source names a Google Sheets range
func IsSheetsURI(source string) bool {
	return strings.HasPrefix(source, SheetsScheme)
}

// ParseSheetsURI splits a sheets:// source into spreadsheet ID and A1 range.
// The range is empty when the source has none.
func ParseSheetsURI(source string) (id, rng string, err error) {
	if !IsSheetsURI(source) {
		return "", "", errors.NewAppValidationError(fmt.Sprintf("not a sheets source: %s", source))
	}
	rest := strings.TrimPrefix(source, SheetsScheme)
	id, rng, _ = strings.Cut(rest, "/")
	if id == "" {
		return "", "", errors.NewAppValidationError(fmt.Sprintf("missing spreadsheet id: %s", source))
	}
	return id, rng, nil
}

// SheetsLoader reads a range of a Google spreadsheet through the Sheets API
type SheetsLoader struct {
	service      *sheets.Service
	defaultRange string
	logger       *slog.Logger
}

// NewSheetsLoader creates a loader authenticated with a service account key
// file. Extra client options are appended, so callers may override the
// endpoint or authentication.
func NewSheetsLoader(ctx context.Context, credentialsFile, defaultRange string, logger *slog.Logger, opts ...option.ClientOption) (*SheetsLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var clientOpts []option.ClientOption
	if credentialsFile != "" {
		credentialsJSON, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, errors.NewConfigError("failed to read sheets credentials", err).
				WithContext("path", credentialsFile)
		}
		clientOpts = append(clientOpts, option.WithCredentialsJSON(credentialsJSON))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, errors.NewNetworkError("failed to create sheets service", err)
	}

	return &SheetsLoader{
		service:      service,
		defaultRange: defaultRange,
		logger:       logger,
	}, nil
}

// Load fetches the range named by a sheets:// source. Values are requested
// unformatted, with dates as serial numbers.
func (l *SheetsLoader) Load(ctx context.Context, source string) (Table, error) {
	id, rng, err := ParseSheetsURI(source)
	if err != nil {
		return Table{}, err
	}
	if rng == "" {
		rng = l.defaultRange
	}

	resp, err := l.service.Spreadsheets.Values.Get(id, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return Table{}, errors.NewNetworkError("failed to fetch sheet values", err).
			WithContext("spreadsheet_id", id).
			WithContext("range", rng)
	}

	t := tableFromValues(resp.Values)
	l.logger.DebugContext(ctx, "sheet loaded",
		slog.String("spreadsheet_id", id),
		slog.String("range", rng),
		slog.Int("rows", t.Len()))
	return t, nil
}

// tableFromValues converts Sheets API cells to text cells
func tableFromValues(values [][]interface{}) Table {
	rows := make([][]string, 0, len(values))
	for _, vrow := range values {
		row := make([]string, len(vrow))
		for i, v := range vrow {
			row[i] = cellText(v)
		}
		rows = append(rows, row)
	}
	return newTable(rows)
}

func cellText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(val)
	}
}

// SourceLoader routes sheets:// sources to Sheets and everything else to Files
type SourceLoader struct {
	Files  *FileLoader
	Sheets Loader
}

// Load implements Loader
func (l *SourceLoader) Load(ctx context.Context, source string) (Table, error) {
	if IsSheetsURI(source) {
		if l.Sheets == nil {
			return Table{}, errors.NewConfigError("sheets sources need input.credentials_file to be configured", nil)
		}
		return l.Sheets.Load(ctx, source)
	}
	return l.Files.Load(ctx, source)
}
