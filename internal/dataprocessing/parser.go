package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"salescli/internal/errors"
)

// Loader reads a source into a Table
type Loader interface {
	Load(ctx context.Context, source string) (Table, error)
}

// FileLoader reads .xlsx/.xlsm workbooks and .csv files from disk
type FileLoader struct {
	// Sheet selects the worksheet; empty reads the first one.
	Sheet  string
	logger *slog.Logger
}

// NewFileLoader creates a file loader
func NewFileLoader(sheet string, logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLoader{Sheet: sheet, logger: logger}
}

// Load opens path and reads it according to its extension
func (l *FileLoader) Load(ctx context.Context, path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Table{}, errors.NewNotFoundError(path)
		}
		return Table{}, errors.NewStorageError("failed to open input", err).WithContext("path", path)
	}
	defer f.Close()

	t, err := ReadTable(f, filepath.Base(path), l.Sheet)
	if err != nil {
		return Table{}, err
	}

	l.logger.DebugContext(ctx, "input loaded",
		slog.String("path", path),
		slog.Int("columns", len(t.Columns)),
		slog.Int("rows", t.Len()))
	return t, nil
}

// IsSupported reports whether name has an extension ReadTable understands
func IsSupported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// ReadTable reads r as a workbook or CSV, chosen by the extension of name
func ReadTable(r io.Reader, name, sheet string) (Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r)
	case ".xlsx", ".xlsm":
		return ReadWorkbook(r, sheet)
	default:
		return Table{}, errors.NewAppValidationError(fmt.Sprintf("unsupported file type: %s", name)).
			WithContext("file", name)
	}
}

// ReadWorkbook reads one worksheet. Cells are read unformatted, so dates
// arrive as Excel serial numbers.
func ReadWorkbook(r io.Reader, sheet string) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, errors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, errors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, errors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("sheet", sheet)
	}

	return newTable(rows), nil
}

// ReadCSV reads comma-separated text. A UTF-8 byte order mark is dropped
// and rows may have differing lengths.
func ReadCSV(r io.Reader) (Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Table{}, errors.NewStorageError("failed to read csv", err)
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, errors.NewParsingError("failed to parse csv", err)
	}

	return newTable(rows), nil
}
