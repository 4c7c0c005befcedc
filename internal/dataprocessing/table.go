package dataprocessing

import (
	"strings"
)

// Required column names, in the order they are reported
const (
	ColDate    = "date"
	ColRegion  = "region"
	ColProduct = "product"
	ColUnits   = "units"
	ColPrice   = "price"
)

// RequiredColumns lists every column the pipeline needs
var RequiredColumns = []string{ColDate, ColRegion, ColProduct, ColUnits, ColPrice}

// Table is a raw record set as read by a loader: a header row and text cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows
func (t Table) Len() int {
	return len(t.Rows)
}

// cell returns row[idx], or "" when the row is short
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// columnIndex maps each required column to its position in the table.
// Exact names are tried first; if any is missing, the lookup is retried with
// lower-cased names, keeping the first column that lower-cases to a name.
// ok is false when some required column is still absent.
func columnIndex(columns []string) (idx map[string]int, found []string, ok bool) {
	exact := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := exact[c]; !dup {
			exact[c] = i
		}
	}
	if idx, ok := pick(exact); ok {
		return idx, columns, true
	}

	lowered := make(map[string]int, len(columns))
	found = make([]string, 0, len(columns))
	for i, c := range columns {
		lc := strings.ToLower(c)
		found = append(found, lc)
		if _, dup := lowered[lc]; !dup {
			lowered[lc] = i
		}
	}
	idx, ok = pick(lowered)
	return idx, found, ok
}

func pick(byName map[string]int) (map[string]int, bool) {
	idx := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		i, exists := byName[name]
		if !exists {
			return nil, false
		}
		idx[name] = i
	}
	return idx, true
}

// isBlankRow reports whether every cell of row is empty or whitespace
func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// newTable splits raw rows into header and data rows, dropping blank rows.
// An input without any rows yields a table with no columns.
func newTable(rows [][]string) Table {
	var t Table
	for _, row := range rows {
		if t.Columns == nil {
			if isBlankRow(row) {
				continue
			}
			t.Columns = append([]string{}, row...)
			continue
		}
		if isBlankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	return t
}
