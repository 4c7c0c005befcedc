package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/pkg/contracts/domain"
)

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewWriterSink(&buf, false)

	require.NoError(t, sink.Write(context.Background(), domain.SalesSummary{}))
	assert.Equal(t, `{"row_count":0,"regions":0,"top_n_products_by_revenue":[],"rolling_7d_revenue_by_region":{}}`+"\n", buf.String())
}

func TestFileSink_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "sales.summary.json")
	sink := NewFileSink(path, true, nil)

	require.NoError(t, sink.Write(context.Background(), exampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(3), doc["row_count"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileSink_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the summary document"), 0o644))

	sink := NewFileSink(path, false, nil)
	require.NoError(t, sink.Write(context.Background(), domain.SalesSummary{RowCount: 7}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"row_count":7`)
	assert.NotContains(t, string(data), "stale")
}

func TestFileSink_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	sink := NewFileSink(filepath.Join(blocker, "sub", "s.json"), false, nil)
	assert.Error(t, sink.Write(context.Background(), domain.SalesSummary{}))
}
