package dataprocessing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	apperrors "salescli/internal/errors"
)

func TestParseSheetsURI(t *testing.T) {
	tests := []struct {
		source  string
		id, rng string
		wantErr bool
	}{
		{source: "sheets://abc123/Orders!A:E", id: "abc123", rng: "Orders!A:E"},
		{source: "sheets://abc123", id: "abc123"},
		{source: "sheets://abc123/", id: "abc123"},
		{source: "sheets:///A:E", wantErr: true},
		{source: "/tmp/sales.csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			id, rng, err := ParseSheetsURI(tt.source)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.rng, rng)
		})
	}
}

func TestTableFromValues(t *testing.T) {
	tbl := tableFromValues([][]interface{}{
		{"date", "region", "product", "units", "price", "promo"},
		{45292.0, "East", "A", 2.0, 10.25, true},
		{},
		{"2024-01-02", "West", nil, 1.0, 3.0, false},
	})

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"45292", "East", "A", "2", "10.25", "TRUE"}, tbl.Rows[0])
	assert.Equal(t, []string{"2024-01-02", "West", "", "1", "3", "FALSE"}, tbl.Rows[1])
}

func TestSheetsLoader_Load(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          "Sheet1!A1:E3",
			"majorDimension": "ROWS",
			"values": [][]interface{}{
				{"Date", "Region", "Product", "Units", "Price"},
				{45292, "East", "A", 2, 10},
			},
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	loader, err := NewSheetsLoader(ctx, "", "A:ZZ", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	tbl, err := loader.Load(ctx, "sheets://sheet-id")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-id/values/"))
	assert.True(t, strings.HasSuffix(gotPath, "A:ZZ"), gotPath)
	assert.Equal(t, "UNFORMATTED_VALUE", gotQuery["valueRenderOption"][0])
	assert.Equal(t, "SERIAL_NUMBER", gotQuery["dateTimeRenderOption"][0])

	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"45292", "East", "A", "2", "10"}, tbl.Rows[0])

	summary, _, err := NewPipeline(nil, nil, DefaultOptions()).Run(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, 20.0, summary.TopProducts[0].Revenue.Float64)
}

func TestSheetsLoader_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"Requested entity was not found."}}`, http.StatusNotFound)
	}))
	defer srv.Close()

	ctx := context.Background()
	loader, err := NewSheetsLoader(ctx, "", "A:ZZ", nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	_, err = loader.Load(ctx, "sheets://missing/A:E")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeNetwork, apperrors.TypeOf(err))
}

func TestNewSheetsLoader_MissingCredentials(t *testing.T) {
	_, err := NewSheetsLoader(context.Background(), "/does/not/exist.json", "A:ZZ", nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}
