package exporter

import (
	"bytes"
	"encoding/json"

	"salescli/pkg/contracts/domain"
)

// Number is a JSON number that encodes missing and non-finite values as null
type Number domain.NullFloat

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	if !domain.NullFloat(n).Finite() {
		return []byte("null"), nil
	}
	return []byte(formatFloat(n.Float64)), nil
}

// ProductDocument is one entry of the top products list
type ProductDocument struct {
	Product string `json:"product"`
	Revenue Number `json:"revenue"`
}

// SummaryDocument is the serialized form of a domain.SalesSummary.
// Field order here is the output order; region keys are emitted sorted.
type SummaryDocument struct {
	RowCount       int               `json:"row_count"`
	Regions        int               `json:"regions"`
	TopProducts    []ProductDocument `json:"top_n_products_by_revenue"`
	RollingRevenue map[string]Number `json:"rolling_7d_revenue_by_region"`
}

// NewSummaryDocument converts a summary to its output document
func NewSummaryDocument(s domain.SalesSummary) SummaryDocument {
	doc := SummaryDocument{
		RowCount:       s.RowCount,
		Regions:        s.Regions,
		TopProducts:    make([]ProductDocument, 0, len(s.TopProducts)),
		RollingRevenue: make(map[string]Number, len(s.RollingRevenue)),
	}
	for _, p := range s.TopProducts {
		doc.TopProducts = append(doc.TopProducts, ProductDocument{Product: p.Product, Revenue: Number(p.Revenue)})
	}
	for region, v := range s.RollingRevenue {
		doc.RollingRevenue[region] = Number(v)
	}
	return doc
}

// MarshalSummary encodes s as JSON without a trailing newline. indent
// selects two-space indentation. Equal summaries always encode to equal bytes.
func MarshalSummary(s domain.SalesSummary, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(NewSummaryDocument(s)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
