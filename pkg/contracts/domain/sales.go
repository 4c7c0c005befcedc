package domain

import (
	"math"
	"time"
)

// NullFloat is a float64 that may be missing.
// A NaN is never Valid; infinities are Valid but not Finite.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps v, treating NaN as missing
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: !math.IsNaN(v)}
}

// Null returns a missing value
func Null() NullFloat {
	return NullFloat{}
}

// Finite reports whether the value is present and neither NaN nor infinite
func (n NullFloat) Finite() bool {
	return n.Valid && !math.IsNaN(n.Float64) && !math.IsInf(n.Float64, 0)
}

// SalesRecord is one typed sales transaction after normalization.
type SalesRecord struct {
	Date    time.Time
	Dated   bool // false when the date cell was empty
	Region  string
	Product string
	Units   float64
	Price   float64
	Revenue NullFloat
}

// DailyRegionRevenue is the summed revenue of one region on one calendar day.
type DailyRegionRevenue struct {
	Region  string
	Date    time.Time
	Revenue NullFloat
}

// ProductRevenue is the summed revenue of one product.
type ProductRevenue struct {
	Product string
	Revenue NullFloat
}

// RollingPoint is the trailing mean of daily revenue anchored at Date.
type RollingPoint struct {
	Date time.Time
	Mean NullFloat
}

// SalesSummary is the result of one pipeline run.
type SalesSummary struct {
	RowCount       int
	Regions        int
	TopProducts    []ProductRevenue
	RollingRevenue map[string]NullFloat
}
