// Package dataprocessing turns a table of sales transactions into a summary.
//
// # Data Flow
//
//	Loader → Table → Normalizer → ComputeRevenue → {TopProducts, RollingRevenue} → Assemble
//
// Loaders read .xlsx/.xlsm workbooks (excelize), .csv files (encoding/csv) and
// Google Sheets ranges (sheets://<id>/<range>) into a Table of text cells.
// The Normalizer resolves the required columns (date, region, product, units,
// price), matching exact names first and lower-cased names second, and
// produces typed domain.SalesRecord values.
//
// # Missing Data
//
// Revenue is a domain.NullFloat. Sums skip missing values; a group with no
// valid value, or whose total is NaN, is missing. Serialization turns every
// missing or non-finite value into JSON null.
//
// # Rolling Window
//
// RollingRevenue sums revenue per region and calendar day and averages the
// daily sums inside a trailing window of calendar time, (day - 7d, day].
// Only the mean at each region's last day is reported.
//
// # Errors
//
// A missing required column returns an errors.ErrTypeSchema AppError; an
// unparseable date returns errors.ErrTypeParsing wrapping errors.ErrDateParse.
// Non-numeric units or price never fail a run; they count as zero.
package dataprocessing
