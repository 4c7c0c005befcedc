// Package exporter serializes sales summaries and writes them out.
//
// MarshalSummary produces the output document:
//
//	{
//	  "row_count": 3,
//	  "regions": 1,
//	  "top_n_products_by_revenue": [{"product": "A", "revenue": 30.0}],
//	  "rolling_7d_revenue_by_region": {"East": 10.0}
//	}
//
// This is the only place missing, NaN and infinite values are turned into
// null. Floats always carry a decimal point or exponent.
//
// Sinks:
//
//	exporter.NewWriterSink(os.Stdout, true)    // indented, to stdout
//	exporter.NewFileSink(path, true, logger)   // atomic temp file + rename
package exporter
