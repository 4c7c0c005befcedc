// Package services implements the application layer between the transports
// (CLI and HTTP) and the dataprocessing pipeline.
//
// SummaryService turns a source into a summary: it validates and loads the
// input, runs the pipeline and records one metrics observation per run.
// SummarizeDirectory fans a directory of inputs out over a bounded errgroup
// and writes one summary file per input.
//
// HealthService backs the liveness and readiness endpoints.
package services
