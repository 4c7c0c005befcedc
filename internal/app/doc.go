// Package app wires the sales summary application together.
//
// NewApplication builds, in order:
//
//	1. OpenTelemetry providers (stdout traces, Prometheus metrics)
//	2. Pipeline metrics, input loaders and the summary service
//	3. The health service and its readiness checks
//	4. The chi router and the HTTP server
//
// The CLI uses Application.SummaryService for one-shot and batch runs and
// Application.Run for the HTTP server. Run returns after the context is
// cancelled and the server has shut down gracefully.
package app
