// Package http implements the HTTP handlers of the summary service.
//
// Handlers stay thin: they parse the request, call a service and render
// the result. Errors go through errors.ErrorHandler, which answers with
// RFC 7807 problem documents.
//
// Routes:
//
//	POST /api/v1/summaries   multipart "file" field or text/csv body
//	GET  /api/v1/version
//	GET  /healthz            also HEAD
//	GET  /readyz             also HEAD; 503 when a check fails
package http
