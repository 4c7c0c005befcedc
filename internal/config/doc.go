// Package config provides configuration loading for the sales summary tool.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values
//	2. A YAML file (--config flag, or salesummary.yaml / configs/salesummary.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables use the SALES_ prefix followed by the section
// and field name:
//
//	SALES_SERVER_PORT=8080
//	SALES_LOGGING_LEVEL=debug
//	SALES_RATE_LIMIT_RPS=50
//	SALES_INPUT_SHEET=Orders
//	SALES_INPUT_CREDENTIALS_FILE=/etc/salesummary/sa.json
//	SALES_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load validates the merged result with go-playground/validator struct tags
// and reports every failing field in one error.
//
// The pipeline parameters themselves (top 3 products, 7-day window) are not
// configurable; they live in the dataprocessing package.
package config
