package config

import "time"

// Application constants
const (
	AppName     = "Sales Summary"
	ServiceName = "salesummary"

	// EnvPrefix namespaces environment variables, e.g. SALES_SERVER_PORT
	EnvPrefix = "SALES"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// HTTP
	DefaultRequestTimeout = 60 * time.Second
	DefaultMaxUploadBytes = 32 << 20 // 32MB

	// Input
	DefaultSheetsRange  = "A:ZZ"
	DefaultBatchWorkers = 4

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Output
	SummaryFileSuffix = ".summary.json"
)

// API Endpoints
const (
	APIPrefix         = "/api/v1"
	HealthEndpoint    = "/healthz"
	ReadyEndpoint     = "/readyz"
	MetricsEndpoint   = "/metrics"
	SummariesEndpoint = "/summaries"
)

// DefaultConfigLocations are searched in order when no config path is given
var DefaultConfigLocations = []string{
	"salesummary.yaml",
	"configs/salesummary.yaml",
}

// SupportedExtensions lists the file types the file loader understands
var SupportedExtensions = []string{".xlsx", ".xlsm", ".csv"}
