package config

// Default models file path.
const DefaultModels = "models.yaml"

// Default source settings.
const (
	DefaultSourceName     = "main"
	DefaultSourceDatabase = "relations.db"
	DefaultStmtCapacity   = 0
)

// Default logging settings.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// Default telemetry settings.
const (
	DefaultTelemetryEndpoint    = ""
	DefaultTelemetryInsecure    = false
	DefaultTelemetrySampleRatio = 0.0
	DefaultTelemetryEnvironment = ""
)
