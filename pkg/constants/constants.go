// Package constants provides shared constants for the lift-progression application.
package constants

// Progression defaults
const (
	// DefaultIncrement is the weight added on a successful session when neither
	// the lift nor the settings supply one.
	DefaultIncrement = 5.0

	// LinearFailureDeloadPercentage is the fraction removed from a linear
	// progression set after repeated missed goals.
	LinearFailureDeloadPercentage = 0.10

	// LinearMissesBeforeDeload is the missed goal count at which a linear
	// progression set is deloaded.
	LinearMissesBeforeDeload = 2

	// DefaultWaveLength is the number of microcycles per wave.
	DefaultWaveLength = 4

	// DefaultWaveDeloadPercentage is the fraction removed from the wave peak
	// during a deload microcycle.
	DefaultWaveDeloadPercentage = 0.15
)

// Rounding constants
const (
	// DecimalPrecision is the precision for weight rounding (2 decimal places)
	DecimalPrecision = 100
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
