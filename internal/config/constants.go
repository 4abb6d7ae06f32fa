package config

// Default local paths
const (
	// DefaultCredentialsPath is the default path for the credential database
	DefaultCredentialsPath = "./fable-credentials.db"

	// DefaultOutputDir is where export files are written
	DefaultOutputDir = "./outputs"

	// DefaultRawDataDir is where raw API payloads are persisted for auditing
	DefaultRawDataDir = "./raw_data"
)
