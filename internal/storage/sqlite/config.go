package sqlite

// Config holds SQL store settings
type Config struct {
	// DSN is the sqlite data source, e.g. "spectrum.db" or ":memory:"
	DSN string `mapstructure:"dsn"`

	// LegacySchema creates the rooms table without the display metadata
	// columns, matching deployments that predate them
	LegacySchema bool `mapstructure:"legacy_schema"`

	// LogQueries turns on gorm's SQL logging
	LogQueries bool `mapstructure:"log_queries"`
}

// DefaultConfig returns a file-backed store in the working directory
func DefaultConfig() Config {
	return Config{
		DSN: "spectrum.db",
	}
}
