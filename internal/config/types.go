package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultGraphFile    = "plan.vine"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultExportFormat = "json"
	DefaultReadyOrder   = "order"
)

// Config holds the full configuration for the vine CLI.
type Config struct {
	// Graph document, relative to the project root unless absolute.
	GraphFile string `toml:"graph_file"`

	// Accept documents without a magic line.
	AllowLegacy bool `toml:"allow_legacy"`

	// Default format for the export command (json or yaml).
	ExportFormat string `toml:"export_format"`

	// How "vine ready" orders actionable tasks: order, priority, unblocking or mixed.
	ReadyStrategy string `toml:"ready_strategy"`

	// Files checked concurrently by validate and fmt -check. 0 uses one per CPU.
	Jobs int `toml:"jobs"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}
