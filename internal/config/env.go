package config

import (
	"fmt"
	"os"
)

// loadFromEnv overrides config from VINE_* environment variables. If sources
// is non-nil, it records SourceEnv for every variable that was set.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	track := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("VINE_FILE"); v != "" {
		cfg.GraphFile = v
		track("graph_file")
	}
	if v := os.Getenv("VINE_ALLOW_LEGACY"); v != "" {
		cfg.AllowLegacy = boolFromString(v)
		track("allow_legacy")
	}
	if v := os.Getenv("VINE_EXPORT_FORMAT"); v != "" {
		cfg.ExportFormat = v
		track("export_format")
	}

	if v := os.Getenv("VINE_READY_STRATEGY"); v != "" {
		cfg.ReadyStrategy = v
		track("ready_strategy")
	}
	if v := os.Getenv("VINE_JOBS"); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			cfg.Jobs = i
			track("jobs")
		}
	}

	// Logging configuration
	if v := os.Getenv("VINE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		track("log_level")
	}
	if v := os.Getenv("VINE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		track("log_format")
	}
	if v := os.Getenv("VINE_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		track("log_timestamps")
	}
	if v := os.Getenv("VINE_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		track("log_caller")
	}
}
