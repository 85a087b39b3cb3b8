package config

import "flag"

// parseFlags defines the global flags on fs, parses args and applies every
// flag that was set explicitly. If sources is non-nil, it records SourceFlag
// for those fields.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("vine", flag.ContinueOnError)
	}

	var (
		graphFile, logLevel, logFormat   string
		legacy, logTimestamps, logCaller bool
	)
	fs.StringVar(&graphFile, "file", cfg.GraphFile, "Path to the graph document")
	fs.BoolVar(&legacy, "legacy", cfg.AllowLegacy, "Accept documents without a magic line")
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&logTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&logCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToField := map[string]string{
		"file":           "graph_file",
		"legacy":         "allow_legacy",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"log-caller":     "log_caller",
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.GraphFile = graphFile
		case "legacy":
			cfg.AllowLegacy = legacy
		case "log-level":
			cfg.LogLevel = logLevel
		case "log-format":
			cfg.LogFormat = logFormat
		case "log-timestamps":
			cfg.LogTimestamps = logTimestamps
		case "log-caller":
			cfg.LogCaller = logCaller
		default:
			return
		}
		if sources != nil {
			sources[flagToField[f.Name]] = SourceFlag
		}
	})

	return nil
}
