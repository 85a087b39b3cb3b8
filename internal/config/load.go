package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/vine-go/internal/utils"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.vine/vine.toml or OS-specific config dir)
// 3. Project config file (vine.toml or .vine.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Sources is keyed by the TOML field name.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return load(fs, args, sources)
}

func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource) (*ConfigWithSources, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// Project file overrides user file.
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	loadFromEnv(cfg, sources)

	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// configFields returns the configurable field names used for source tracking.
func configFields() []string {
	return []string{
		"graph_file",
		"allow_legacy",
		"export_format",
		"ready_strategy",
		"jobs",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.GraphFile = DefaultGraphFile
	cfg.AllowLegacy = false
	cfg.ExportFormat = DefaultExportFormat
	cfg.ReadyStrategy = DefaultReadyOrder
	cfg.Jobs = 0
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// loadConfigFile decodes the TOML file at path over cfg. Keys present in the
// file are recorded in sources when sources is non-nil.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if sources != nil {
		for _, field := range configFields() {
			if md.IsDefined(field) {
				sources[field] = source
			}
		}
	}
	return nil
}

// finalizeConfig computes derived values and checks enumerated fields.
func finalizeConfig(cfg *Config) error {
	format, ok := utils.NormalizeFormat(cfg.ExportFormat)
	if !ok {
		return fmt.Errorf("invalid export_format %q (want json or yaml)", cfg.ExportFormat)
	}
	cfg.ExportFormat = format

	strategy, ok := utils.NormalizeStrategy(cfg.ReadyStrategy)
	if !ok {
		return fmt.Errorf("invalid ready_strategy %q (want order, priority, unblocking or mixed)", cfg.ReadyStrategy)
	}
	cfg.ReadyStrategy = strategy
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", cfg.Jobs)
	}

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.GraphFile = expandPath(cfg.GraphFile)
	if cfg.GraphFile == "" {
		return fmt.Errorf("graph_file must not be empty")
	}
	if !filepath.IsAbs(cfg.GraphFile) {
		cfg.GraphFile = filepath.Join(cfg.ProjectRoot, cfg.GraphFile)
	}

	return nil
}

// GetConfigFile returns the config file that contributed values, preferring
// the project file over the user file. It returns "" when only defaults,
// environment and flags were used.
func (cws *ConfigWithSources) GetConfigFile() string {
	var project, user bool
	for _, source := range cws.Sources {
		switch source {
		case SourceProjFile:
			project = true
		case SourceUserFile:
			user = true
		}
	}
	if project {
		if p := findProjectConfigFile(); p != "" {
			return p
		}
	}
	if user {
		return findUserConfigFile()
	}
	return ""
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
