// Package config tests configuration loading.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var vineEnv = []string{
	"VINE_FILE",
	"VINE_ALLOW_LEGACY",
	"VINE_EXPORT_FORMAT",
	"VINE_READY_STRATEGY",
	"VINE_JOBS",
	"VINE_LOG_LEVEL",
	"VINE_LOG_FORMAT",
	"VINE_LOG_TIMESTAMPS",
	"VINE_LOG_CALLER",
}

// isolate points every config location at fresh temp directories and makes
// the project directory the working directory.
func isolate(t *testing.T) (home, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range vineEnv {
		t.Setenv(name, "")
	}
	t.Chdir(project)
	return home, project
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.GraphFile != DefaultGraphFile {
		t.Errorf("GraphFile: got %q, want %q", cfg.GraphFile, DefaultGraphFile)
	}
	if cfg.ExportFormat != DefaultExportFormat {
		t.Errorf("ExportFormat: got %q, want %q", cfg.ExportFormat, DefaultExportFormat)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging: got %q/%q, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.AllowLegacy {
		t.Error("AllowLegacy: got true, want false")
	}
}

func TestLoadDefaults(t *testing.T) {
	_, project := isolate(t)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(cfg.ProjectRoot, DefaultGraphFile); cfg.GraphFile != want {
		t.Errorf("GraphFile: got %q, want %q", cfg.GraphFile, want)
	}
	got, _ := filepath.EvalSymlinks(cfg.ProjectRoot)
	want, _ := filepath.EvalSymlinks(project)
	if got != want {
		t.Errorf("ProjectRoot: got %q, want %q", got, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("VINE_FILE", "custom.vine")
	t.Setenv("VINE_ALLOW_LEGACY", "yes")
	t.Setenv("VINE_EXPORT_FORMAT", "yml")
	t.Setenv("VINE_LOG_LEVEL", "debug")
	t.Setenv("VINE_LOG_TIMESTAMPS", "1")

	cfg := &Config{}
	setDefaults(cfg)
	loadFromEnv(cfg, nil)

	if cfg.GraphFile != "custom.vine" {
		t.Errorf("GraphFile: got %q, want custom.vine", cfg.GraphFile)
	}
	if !cfg.AllowLegacy {
		t.Error("AllowLegacy: got false, want true")
	}
	if cfg.ExportFormat != "yml" {
		t.Errorf("ExportFormat: got %q, want yml", cfg.ExportFormat)
	}
	if cfg.LogLevel != "debug" || !cfg.LogTimestamps {
		t.Errorf("logging: got level %q timestamps %v", cfg.LogLevel, cfg.LogTimestamps)
	}

	if err := finalizeConfig(cfg); err != nil {
		t.Fatalf("finalizeConfig: %v", err)
	}
	if cfg.ExportFormat != "yaml" {
		t.Errorf("ExportFormat after finalize: got %q, want yaml", cfg.ExportFormat)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "vine.toml")
	writeFile(t, configFile, `graph_file = "tasks.vine"
allow_legacy = true
log_format = "json"
`)

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	if err := loadConfigFile(cfg, configFile, sources, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.GraphFile != "tasks.vine" {
		t.Errorf("GraphFile: got %q, want tasks.vine", cfg.GraphFile)
	}
	if !cfg.AllowLegacy {
		t.Error("AllowLegacy: got false, want true")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel should keep its default: got %q", cfg.LogLevel)
	}
	if sources["graph_file"] != SourceProjFile || sources["allow_legacy"] != SourceProjFile {
		t.Errorf("sources: got %v", sources)
	}
	if _, ok := sources["log_level"]; ok {
		t.Errorf("log_level should not be tracked: got %v", sources)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "graph_file = \"a.vine\"\nschedule = \"odd-even\"\n", "unknown keys: schedule"},
		{"wrong type", "allow_legacy = \"maybe\"\n", "allow_legacy"},
		{"syntax", "graph_file = \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vine.toml")
			writeFile(t, path, tt.content)
			cfg := &Config{}
			err := loadConfigFile(cfg, path, nil, SourceProjFile)
			if err == nil {
				t.Fatal("loadConfigFile: got nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	args := []string{"-file", "flag.vine", "-legacy", "-log-level", "warn", "summary"}
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if cfg.GraphFile != "flag.vine" {
		t.Errorf("GraphFile: got %q, want flag.vine", cfg.GraphFile)
	}
	if !cfg.AllowLegacy {
		t.Error("AllowLegacy: got false, want true")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn", cfg.LogLevel)
	}
	if cfg.LogFormat != DefaultLogFormat {
		t.Errorf("LogFormat: got %q, want default", cfg.LogFormat)
	}
	if got := fs.Args(); len(got) != 1 || got[0] != "summary" {
		t.Errorf("remaining args: got %v, want [summary]", got)
	}
	if sources["graph_file"] != SourceFlag || sources["log_level"] != SourceFlag {
		t.Errorf("sources: got %v", sources)
	}
	if _, ok := sources["log_format"]; ok {
		t.Errorf("unset flag should not be tracked: got %v", sources)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home, project := isolate(t)
	writeFile(t, filepath.Join(home, ".vine", "vine.toml"), `graph_file = "user.vine"
log_level = "debug"
log_format = "logfmt"
export_format = "yaml"
`)
	writeFile(t, filepath.Join(project, "vine.toml"), `graph_file = "project.vine"
log_level = "warn"
`)
	t.Setenv("VINE_LOG_LEVEL", "error")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-log-format", "json"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if want := filepath.Join(cfg.ProjectRoot, "project.vine"); cfg.GraphFile != want {
		t.Errorf("GraphFile: got %q, want %q", cfg.GraphFile, want)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel: got %q, want error", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: got %q, want json", cfg.LogFormat)
	}
	if cfg.ExportFormat != "yaml" {
		t.Errorf("ExportFormat: got %q, want yaml", cfg.ExportFormat)
	}

	wantSources := map[string]ConfigSource{
		"graph_file":     SourceProjFile,
		"log_level":      SourceEnv,
		"log_format":     SourceFlag,
		"export_format":  SourceUserFile,
		"allow_legacy":   SourceDefault,
		"log_timestamps": SourceDefault,
		"log_caller":     SourceDefault,
	}
	for field, want := range wantSources {
		if got := cws.Sources[field]; got != want {
			t.Errorf("Sources[%s]: got %q, want %q", field, got, want)
		}
	}
	if got := cws.GetConfigFile(); got != "vine.toml" {
		t.Errorf("GetConfigFile: got %q, want vine.toml", got)
	}
}

func TestLoadUserConfigInXDGDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup only applies on Linux/BSD")
	}
	home, _ := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "vine", "vine.toml"), "allow_legacy = true\n")

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	if !cws.Config.AllowLegacy {
		t.Error("AllowLegacy: got false, want true")
	}
	if got, want := cws.GetConfigFile(), filepath.Join(home, ".config", "vine", "vine.toml"); got != want {
		t.Errorf("GetConfigFile: got %q, want %q", got, want)
	}
}

func TestLoadRejectsBadExportFormat(t *testing.T) {
	isolate(t)
	t.Setenv("VINE_EXPORT_FORMAT", "xml")

	_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err == nil || !strings.Contains(err.Error(), "export_format") {
		t.Errorf("Load: got %v, want export_format error", err)
	}
}

func TestLoadReadyStrategyAndJobs(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		isolate(t)
		t.Setenv("VINE_READY_STRATEGY", "Deps")
		t.Setenv("VINE_JOBS", "4")

		cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
		if err != nil {
			t.Fatalf("LoadWithSources: %v", err)
		}
		if cws.Config.ReadyStrategy != "unblocking" || cws.Config.Jobs != 4 {
			t.Errorf("got strategy %q jobs %d", cws.Config.ReadyStrategy, cws.Config.Jobs)
		}
		if cws.Sources["ready_strategy"] != SourceEnv || cws.Sources["jobs"] != SourceEnv {
			t.Errorf("sources: %v", cws.Sources)
		}
	})

	t.Run("non-numeric jobs are ignored", func(t *testing.T) {
		isolate(t)
		t.Setenv("VINE_JOBS", "many")
		cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Jobs != 0 {
			t.Errorf("Jobs: got %d, want 0", cfg.Jobs)
		}
	})

	t.Run("unknown strategy", func(t *testing.T) {
		isolate(t)
		t.Setenv("VINE_READY_STRATEGY", "random")
		_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
		if err == nil || !strings.Contains(err.Error(), "ready_strategy") {
			t.Errorf("Load: got %v, want ready_strategy error", err)
		}
	})

	t.Run("negative jobs", func(t *testing.T) {
		_, project := isolate(t)
		writeFile(t, filepath.Join(project, "vine.toml"), "jobs = -1\n")
		_, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
		if err == nil || !strings.Contains(err.Error(), "jobs") {
			t.Errorf("Load: got %v, want jobs error", err)
		}
	})
}

func TestExampleConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vine.toml")
	writeFile(t, path, ExampleConfig())

	cfg := &Config{}
	if err := loadConfigFile(cfg, path, nil, SourceUserFile); err != nil {
		t.Fatalf("example config does not load: %v", err)
	}
	if cfg.GraphFile != DefaultGraphFile {
		t.Errorf("GraphFile: got %q, want %q", cfg.GraphFile, DefaultGraphFile)
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"off", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := boolFromString(tt.input)
			if got != tt.want {
				t.Errorf("boolFromString(%q): got %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/plan.vine", filepath.Join(home, "plan.vine")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}
	if runtime.GOOS != "windows" {
		t.Setenv("VINE_TEST_DIR", "/srv/plans")
		tests = append(tests,
			struct{ input, want string }{`~\test`, `~\test`},
			struct{ input, want string }{"$VINE_TEST_DIR/a.vine", "/srv/plans/a.vine"},
		)
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
