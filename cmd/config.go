package cmd

import (
	"fmt"

	"github.com/nibzard/vine-go/internal/config"
)

// configCommand prints the effective configuration and where each value
// came from. With -example it prints a commented config file instead.
func (a *app) configCommand(args []string) error {
	fs := a.newFlagSet("config")
	example := fs.Bool("example", false, "Print an example vine.toml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := expectArgs(fs.Args(), 0, 0, "config [-example]"); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(a.stdout, config.ExampleConfig())
		return nil
	}

	cfg := a.cfg
	p := newPrinter(a.stdout)
	rows := []struct {
		key   string
		value any
	}{
		{"graph_file", cfg.GraphFile},
		{"allow_legacy", cfg.AllowLegacy},
		{"export_format", cfg.ExportFormat},
		{"ready_strategy", cfg.ReadyStrategy},
		{"jobs", cfg.Jobs},
		{"log_level", cfg.LogLevel},
		{"log_format", cfg.LogFormat},
		{"log_timestamps", cfg.LogTimestamps},
		{"log_caller", cfg.LogCaller},
	}
	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(a.stdout, "Config file: %s\n\n", file)
	}
	for _, row := range rows {
		source := a.sources.Sources[row.key]
		fmt.Fprintf(a.stdout, "%-15s %-30v %s\n", row.key, row.value, p.muted.Render("("+string(source)+")"))
	}
	return nil
}
