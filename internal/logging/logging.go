// Package logging builds the leveled console logger used by the CLI.
package logging

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/vine-go/internal/config"
	"github.com/nibzard/vine-go/internal/vine"
)

// Options holds configuration for console logging.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultOptions returns default options for console logging.
func DefaultOptions() Options {
	return Options{
		Level:     log.InfoLevel,
		Formatter: log.TextFormatter,
		Prefix:    "vine",
	}
}

// New creates a logger that writes to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// FromConfig creates a logger from the logging fields of cfg.
func FromConfig(w io.Writer, cfg *config.Config) *log.Logger {
	opts := DefaultOptions()
	opts.Level = ParseLevel(cfg.LogLevel)
	opts.Formatter = ParseFormatter(cfg.LogFormat)
	opts.ReportTimestamp = cfg.LogTimestamps
	opts.ReportCaller = cfg.LogCaller
	return New(w, opts)
}

// NewTest creates a debug-level logger without timestamps or prefix, for
// assertions on output.
func NewTest(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:     log.DebugLevel,
		Formatter: log.TextFormatter,
	})
}

// ParseLevel parses a level name. Unknown names fall back to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name. Unknown names fall back to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ErrorFields extracts structured key/value pairs from engine errors so a
// failure can be logged with its line, constraint or task id.
func ErrorFields(err error) []any {
	var fields []any

	var pe *vine.ParseError
	if errors.As(err, &pe) {
		fields = append(fields, "line", pe.Line)
	}

	var ve *vine.ValidationError
	if errors.As(err, &ve) {
		fields = append(fields, "constraint", string(ve.Constraint))
		switch d := ve.Details.(type) {
		case vine.MissingDependencyDetails:
			fields = append(fields, "task", d.TaskID, "dependency", d.DependencyID)
		case vine.CycleDetails:
			fields = append(fields, "path", strings.Join(d.Path, "->"))
		case vine.IslandDetails:
			fields = append(fields, "islands", strings.Join(d.IDs, ","))
		case vine.MissingRefURIDetails:
			fields = append(fields, "task", d.TaskID)
		}
	}

	var ee *vine.EngineError
	if errors.As(err, &ee) {
		fields = append(fields, "op", ee.Op)
		if ee.ID != "" {
			fields = append(fields, "task", ee.ID)
		}
	}
	return fields
}
