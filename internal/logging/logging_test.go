package logging

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/vine-go/internal/config"
	"github.com/nibzard/vine-go/internal/vine"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{" ERROR ", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		input string
		want  log.Formatter
	}{
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"text", log.TextFormatter},
		{"JSON", log.JSONFormatter},
		{"", log.TextFormatter},
	}
	for _, tt := range tests {
		if got := ParseFormatter(tt.input); got != tt.want {
			t.Errorf("ParseFormatter(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFromConfigRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(&buf, &config.Config{LogLevel: "warn", LogFormat: "text"})

	logger.Info("hidden")
	logger.Warn("shown", "task", "a")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") || !strings.Contains(out, "task=a") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := FromConfig(&buf, &config.Config{LogLevel: "debug", LogFormat: "json"})

	logger.Debug("parsed", "tasks", 3)

	out := buf.String()
	if !strings.Contains(out, `"msg":"parsed"`) || !strings.Contains(out, `"tasks":3`) {
		t.Errorf("unexpected JSON output: %q", out)
	}
}

func TestNewTest(t *testing.T) {
	var buf bytes.Buffer
	NewTest(&buf).Debug("checking", "file", "plan.vine")
	if got := buf.String(); !strings.HasPrefix(got, "DEBU") || !strings.Contains(got, "file=plan.vine") {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestErrorFields(t *testing.T) {
	_, parseErr := vine.Parse("vine 1.0.0\n---\nnot a header\n")
	_, cycleErr := vine.Parse("vine 1.0.0\n---\n[a] A (complete)\n-> a\n")

	tests := []struct {
		name string
		err  error
		want []any
	}{
		{"plain error", errors.New("boom"), nil},
		{"parse error", parseErr, []any{"line", 3}},
		{"cycle", fmt.Errorf("load plan.vine: %w", cycleErr), []any{"constraint", "no-cycles", "path", "a->a"}},
		{
			"engine error",
			&vine.EngineError{Op: "set status", ID: "x", Err: vine.ErrTaskNotFound},
			[]any{"op", "set status", "task", "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorFields(tt.err)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("ErrorFields: got %v, want %v", got, tt.want)
			}
		})
	}
}
