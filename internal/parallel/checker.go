package parallel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/nibzard/vine-go/internal/vine"
)

// ErrNotCanonical marks a file that parses but differs from its serialized
// form.
var ErrNotCanonical = errors.New("file is not in canonical form")

// FileReport describes one checked graph file.
type FileReport struct {
	Path      string
	Version   string
	Tasks     int
	Canonical bool
}

// Checker parses graph files concurrently.
type Checker struct {
	AllowLegacy bool

	// Workers bounds concurrent files. 0 uses one per CPU.
	Workers int

	// RequireCanonical turns a non-canonical file into ErrNotCanonical.
	RequireCanonical bool

	FailFast bool
}

// Check parses every path and returns one result per path, in the order
// given, plus the errors of the files that failed.
func (c Checker) Check(ctx context.Context, paths []string) ([]Result[FileReport], []error) {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool := NewPool[FileReport](ctx, workers, c.FailFast)
	opts := vine.ParseOptions{AllowLegacy: c.AllowLegacy}
	for _, path := range paths {
		pool.Submit(path, func(ctx context.Context) (FileReport, error) {
			report, err := CheckFile(path, opts)
			if err == nil && c.RequireCanonical && !report.Canonical {
				err = ErrNotCanonical
			}
			return report, err
		})
	}
	return pool.Wait()
}

// CheckFile reads and parses one graph file and reports whether its bytes
// already match the serializer output.
func CheckFile(path string, opts vine.ParseOptions) (FileReport, error) {
	report := FileReport{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("read graph file: %w", err)
	}
	g, err := vine.ParseWithOptions(string(data), opts)
	if err != nil {
		return report, err
	}
	text, err := vine.Serialize(g)
	if err != nil {
		return report, fmt.Errorf("serialize graph: %w", err)
	}
	report.Version = g.Version
	report.Tasks = g.Len()
	report.Canonical = bytes.Equal(data, []byte(text))
	return report, nil
}
