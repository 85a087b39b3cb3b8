package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/vine-go/internal/vine"
)

// resolvePath makes path absolute against the project root. An empty path
// selects the configured graph file.
func (a *app) resolvePath(path string) string {
	if path == "" {
		return a.cfg.GraphFile
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(a.cfg.ProjectRoot, path)
	}
	return path
}

// loadGraph reads and parses the graph at path.
func (a *app) loadGraph(path string) (*vine.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	g, err := vine.ParseWithOptions(string(data), vine.ParseOptions{AllowLegacy: a.cfg.AllowLegacy})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.log.Debug("loaded graph", "path", path, "tasks", g.Len(), "version", g.Version)
	return g, nil
}

// saveGraph serializes g and replaces the file at path.
func (a *app) saveGraph(ctx context.Context, path string, g *vine.Graph) error {
	text, err := vine.Serialize(g)
	if err != nil {
		return fmt.Errorf("serialize graph: %w", err)
	}
	if err := writeFileAtomic(ctx, path, []byte(text)); err != nil {
		return err
	}
	a.log.Info("wrote graph", "path", path, "tasks", g.Len())
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place. Nothing is written once ctx is done.
func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// newFlagSet returns a subcommand flag set that reports to stderr.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("vine "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}
