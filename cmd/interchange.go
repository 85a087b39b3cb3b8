package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/nibzard/vine-go/internal/export"
	"github.com/nibzard/vine-go/internal/utils"
	"github.com/nibzard/vine-go/internal/vine"
)

// exportCommand writes the graph as a JSON or YAML document.
func (a *app) exportCommand(ctx context.Context, args []string) error {
	flags := a.newFlagSet("export")
	format := flags.String("format", "", "Output format (json or yaml); defaults to the -o extension or export_format")
	out := flags.String("o", "", "Write to this file instead of stdout")
	if err := flags.Parse(args); err != nil {
		return err
	}
	path, err := a.optionalFile(flags.Args(), "export [-format f] [-o file] [file]")
	if err != nil {
		return err
	}

	chosen := *format
	if chosen == "" && *out != "" {
		if f, err := export.FormatForPath(*out); err == nil {
			chosen = f
		}
	}
	if chosen == "" {
		chosen = a.cfg.ExportFormat
	}
	if _, ok := utils.NormalizeFormat(chosen); !ok {
		return fmt.Errorf("unsupported export format %q", chosen)
	}

	g, err := a.loadGraph(path)
	if err != nil {
		return err
	}
	data, err := export.Encode(g, chosen)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if *out == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	target := a.resolvePath(*out)
	if err := writeFileAtomic(ctx, target, data); err != nil {
		return err
	}
	a.log.Info("exported graph", "path", target, "format", chosen, "tasks", g.Len())
	return nil
}

// importCommand converts a JSON or YAML document into canonical VINE text.
// It writes to the configured graph file unless -o is given, and refuses to
// replace an existing file without -force. "-o -" prints to stdout.
func (a *app) importCommand(ctx context.Context, args []string) error {
	flags := a.newFlagSet("import")
	format := flags.String("format", "", "Input format (json or yaml); defaults to the file extension")
	out := flags.String("o", "", "Destination file, or - for stdout")
	force := flags.Bool("force", false, "Replace an existing destination file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if err := expectArgs(flags.Args(), 1, 1, "import [-format f] [-o file] [-force] <file>"); err != nil {
		return err
	}
	src := a.resolvePath(flags.Arg(0))

	chosen := *format
	if chosen == "" {
		f, err := export.FormatForPath(src)
		if err != nil {
			return err
		}
		chosen = f
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	g, err := export.Decode(data, chosen)
	if err != nil {
		return fmt.Errorf("%s: %w", src, err)
	}

	if *out == "-" {
		text, err := vine.Serialize(g)
		if err != nil {
			return fmt.Errorf("serialize graph: %w", err)
		}
		_, err = fmt.Fprint(a.stdout, text)
		return err
	}
	target := a.resolvePath(*out)
	if !*force {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%s already exists (use -force to replace it)", target)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", target, err)
		}
	}
	return a.saveGraph(ctx, target, g)
}
