package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/vine-go/internal/parallel"
	"github.com/nibzard/vine-go/internal/vine"
	"github.com/nibzard/vine-go/internal/watch"
)

// optionalFile returns the single optional file argument.
func (a *app) optionalFile(args []string, usage string) (string, error) {
	if err := expectArgs(args, 0, 1, usage); err != nil {
		return "", err
	}
	if len(args) == 1 {
		return a.resolvePath(args[0]), nil
	}
	return a.resolvePath(""), nil
}

// resolvePaths resolves file arguments, defaulting to the graph file.
func (a *app) resolvePaths(args []string) []string {
	if len(args) == 0 {
		return []string{a.resolvePath("")}
	}
	paths := make([]string, len(args))
	for i, arg := range args {
		paths[i] = a.resolvePath(arg)
	}
	return paths
}

// checkFiles runs the concurrent checker and prints one line per file.
func (a *app) checkFiles(ctx context.Context, paths []string, jobs int, requireCanonical bool) error {
	checker := parallel.Checker{
		AllowLegacy:      a.cfg.AllowLegacy,
		Workers:          jobs,
		RequireCanonical: requireCanonical,
	}
	results, errs := checker.Check(ctx, paths)

	p := newPrinter(a.stdout)
	for _, r := range results {
		switch {
		case r.Skipped:
			fmt.Fprintf(a.stdout, "%s %s: skipped\n", p.muted.Render("-"), r.Key)
		case r.Err != nil:
			fmt.Fprintf(a.stdout, "%s %s: %v\n", p.failure.Render("✗"), r.Key, r.Err)
		default:
			fmt.Fprintf(a.stdout, "%s %s: %d tasks, version %s\n", p.success.Render("✓"), r.Key, r.Value.Tasks, r.Value.Version)
		}
		a.log.Debug("checked file", "path", r.Key, "duration", r.Duration)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

// validateCommand parses one or more graphs and reports whether each is valid.
func (a *app) validateCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("validate")
	jobs := fs.Int("j", a.cfg.Jobs, "Files to check at once (0 = one per CPU)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return a.checkFiles(ctx, a.resolvePaths(fs.Args()), *jobs, false)
}

// watchCommand validates the files once, then again each time one of them
// is written, until interrupted.
func (a *app) watchCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("watch")
	debounce := fs.Duration("debounce", watch.DefaultDebounce, "Quiet period before a changed file is checked")
	jobs := fs.Int("j", a.cfg.Jobs, "Files to check at once (0 = one per CPU)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := a.resolvePaths(fs.Args())

	w, err := watch.New(paths, *debounce, a.log)
	if err != nil {
		return err
	}
	if err := a.checkFiles(ctx, paths, *jobs, false); err != nil && ctx.Err() == nil {
		a.log.Warn("initial check failed", "err", err)
	}
	a.log.Info("watching", "files", len(paths))
	return w.Run(ctx, func(path string) {
		if err := a.checkFiles(ctx, []string{path}, 1, false); err != nil && ctx.Err() == nil {
			a.log.Debug("check failed", "path", path, "err", err)
		}
	})
}

// fmtCommand prints a graph in canonical form, or rewrites it with -w.
func (a *app) fmtCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("fmt")
	write := fs.Bool("w", false, "Write the result back to the file")
	check := fs.Bool("check", false, "Fail if any file is not in canonical form")
	jobs := fs.Int("j", a.cfg.Jobs, "Files to check at once with -check (0 = one per CPU)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *check {
		return a.checkFiles(ctx, a.resolvePaths(fs.Args()), *jobs, true)
	}
	path, err := a.optionalFile(fs.Args(), "fmt [-w] [file]")
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read graph file: %w", err)
	}
	g, err := vine.ParseWithOptions(string(data), vine.ParseOptions{AllowLegacy: a.cfg.AllowLegacy})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	text, err := vine.Serialize(g)
	if err != nil {
		return fmt.Errorf("serialize graph: %w", err)
	}
	canonical := bytes.Equal(data, []byte(text))

	switch {
	case *write:
		if canonical {
			a.log.Debug("already canonical", "path", path)
			return nil
		}
		return a.saveGraph(ctx, path, g)
	default:
		_, err := fmt.Fprint(a.stdout, text)
		return err
	}
}

// summaryCommand prints task counts by status, the root and the leaf count.
func (a *app) summaryCommand(args []string) error {
	fs := a.newFlagSet("summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := a.optionalFile(fs.Args(), "summary [file]")
	if err != nil {
		return err
	}
	g, err := a.loadGraph(path)
	if err != nil {
		return err
	}
	s, err := g.Summary()
	if err != nil {
		return err
	}

	p := newPrinter(a.stdout)
	if g.Title != "" {
		fmt.Fprintf(a.stdout, "%s\n\n", p.bold.Render(g.Title))
	}
	fmt.Fprintf(a.stdout, "Root:   [%s] %s\n", s.RootID, s.RootName)
	fmt.Fprintf(a.stdout, "Tasks:  %d (%d references)\n", s.Total, s.Refs)
	fmt.Fprintf(a.stdout, "Leaves: %d\n\n", s.Leaves)
	for _, status := range vine.Statuses(g.Version) {
		fmt.Fprintf(a.stdout, "  %s %d\n", p.status(status), s.ByStatus[status])
	}
	return nil
}

// showCommand prints one task with its dependencies and dependants.
func (a *app) showCommand(args []string) error {
	if err := expectArgs(args, 1, 1, "show <id>"); err != nil {
		return err
	}
	g, err := a.loadGraph(a.resolvePath(""))
	if err != nil {
		return err
	}
	id := args[0]
	t, err := g.Task(id)
	if err != nil {
		return err
	}
	deps, err := g.Dependencies(id)
	if err != nil {
		return err
	}
	dependants, err := g.Dependants(id)
	if err != nil {
		return err
	}
	newPrinter(a.stdout).detail(t, deps, dependants)
	return nil
}

// searchCommand lists tasks whose id, name or description contain the query.
func (a *app) searchCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: vine search <query>")
	}
	g, err := a.loadGraph(a.resolvePath(""))
	if err != nil {
		return err
	}
	newPrinter(a.stdout).tasks(g.Search(strings.Join(args, " ")))
	return nil
}

// leavesCommand lists tasks without dependencies.
func (a *app) leavesCommand(args []string) error {
	if err := expectArgs(args, 0, 0, "leaves"); err != nil {
		return err
	}
	g, err := a.loadGraph(a.resolvePath(""))
	if err != nil {
		return err
	}
	newPrinter(a.stdout).tasks(g.Leaves())
	return nil
}

// descendantsCommand lists every task that depends on id, directly or not.
func (a *app) descendantsCommand(args []string) error {
	if err := expectArgs(args, 1, 1, "descendants <id>"); err != nil {
		return err
	}
	g, err := a.loadGraph(a.resolvePath(""))
	if err != nil {
		return err
	}
	tasks, err := g.Descendants(args[0])
	if err != nil {
		return err
	}
	newPrinter(a.stdout).tasks(tasks)
	return nil
}

// listCommand lists tasks in document order, optionally filtered by status.
func (a *app) listCommand(args []string) error {
	fs := a.newFlagSet("list")
	statusFilter := fs.String("status", "", "Only list concrete tasks with this status")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := expectArgs(fs.Args(), 0, 0, "list [-status s]"); err != nil {
		return err
	}
	g, err := a.loadGraph(a.resolvePath(""))
	if err != nil {
		return err
	}

	p := newPrinter(a.stdout)
	if *statusFilter == "" {
		p.tasks(g.All())
		return nil
	}
	status := vine.Status(strings.ToLower(strings.TrimSpace(*statusFilter)))
	if !vine.ValidStatus(g.Version, status) {
		return fmt.Errorf("%w: %q", vine.ErrInvalidStatus, *statusFilter)
	}
	var tasks []vine.Task
	for _, t := range g.FilterByStatus(status) {
		tasks = append(tasks, t)
	}
	p.tasks(tasks)
	return nil
}

// readyCommand lists tasks whose dependencies are complete, ordered by the
// configured strategy.
func (a *app) readyCommand(args []string) error {
	fs := a.newFlagSet("ready")
	strategyName := fs.String("strategy", a.cfg.ReadyStrategy, "Ordering: order, priority, unblocking or mixed")
	limit := fs.Int("n", 0, "Show at most n tasks (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := expectArgs(fs.Args(), 0, 0, "ready [-strategy s] [-n n]"); err != nil {
		return err
	}
	strategy, err := parallel.ParseStrategy(*strategyName)
	if err != nil {
		return err
	}
	g, err := a.loadGraph(a.resolvePath(""))
	if err != nil {
		return err
	}

	selected := parallel.NewTaskSelector(g, strategy).SelectTasks(*limit)
	tasks := make([]vine.Task, len(selected))
	for i, t := range selected {
		tasks[i] = t
	}
	newPrinter(a.stdout).tasks(tasks)
	return nil
}
