package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/nibzard/vine-go/internal/utils"
	"github.com/nibzard/vine-go/internal/vine"
)

// edit loads the graph file, applies fn and writes the result back.
func (a *app) edit(ctx context.Context, op string, fn func(*vine.Graph) (*vine.Graph, error)) error {
	path := a.resolvePath("")
	g, err := a.loadGraph(path)
	if err != nil {
		return err
	}
	next, err := fn(g)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return a.saveGraph(ctx, path, next)
}

// statusCommand changes the status of a concrete task.
func (a *app) statusCommand(ctx context.Context, args []string) error {
	if err := expectArgs(args, 2, 2, "status <id> <status>"); err != nil {
		return err
	}
	id := args[0]
	status := vine.Status(strings.ToLower(strings.TrimSpace(args[1])))
	return a.edit(ctx, "set status", func(g *vine.Graph) (*vine.Graph, error) {
		return g.SetStatus(id, status)
	})
}

// depsCommand adds or removes one dependency edge.
func (a *app) depsCommand(ctx context.Context, args []string) error {
	const usage = "deps add|rm <id> <dep>"
	if err := expectArgs(args, 3, 3, usage); err != nil {
		return err
	}
	action, id, dep := args[0], args[1], args[2]
	switch action {
	case "add":
		return a.edit(ctx, "add dependency", func(g *vine.Graph) (*vine.Graph, error) {
			return g.AddDependency(id, dep)
		})
	case "rm", "remove":
		return a.edit(ctx, "remove dependency", func(g *vine.Graph) (*vine.Graph, error) {
			return g.RemoveDependency(id, dep)
		})
	default:
		return fmt.Errorf("unknown deps action %q (usage: vine %s)", action, usage)
	}
}

// addCommand inserts a concrete or reference task before the root.
func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	status := fs.String("status", string(vine.StatusNotStarted), "Initial status")
	refURI := fs.String("ref", "", "Add a reference task pointing at this VINE document")
	deps := fs.String("deps", "", "Comma-separated dependencies of the new task")
	dependants := fs.String("dependants", "", "Comma-separated tasks that should depend on the new task")
	desc := fs.String("desc", "", "Description text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: vine add [options] <id> <name>")
	}

	info := vine.TaskInfo{
		ID:           rest[0],
		ShortName:    strings.Join(rest[1:], " "),
		Description:  *desc,
		Dependencies: utils.NormalizeIDs(utils.SplitAndTrim(*deps, ",")),
	}
	attach := utils.NormalizeIDs(utils.SplitAndTrim(*dependants, ","))

	if *refURI != "" {
		return a.edit(ctx, "add ref", func(g *vine.Graph) (*vine.Graph, error) {
			return g.AddRef(vine.RefTask{TaskInfo: info, Vine: *refURI}, attach...)
		})
	}
	task := vine.ConcreteTask{
		TaskInfo: info,
		Status:   vine.Status(strings.ToLower(strings.TrimSpace(*status))),
	}
	return a.edit(ctx, "add task", func(g *vine.Graph) (*vine.Graph, error) {
		return g.AddTask(task, attach...)
	})
}

// rmCommand removes a task and every edge pointing at it.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	if err := expectArgs(args, 1, 1, "rm <id>"); err != nil {
		return err
	}
	return a.edit(ctx, "remove task", func(g *vine.Graph) (*vine.Graph, error) {
		return g.RemoveTask(args[0])
	})
}
