// Package cmd implements the vine command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/vine-go/internal/config"
	"github.com/nibzard/vine-go/internal/logging"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every command needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	log     *log.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Run executes the vine CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("vine", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		logging.New(stderr, logging.DefaultOptions()).Error("loading config", "err", err)
		return fmt.Errorf("loading config: %w", err)
	}
	a := &app{
		cfg:     cws.Config,
		sources: cws,
		log:     logging.FromConfig(stderr, cws.Config),
		stdout:  stdout,
		stderr:  stderr,
	}

	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return a.versionCommand()
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stderr)
		return fmt.Errorf("no command given")
	}
	subcommand, remaining := remaining[0], remaining[1:]
	a.log.Debug("running command", "command", subcommand, "file", a.cfg.GraphFile)

	var cmdErr error
	switch subcommand {
	case "validate":
		cmdErr = a.validateCommand(ctx, remaining)
	case "watch":
		cmdErr = a.watchCommand(ctx, remaining)
	case "fmt":
		cmdErr = a.fmtCommand(ctx, remaining)
	case "summary":
		cmdErr = a.summaryCommand(remaining)
	case "show":
		cmdErr = a.showCommand(remaining)
	case "search":
		cmdErr = a.searchCommand(remaining)
	case "leaves":
		cmdErr = a.leavesCommand(remaining)
	case "descendants":
		cmdErr = a.descendantsCommand(remaining)
	case "list", "ls":
		cmdErr = a.listCommand(remaining)
	case "ready":
		cmdErr = a.readyCommand(remaining)
	case "status":
		cmdErr = a.statusCommand(ctx, remaining)
	case "deps":
		cmdErr = a.depsCommand(ctx, remaining)
	case "add":
		cmdErr = a.addCommand(ctx, remaining)
	case "rm":
		cmdErr = a.rmCommand(ctx, remaining)
	case "export":
		cmdErr = a.exportCommand(ctx, remaining)
	case "import":
		cmdErr = a.importCommand(ctx, remaining)
	case "config":
		cmdErr = a.configCommand(remaining)
	case "version":
		cmdErr = a.versionCommand()
	case "help":
		printUsage(fs, stdout)
	default:
		printUsage(fs, stderr)
		cmdErr = fmt.Errorf("unknown command: %s", subcommand)
	}

	if cmdErr != nil {
		fields := append([]any{"command", subcommand, "err", cmdErr}, logging.ErrorFields(cmdErr)...)
		a.log.Error("command failed", fields...)
	}
	return cmdErr
}

// versionCommand prints version information.
func (a *app) versionCommand() error {
	fmt.Fprintf(a.stdout, "vine version %s\n", Version)
	return nil
}

// expectArgs fails unless args holds between lo and hi entries.
func expectArgs(args []string, lo, hi int, usage string) error {
	if len(args) < lo {
		return fmt.Errorf("usage: vine %s", usage)
	}
	if len(args) > hi {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args[hi:], " "))
	}
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "vine - read, check and edit VINE task graphs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vine [global options] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  validate [-j n] [file...]    Parse and validate graphs")
	fmt.Fprintln(w, "  watch [options] [file...]    Revalidate graphs whenever they change")
	fmt.Fprintln(w, "  fmt [-w] [file]              Print or rewrite a graph in canonical form")
	fmt.Fprintln(w, "  fmt -check [-j n] [file...]  Fail if any graph is not in canonical form")
	fmt.Fprintln(w, "  summary [file]               Show counts by status, the root and leaves")
	fmt.Fprintln(w, "  show <id>                    Show one task with its edges")
	fmt.Fprintln(w, "  search <query>               Find tasks by id, name or description")
	fmt.Fprintln(w, "  leaves                       List tasks without dependencies")
	fmt.Fprintln(w, "  descendants <id>             List every task that transitively depends on id")
	fmt.Fprintln(w, "  list [-status s]             List tasks, optionally by status")
	fmt.Fprintln(w, "  ready [-strategy s] [-n n]   List tasks whose dependencies are complete")
	fmt.Fprintln(w, "  status <id> <status>         Change the status of a task")
	fmt.Fprintln(w, "  deps add|rm <id> <dep>       Add or remove a dependency edge")
	fmt.Fprintln(w, "  add [options] <id> <name>    Add a task before the root")
	fmt.Fprintln(w, "  rm <id>                      Remove a task and its edges")
	fmt.Fprintln(w, "  export [-format f] [-o file] Write the graph as JSON or YAML")
	fmt.Fprintln(w, "  import [-o file] <file>      Convert a JSON or YAML document to VINE text")
	fmt.Fprintln(w, "  config [-example]            Show effective configuration")
	fmt.Fprintln(w, "  version                      Show version information")
	fmt.Fprintln(w, "  help                         Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -status string      Initial status (default notstarted)")
	fmt.Fprintln(w, "  -ref string         Add a reference to another VINE document instead")
	fmt.Fprintln(w, "  -deps string        Comma-separated dependencies of the new task")
	fmt.Fprintln(w, "  -dependants string  Comma-separated tasks that should depend on it")
	fmt.Fprintln(w, "  -desc string        Description text")
}
