package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/amirbrooks/todolist/internal/config"
	"github.com/amirbrooks/todolist/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitInternal = 10
)

type GlobalFlags struct {
	File    string
	Config  string
	Verbose bool
	Quiet   bool
}

type app struct {
	gf     GlobalFlags
	cfg    *config.Loaded
	store  *store.Store
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

func reorderFlags(args []string, takesValue map[string]bool) []string {
	if len(args) == 0 {
		return args
	}
	var flags []string
	var rest []string
	terminated := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			rest = append(rest, args[i+1:]...)
			terminated = true
			break
		}
		if strings.HasPrefix(a, "-") && a != "-" {
			flags = append(flags, a)
			if takesValue[a] && !strings.Contains(a, "=") {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, a)
	}
	if terminated {
		flags = append(flags, "--")
	}
	return append(flags, rest...)
}

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return ExitUsage
	}

	if len(rest) == 0 {
		fmt.Fprintln(stdout, "Please provide a valid command.")
		printHelp(stdout)
		return ExitUsage
	}

	cmd := rest[0]
	cmdArgs := rest[1:]

	switch cmd {
	case "help", "--help", "-h":
		printHelp(stdout)
		return ExitOK
	}

	cfg, err := config.Load(config.Overrides{ConfigPath: gf.Config, File: gf.File})
	if err != nil {
		fmt.Fprintln(stderr, "todo:", err)
		return ExitUsage
	}
	logger := newLogger(stderr, cfg.LogLevel, cfg.LogFormat, gf)
	st, err := store.Open(cfg.File,
		store.WithDefaultProject(cfg.DefaultProject),
		store.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(stderr, "todo:", err)
		return ExitInternal
	}
	a := &app{gf: gf, cfg: cfg, store: st, logger: logger, stdout: stdout, stderr: stderr}
	logger.Debug("dispatch", "command", cmd, "file", st.Path)

	switch cmd {
	case "add":
		return a.cmdAdd(cmdArgs)
	case "list", "ls":
		return a.cmdList(cmdArgs)
	case "complete", "done":
		return a.cmdComplete(cmdArgs)
	case "delete", "rm":
		return a.cmdDelete(cmdArgs)
	case "delete-project":
		return a.cmdDeleteProject(cmdArgs)
	case "move-project":
		return a.cmdMoveProject(cmdArgs)
	case "add-project":
		return a.cmdAddProject(cmdArgs)
	case "move-task", "mv":
		return a.cmdMoveTask(cmdArgs)
	case "add-note", "note":
		return a.cmdAddNote(cmdArgs)
	case "clear-completed":
		return a.cmdClearCompleted(cmdArgs)
	case "projects":
		return a.cmdProjects(cmdArgs)
	case "export":
		return a.cmdExport(cmdArgs)
	case "config", "cfg":
		return a.cmdConfig(cmdArgs)
	case "mcp":
		return a.cmdMCP(cmdArgs)
	default:
		fmt.Fprintln(stdout, "Please provide a valid command.")
		printHelp(stdout)
		return ExitUsage
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `todo - personal task list in a plain text file

Usage:
  todo [global flags] <command> [args]

Global flags:
  --file <path>    Todo file (default: ~/todolist.txt or TODO_FILE)
  --config <path>  Config file (default: ~/.todo/config.yaml or TODO_CONFIG)
  --verbose        Debug logging on stderr
  --quiet          Only log errors

Commands:
  add --task "<description>" [--project <name>] [--due YYYY-MM-DD]
  list [--sort status|project|due] [--project <name>]
  complete "<description>"
  delete "<description>"
  delete-project "<project>"
  move-project "<current project>" "<new project>"
  add-project "<project>"
  move-task "<description>" "<new project>"
  add-note "<description or project>" "<note>" [--project]
  clear-completed
  projects
  export [--format json|ndjson|yaml] [--out <dir>]
  config show
  config set <key> <value>
  mcp

Put -- before arguments that start with a dash:
  todo add-note milk -- "-5 degrees outside"
`)
}

// verbValueFlags lists the verb flags whose next argument is a value and
// must never be read as a global flag.
var verbValueFlags = map[string]map[string]bool{
	"add":    {"--task": true, "-task": true, "--project": true, "-project": true, "--due": true, "-due": true},
	"list":   {"--sort": true, "-sort": true, "--project": true, "-project": true},
	"ls":     {"--sort": true, "-sort": true, "--project": true, "-project": true},
	"export": {"--format": true, "-format": true, "--out": true, "-out": true},
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Allow flags anywhere by scanning and stripping known globals, up to a
	// "--" and never in the value slot of a verb flag.
	gf := GlobalFlags{}
	out := make([]string, 0, len(args))
	verb := ""
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		if verb != "" && verbValueFlags[verb][a] && i+1 < len(args) {
			out = append(out, a, args[i+1])
			i++
			continue
		}
		switch {
		case a == "--file":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--file requires a value")
			}
			gf.File = args[i+1]
			i++
		case strings.HasPrefix(a, "--file="):
			gf.File = strings.TrimPrefix(a, "--file=")
		case a == "--config":
			if i+1 >= len(args) {
				return gf, nil, errors.New("--config requires a value")
			}
			gf.Config = args[i+1]
			i++
		case strings.HasPrefix(a, "--config="):
			gf.Config = strings.TrimPrefix(a, "--config=")
		case a == "--verbose":
			gf.Verbose = true
		case a == "--quiet":
			gf.Quiet = true
		default:
			if verb == "" {
				verb = a
			}
			out = append(out, a)
		}
	}
	if gf.Verbose && gf.Quiet {
		return gf, nil, errors.New("--verbose and --quiet are mutually exclusive")
	}
	return gf, out, nil
}

// globalArgs rebuilds the global flags so nested invocations see the same
// file and config.
func (gf GlobalFlags) globalArgs() []string {
	var out []string
	if gf.File != "" {
		out = append(out, "--file", gf.File)
	}
	if gf.Config != "" {
		out = append(out, "--config", gf.Config)
	}
	if gf.Verbose {
		out = append(out, "--verbose")
	}
	if gf.Quiet {
		out = append(out, "--quiet")
	}
	return out
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// fail reports errors that are not part of a command's normal output.
func (a *app) fail(verb string, err error) int {
	fmt.Fprintln(a.stderr, verb+":", err)
	if errors.Is(err, store.ErrInvalid) {
		return ExitUsage
	}
	a.logger.Error("command failed", "command", verb, "err", err)
	return ExitInternal
}

func (a *app) usage(line string) int {
	fmt.Fprintln(a.stderr, "Usage: todo "+line)
	return ExitUsage
}

// positional joins the remaining words so unquoted descriptions still work.
func positional(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// dropTerminator removes a leading "--" from positional-only arguments.
func dropTerminator(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}
