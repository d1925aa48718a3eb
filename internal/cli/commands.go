package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirbrooks/todolist/internal/store"
)

func (a *app) cmdAdd(args []string) int {
	fs := a.newFlagSet("add")
	var task, project, due string
	fs.StringVar(&task, "task", "", "task description")
	fs.StringVar(&project, "project", "", "project name")
	fs.StringVar(&due, "due", "", "due date YYYY-MM-DD")
	if err := fs.Parse(reorderFlags(args, map[string]bool{"--task": true, "--project": true, "--due": true, "-task": true, "-project": true, "-due": true})); err != nil {
		return ExitUsage
	}
	if strings.TrimSpace(task) == "" {
		task = positional(fs.Args())
	}
	if strings.TrimSpace(task) == "" {
		return a.usage(`add --task "<description>" [--project <name>] [--due YYYY-MM-DD]`)
	}
	t, err := a.store.AddTask(store.AddTaskInput{Description: task, Project: project, Due: due})
	if err != nil {
		return a.fail("add", err)
	}
	fmt.Fprintf(a.stdout, "Task \"%s\" added to project \"%s\" successfully!\n", t.Description, t.Project)
	return ExitOK
}

func (a *app) cmdList(args []string) int {
	fs := a.newFlagSet("list")
	var sortBy, project string
	fs.StringVar(&sortBy, "sort", "", "sort by status|project|due")
	fs.StringVar(&project, "project", "", "only tasks of this project")
	if err := fs.Parse(reorderFlags(args, map[string]bool{"--sort": true, "--project": true, "-sort": true, "-project": true})); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 0 {
		return a.usage("list [--sort status|project|due] [--project <name>]")
	}
	lines, err := a.store.ListTasks(store.ListFilter{Sort: sortBy, Project: strings.TrimSpace(project)})
	if errors.Is(err, store.ErrEmpty) {
		fmt.Fprintln(a.stdout, "No tasks found.")
		return ExitOK
	}
	if err != nil {
		return a.fail("list", err)
	}
	fmt.Fprintln(a.stdout, "Current tasks:")
	for i, l := range lines {
		fmt.Fprintf(a.stdout, "%d. %s\n", i+1, strings.TrimSpace(l.String()))
	}
	return ExitOK
}

func (a *app) cmdComplete(args []string) int {
	args = dropTerminator(args)
	desc := positional(args)
	if desc == "" {
		return a.usage(`complete "<description>"`)
	}
	_, err := a.store.CompleteTask(desc)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(a.stdout, "Task '%s' not found or already completed.\n", desc)
		return ExitNotFound
	}
	if err != nil {
		return a.fail("complete", err)
	}
	fmt.Fprintf(a.stdout, "Task '%s' marked as completed!\n", desc)
	return ExitOK
}

func (a *app) cmdDelete(args []string) int {
	args = dropTerminator(args)
	desc := positional(args)
	if desc == "" {
		return a.usage(`delete "<description>"`)
	}
	removed, err := a.store.DeleteTask(desc)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(a.stdout, "Task '%s' not found.\n", desc)
		return ExitNotFound
	}
	if err != nil {
		return a.fail("delete", err)
	}
	for _, l := range removed {
		fmt.Fprintf(a.stdout, "Deleted task: %s\n", strings.TrimSpace(l.String()))
	}
	return ExitOK
}

func (a *app) cmdDeleteProject(args []string) int {
	args = dropTerminator(args)
	name := positional(args)
	if name == "" {
		return a.usage(`delete-project "<project>"`)
	}
	n, err := a.store.DeleteProject(name)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(a.stdout, "Project '%s' does not exist.\n", name)
		return ExitNotFound
	}
	if err != nil {
		return a.fail("delete-project", err)
	}
	a.logger.Debug("deleted project", "project", name, "lines", n)
	fmt.Fprintf(a.stdout, "Deleted project '%s' and all associated tasks.\n", name)
	return ExitOK
}

func (a *app) cmdMoveProject(args []string) int {
	args = dropTerminator(args)
	if len(args) < 2 {
		return a.usage(`move-project "<current project>" "<new project>"`)
	}
	from := strings.TrimSpace(args[0])
	to := positional(args[1:])
	n, err := a.store.MoveProject(from, to)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(a.stdout, "No tasks found for project '%s'.\n", from)
		return ExitNotFound
	}
	if err != nil {
		return a.fail("move-project", err)
	}
	a.logger.Debug("moved project", "from", from, "to", to, "tasks", n)
	fmt.Fprintf(a.stdout, "Moved tasks from project '%s' to '%s'.\n", from, to)
	return ExitOK
}

func (a *app) cmdAddProject(args []string) int {
	args = dropTerminator(args)
	name := positional(args)
	if name == "" {
		return a.usage(`add-project "<project>"`)
	}
	err := a.store.AddProject(name)
	if errors.Is(err, store.ErrConflict) {
		fmt.Fprintf(a.stdout, "Project '%s' already exists.\n", name)
		return ExitConflict
	}
	if err != nil {
		return a.fail("add-project", err)
	}
	fmt.Fprintf(a.stdout, "Project '%s' created successfully!\n", name)
	return ExitOK
}

func (a *app) cmdMoveTask(args []string) int {
	args = dropTerminator(args)
	if len(args) < 2 {
		return a.usage(`move-task "<description>" "<new project>"`)
	}
	desc := strings.TrimSpace(args[0])
	project := positional(args[1:])
	_, err := a.store.MoveTask(desc, project)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(a.stdout, "Task \"%s\" not found.\n", desc)
		return ExitNotFound
	}
	if err != nil {
		return a.fail("move-task", err)
	}
	fmt.Fprintf(a.stdout, "Task \"%s\" moved to project \"%s\".\n", desc, project)
	return ExitOK
}

func (a *app) cmdAddNote(args []string) int {
	fs := a.newFlagSet("add-note")
	var isProject bool
	fs.BoolVar(&isProject, "project", false, "attach the note to a project header")
	// Only --project is a flag here; notes like "-5 degrees" stay positional.
	var flags, rest []string
	for i, arg := range args {
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		if isProjectFlag(arg) {
			flags = append(flags, arg)
			continue
		}
		rest = append(rest, arg)
	}
	if err := fs.Parse(flags); err != nil {
		return ExitUsage
	}
	if len(rest) < 2 {
		return a.usage(`add-note "<description or project>" "<note>" [--project]`)
	}
	target := strings.TrimSpace(rest[0])
	note := positional(rest[1:])

	noun, title := "task", "Task"
	if isProject {
		noun, title = "project", "Project"
	}
	err := a.store.AddNote(target, note, isProject)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(a.stdout, "%s \"%s\" not found.\n", title, target)
		return ExitNotFound
	}
	if err != nil {
		return a.fail("add-note", err)
	}
	fmt.Fprintf(a.stdout, "Note added to %s \"%s\": %s\n", noun, target, note)
	return ExitOK
}

func isProjectFlag(arg string) bool {
	name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
	return strings.HasPrefix(arg, "-") && name == "project" && !strings.HasPrefix(arg, "---")
}

func (a *app) cmdClearCompleted(args []string) int {
	if len(args) > 0 {
		return a.usage("clear-completed")
	}
	n, err := a.store.ClearCompleted()
	if err != nil {
		return a.fail("clear-completed", err)
	}
	fmt.Fprintf(a.stdout, "Cleared %d completed task(s).\n", n)
	return ExitOK
}

func (a *app) cmdProjects(args []string) int {
	if len(args) > 0 {
		return a.usage("projects")
	}
	projects, err := a.store.Projects()
	if err != nil {
		return a.fail("projects", err)
	}
	if len(projects) == 0 {
		fmt.Fprintln(a.stdout, "No projects found.")
		return ExitOK
	}
	for _, p := range projects {
		name := p.Name
		if name == "" {
			name = "(no project)"
		}
		line := fmt.Sprintf("%s (%d tasks, %d open)", name, p.Tasks, p.Open)
		if p.Note != "" {
			line += " - " + p.Note
		}
		fmt.Fprintln(a.stdout, line)
	}
	return ExitOK
}

func (a *app) cmdExport(args []string) int {
	fs := a.newFlagSet("export")
	var format, out string
	fs.StringVar(&format, "format", store.FormatJSON, "json|ndjson|yaml")
	fs.StringVar(&out, "out", "", "output directory")
	if err := fs.Parse(reorderFlags(args, map[string]bool{"--format": true, "--out": true, "-format": true, "-out": true})); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 0 {
		return a.usage("export [--format json|ndjson|yaml] [--out <dir>]")
	}
	if strings.TrimSpace(out) == "" {
		out = a.cfg.ExportDir
	}
	path, err := a.store.Export(format, out)
	if err != nil {
		return a.fail("export", err)
	}
	fmt.Fprintf(a.stdout, "Wrote %s to: %s\n", strings.ToUpper(strings.TrimSpace(format)), path)
	return ExitOK
}
