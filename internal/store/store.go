package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/natefinch/atomic"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInvalid  = errors.New("invalid")
	ErrEmpty    = errors.New("no tasks")
	timeNow     = func() time.Time { return time.Now().UTC() }
)

const DefaultProject = "General"

// Store is a todo file on disk. Every operation reads the whole file and
// mutating operations replace it atomically.
type Store struct {
	Path           string
	defaultProject string
	matcher        Matcher
	logger         *log.Logger
}

type Option func(*Store)

func WithDefaultProject(name string) Option {
	return func(s *Store) {
		if name = strings.TrimSpace(name); name != "" {
			s.defaultProject = name
		}
	}
}

func WithMatcher(m Matcher) Option {
	return func(s *Store) {
		if m != nil {
			s.matcher = m
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

type AddTaskInput struct {
	Description string
	Project     string
	Due         string
}

type ListFilter struct {
	Sort    string
	Project string
}

// Open returns a store for path. The file is created on first access.
func Open(path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: todo file path is empty", ErrInvalid)
	}
	s := &Store{
		Path:           expandHome(path),
		defaultProject: DefaultProject,
		matcher:        Contains,
		logger:         log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) DefaultProject() string { return s.defaultProject }

func (s *Store) Load() (*Document, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("creating todo file", "path", s.Path)
		if err := s.write(nil); err != nil {
			return nil, err
		}
		return &Document{}, nil
	}
	if err != nil {
		return nil, err
	}
	doc := ParseDocument(b)
	s.logger.Debug("loaded todo file", "path", s.Path, "lines", len(doc.Lines))
	return doc, nil
}

func (s *Store) Save(doc *Document) error {
	if err := s.write(doc.Bytes()); err != nil {
		return err
	}
	s.logger.Debug("saved todo file", "path", s.Path, "lines", len(doc.Lines))
	return nil
}

func (s *Store) write(data []byte) error {
	return atomicWriteFile(s.Path, data, 0o644)
}

// update loads the document, applies fn and saves the result unless fn
// fails.
func (s *Store) update(fn func(doc *Document) error) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.Save(doc)
}

func (s *Store) AddTask(in AddTaskInput) (*Task, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: task description is required", ErrInvalid)
	}
	project := strings.TrimSpace(in.Project)
	if project == "" {
		project = s.defaultProject
	}
	due := strings.TrimSpace(in.Due)
	if due != "" {
		if _, err := time.Parse(DateLayout, due); err != nil {
			return nil, fmt.Errorf("%w: due date %q must be YYYY-MM-DD", ErrInvalid, due)
		}
	}
	t := Task{Description: desc, Project: project, Due: due}
	err := s.update(func(doc *Document) error {
		doc.Lines = append(doc.Lines, TaskLine(t))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns the task lines of the file, filtered and sorted. It
// returns ErrEmpty when the file has no lines at all.
func (s *Store) ListTasks(f ListFilter) ([]Line, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(doc.Lines) == 0 {
		return nil, ErrEmpty
	}
	var out []Line
	for _, l := range doc.Tasks() {
		if f.Project != "" && l.Task.Project != f.Project {
			continue
		}
		out = append(out, l)
	}
	if err := sortLines(out, f.Sort, s.logger); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CompleteTask(query string) (*Task, error) {
	if err := requireQuery(query); err != nil {
		return nil, err
	}
	var done Task
	err := s.update(func(doc *Document) error {
		i := s.find(doc, query, isOpenTask)
		if i < 0 {
			return fmt.Errorf("%w: no open task matches %q", ErrNotFound, query)
		}
		doc.Lines[i].markDone()
		done = doc.Lines[i].Task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &done, nil
}

// DeleteTask removes every task line, open or done, matching query.
func (s *Store) DeleteTask(query string) ([]Line, error) {
	if err := requireQuery(query); err != nil {
		return nil, err
	}
	var removed []Line
	err := s.update(func(doc *Document) error {
		kept := doc.Lines[:0]
		for _, l := range doc.Lines {
			if isTask(l) && s.matcher.Match(l, query) {
				removed = append(removed, l)
				continue
			}
			kept = append(kept, l)
		}
		if len(removed) == 0 {
			return fmt.Errorf("%w: no task matches %q", ErrNotFound, query)
		}
		doc.Lines = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// DeleteProject removes the project's header and all of its tasks. It
// returns the number of lines removed.
func (s *Store) DeleteProject(name string) (int, error) {
	if err := requireQuery(name); err != nil {
		return 0, err
	}
	n := 0
	err := s.update(func(doc *Document) error {
		kept := doc.Lines[:0]
		for _, l := range doc.Lines {
			if (l.Kind == KindHeader && l.Header.Name == name) || (l.Kind == KindTask && l.Task.Project == name) {
				n++
				continue
			}
			kept = append(kept, l)
		}
		if n == 0 {
			return fmt.Errorf("%w: project %q", ErrNotFound, name)
		}
		doc.Lines = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// MoveProject retags every task of project from as project to. It returns
// the number of tasks moved.
func (s *Store) MoveProject(from, to string) (int, error) {
	if err := requireQuery(from); err != nil {
		return 0, err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return 0, fmt.Errorf("%w: new project name is required", ErrInvalid)
	}
	n := 0
	err := s.update(func(doc *Document) error {
		for i, l := range doc.Lines {
			if l.Kind != KindTask || l.Task.Project != from {
				continue
			}
			t := l.Task
			t.Project = to
			doc.Lines[i].setTask(t)
			n++
		}
		if n == 0 {
			return fmt.Errorf("%w: no tasks in project %q", ErrNotFound, from)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) AddProject(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: project name is required", ErrInvalid)
	}
	return s.update(func(doc *Document) error {
		if doc.header(name) >= 0 {
			return fmt.Errorf("%w: project %q", ErrConflict, name)
		}
		doc.Lines = append(doc.Lines, BlankLine(), HeaderLine(Header{Name: name}))
		return nil
	})
}

// MoveTask moves the first task matching query into project. A task that
// already had a project loses its due date and note.
func (s *Store) MoveTask(query, project string) (*Task, error) {
	if err := requireQuery(query); err != nil {
		return nil, err
	}
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, fmt.Errorf("%w: new project name is required", ErrInvalid)
	}
	var moved Task
	err := s.update(func(doc *Document) error {
		i := s.find(doc, query, isTask)
		if i < 0 {
			return fmt.Errorf("%w: no task matches %q", ErrNotFound, query)
		}
		t := doc.Lines[i].Task
		if t.Project != "" {
			t.Due = ""
			t.Note = ""
		}
		t.Project = project
		doc.Lines[i].setTask(t)
		moved = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

// AddNote attaches note to the first task or header line matching query, or
// to the header named query when project is set. An existing note is
// replaced.
func (s *Store) AddNote(query, note string, project bool) error {
	if err := requireQuery(query); err != nil {
		return err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return fmt.Errorf("%w: note text is required", ErrInvalid)
	}
	return s.update(func(doc *Document) error {
		if project {
			i := doc.header(query)
			if i < 0 {
				return fmt.Errorf("%w: project %q", ErrNotFound, query)
			}
			h := doc.Lines[i].Header
			h.Note = note
			doc.Lines[i].setHeader(h)
			return nil
		}
		i := s.find(doc, query, isNoteTarget)
		if i < 0 {
			return fmt.Errorf("%w: no task matches %q", ErrNotFound, query)
		}
		if doc.Lines[i].Kind == KindHeader {
			h := doc.Lines[i].Header
			h.Note = note
			doc.Lines[i].setHeader(h)
			return nil
		}
		t := doc.Lines[i].Task
		t.Note = note
		doc.Lines[i].setTask(t)
		return nil
	})
}

// ClearCompleted drops every done task and returns how many were removed.
func (s *Store) ClearCompleted() (int, error) {
	doc, err := s.Load()
	if err != nil {
		return 0, err
	}
	kept := doc.Lines[:0]
	n := 0
	for _, l := range doc.Lines {
		if l.Kind == KindTask && l.Task.Done {
			n++
			continue
		}
		kept = append(kept, l)
	}
	if n == 0 {
		return 0, nil
	}
	doc.Lines = kept
	if err := s.Save(doc); err != nil {
		return 0, err
	}
	return n, nil
}

type ProjectSummary struct {
	Name      string `json:"name" yaml:"name"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
	HasHeader bool   `json:"has_header" yaml:"has_header"`
	Tasks     int    `json:"tasks" yaml:"tasks"`
	Open      int    `json:"open" yaml:"open"`
}

// Projects lists header projects in file order, then projects that only
// appear as task tags in order of first use.
func (s *Store) Projects() ([]ProjectSummary, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return summarizeProjects(doc), nil
}

func summarizeProjects(doc *Document) []ProjectSummary {
	var out []ProjectSummary
	index := map[string]int{}
	for _, l := range doc.Lines {
		if l.Kind != KindHeader {
			continue
		}
		if _, ok := index[l.Header.Name]; ok {
			continue
		}
		index[l.Header.Name] = len(out)
		out = append(out, ProjectSummary{Name: l.Header.Name, Note: l.Header.Note, HasHeader: true})
	}
	for _, l := range doc.Tasks() {
		name := l.Task.Project
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, ProjectSummary{Name: name})
		}
		out[i].Tasks++
		if !l.Task.Done {
			out[i].Open++
		}
	}
	return out
}

func requireQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalid)
	}
	return nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~"+string(os.PathSeparator)) || path == "~" {
		home, _ := os.UserHomeDir()
		if home != "" {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	// atomic.WriteFile leaves new files with the temp file's mode.
	return os.Chmod(path, perm)
}
