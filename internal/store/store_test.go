package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todolist.txt")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return s
}

func readFile(t *testing.T, s *Store) string {
	t.Helper()
	b, err := os.ReadFile(s.Path)
	if err != nil {
		t.Fatalf("read %s: %v", s.Path, err)
	}
	return string(b)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("  "); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadCreatesMissingFile(t *testing.T) {
	s := newTestStore(t, "")
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(doc.Lines) != 0 {
		t.Fatalf("expected empty document, got %d lines", len(doc.Lines))
	}
	if _, err := os.Stat(s.Path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestAddTaskDefaultsToGeneral(t *testing.T) {
	s := newTestStore(t, "")
	task, err := s.AddTask(AddTaskInput{Description: "Water plants"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Project != "General" {
		t.Fatalf("expected General, got %q", task.Project)
	}
	if got := readFile(t, s); got != "- [ ] Water plants (Project: General)\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestAddTaskUsesConfiguredDefaultProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	s, err := Open(path, WithDefaultProject("Inbox"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	task, err := s.AddTask(AddTaskInput{Description: "x"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Project != "Inbox" {
		t.Fatalf("expected Inbox, got %q", task.Project)
	}
}

func TestAddTaskValidatesInput(t *testing.T) {
	s := newTestStore(t, "")
	if _, err := s.AddTask(AddTaskInput{Description: " "}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for empty description, got %v", err)
	}
	if _, err := s.AddTask(AddTaskInput{Description: "x", Due: "01/02/2025"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad due, got %v", err)
	}
}

func TestListTasksEmptyFile(t *testing.T) {
	s := newTestStore(t, "")
	if _, err := s.ListTasks(ListFilter{}); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestListTasksOnlyHeaders(t *testing.T) {
	s := newTestStore(t, "\n--- Project: Home ---\n")
	lines, err := s.ListTasks(ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no tasks, got %d", len(lines))
	}
}

func TestListTasksSortByDue(t *testing.T) {
	s := newTestStore(t, strings.Join([]string{
		"- [ ] no due (Project: A)",
		"- [ ] bad due (Project: A) (Due: someday)",
		"- [ ] later (Project: A) (Due: 2025-03-01)",
		"- [ ] sooner (Project: B) (Due: 2025-01-01)",
		"- [ ] also no due (Project: B)",
	}, "\n")+"\n")
	lines, err := s.ListTasks(ListFilter{Sort: SortDue})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"sooner", "later", "no due", "also no due", "bad due"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(lines))
	}
	for i, l := range lines {
		if l.Task.Description != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, l.Task.Description)
		}
	}
}

func TestListTasksSortByStatusIsStable(t *testing.T) {
	s := newTestStore(t, "- [x] a (Project: P)\n- [ ] b (Project: P)\n- [x] c (Project: P)\n- [ ] d (Project: P)\n")
	lines, err := s.ListTasks(ListFilter{Sort: SortStatus})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, l := range lines {
		got = append(got, l.Task.Description)
	}
	if strings.Join(got, ",") != "b,d,a,c" {
		t.Fatalf("expected b,d,a,c got %s", strings.Join(got, ","))
	}
}

func TestListTasksSortByProjectAndFilter(t *testing.T) {
	s := newTestStore(t, "- [ ] a (Project: Work)\n- [ ] b (Project: Home)\n- [ ] c (Project: Work)\n")
	lines, err := s.ListTasks(ListFilter{Sort: SortProject})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if lines[0].Task.Description != "b" || lines[1].Task.Description != "a" || lines[2].Task.Description != "c" {
		t.Fatalf("unexpected order %v", lines)
	}
	lines, err = s.ListTasks(ListFilter{Project: "Work"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 Work tasks, got %d", len(lines))
	}
	if _, err := s.ListTasks(ListFilter{Sort: "priority"}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown sort, got %v", err)
	}
}

func TestCompleteTaskTouchesOneLine(t *testing.T) {
	in := "- [ ] Buy milk (Project: Home)\n--- Project: Home ---\n- [ ] Buy milk again (Project: Home)\nnotes here\n"
	s := newTestStore(t, in)
	if _, err := s.CompleteTask("Buy milk"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	want := strings.Replace(in, "- [ ] Buy milk (Project: Home)", "- [x] Buy milk (Project: Home)", 1)
	if got := readFile(t, s); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestCompleteTaskSkipsDoneAndReportsNotFound(t *testing.T) {
	s := newTestStore(t, "- [x] Done thing (Project: General)\n")
	if _, err := s.CompleteTask("Done thing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTaskKeepsHeaders(t *testing.T) {
	s := newTestStore(t, "\n--- Project: Home ---\n- [ ] Mow lawn (Project: Home)\n")
	removed, err := s.DeleteTask("Mow")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(removed))
	}
	if got := readFile(t, s); got != "\n--- Project: Home ---\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestDeleteTaskRemovesAllMatchesOpenOrDone(t *testing.T) {
	s := newTestStore(t, "- [ ] report A (Project: W)\n- [x] report B (Project: W)\n- [x] other (Project: W)\n")
	removed, err := s.DeleteTask("report")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed, got %d", len(removed))
	}
	if got := readFile(t, s); got != "- [x] other (Project: W)\n" {
		t.Fatalf("unexpected file %q", got)
	}
	if _, err := s.DeleteTask("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	in := "--- Project: Home ---\n- [ ] a (Project: Home)\n- [ ] b (Project: Work)\n- [x] c (Project: Home)\n- [ ] d (Project: Homework)\n"
	s := newTestStore(t, in)
	n, err := s.DeleteProject("Home")
	if err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 lines removed, got %d", n)
	}
	if got := readFile(t, s); got != "- [ ] b (Project: Work)\n- [ ] d (Project: Homework)\n" {
		t.Fatalf("unexpected file %q", got)
	}
	if _, err := s.DeleteProject("Home"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMoveProject(t *testing.T) {
	s := newTestStore(t, "- [ ] a (Project: Old) (Due: 2025-01-01)\n- [ ] b (Project: Other)\n- [x] c (Project: Old)\n")
	n, err := s.MoveProject("Old", "New")
	if err != nil {
		t.Fatalf("move project: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 moved, got %d", n)
	}
	old, _ := s.ListTasks(ListFilter{Project: "Old"})
	moved, _ := s.ListTasks(ListFilter{Project: "New"})
	if len(old) != 0 || len(moved) != 2 {
		t.Fatalf("expected 0 old and 2 new, got %d and %d", len(old), len(moved))
	}
	if moved[0].Task.Due != "2025-01-01" {
		t.Fatalf("expected due date to survive, got %q", moved[0].Task.Due)
	}
	if _, err := s.MoveProject("Old", "New"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddProjectDeduplicates(t *testing.T) {
	s := newTestStore(t, "- [ ] a (Project: General)\n")
	if err := s.AddProject("Garden"); err != nil {
		t.Fatalf("add project: %v", err)
	}
	if err := s.AddProject("Garden"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if got := readFile(t, s); got != "- [ ] a (Project: General)\n\n--- Project: Garden ---\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestMoveTaskDropsTrailingTags(t *testing.T) {
	s := newTestStore(t, "- [ ] Paint fence (Project: Home) (Due: 2025-05-01) (Note: white)\n")
	task, err := s.MoveTask("fence", "Weekend")
	if err != nil {
		t.Fatalf("move task: %v", err)
	}
	if task.Due != "" || task.Note != "" {
		t.Fatalf("expected due and note dropped, got %#v", task)
	}
	if got := readFile(t, s); got != "- [ ] Paint fence (Project: Weekend)\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestMoveTaskAddsMissingProject(t *testing.T) {
	s := newTestStore(t, "- [ ] Loose task (Due: 2025-05-01)\n")
	if _, err := s.MoveTask("Loose", "Home"); err != nil {
		t.Fatalf("move task: %v", err)
	}
	if got := readFile(t, s); got != "- [ ] Loose task (Project: Home) (Due: 2025-05-01)\n" {
		t.Fatalf("unexpected file %q", got)
	}
	if _, err := s.MoveTask("nothing", "Home"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddNoteReplacesExisting(t *testing.T) {
	s := newTestStore(t, "- [ ] Call bank (Project: Money)\n")
	if err := s.AddNote("bank", "ask about fees", false); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if err := s.AddNote("bank", "ask about rates", false); err != nil {
		t.Fatalf("add note: %v", err)
	}
	got := readFile(t, s)
	if got != "- [ ] Call bank (Project: Money) (Note: ask about rates)\n" {
		t.Fatalf("unexpected file %q", got)
	}
	if strings.Count(got, "(Note:") != 1 {
		t.Fatalf("expected one note tag, got %q", got)
	}
}

func TestAddNoteToProjectHeader(t *testing.T) {
	s := newTestStore(t, "\n--- Project: Money ---\n- [ ] Money task (Project: Money)\n")
	if err := s.AddNote("Money", "budget 2025", true); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if got := readFile(t, s); got != "\n--- Project: Money --- (Note: budget 2025)\n- [ ] Money task (Project: Money)\n" {
		t.Fatalf("unexpected file %q", got)
	}
	if err := s.AddNote("Mon", "x", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for partial project name, got %v", err)
	}
}

func TestAddNoteMatchesHeaderFirst(t *testing.T) {
	s := newTestStore(t, "--- Project: Home ---\n- [ ] Buy milk (Project: Home)\n")
	if err := s.AddNote("Home", "weekly", false); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if got := readFile(t, s); got != "--- Project: Home --- (Note: weekly)\n- [ ] Buy milk (Project: Home)\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestProjectNameWithParens(t *testing.T) {
	s := newTestStore(t, "")
	if _, err := s.AddTask(AddTaskInput{Description: "Draft memo", Project: "Q1 (draft)"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddNote("Draft memo", "send friday", false); err != nil {
		t.Fatalf("add note: %v", err)
	}
	if got := readFile(t, s); got != "- [ ] Draft memo (Project: Q1 (draft)) (Note: send friday)\n" {
		t.Fatalf("unexpected file %q", got)
	}
	lines, err := s.ListTasks(ListFilter{Project: "Q1 (draft)"})
	if err != nil || len(lines) != 1 {
		t.Fatalf("expected 1 task in project, got %d (%v)", len(lines), err)
	}
	n, err := s.MoveProject("Q1 (draft)", "Q2")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 task moved, got %d (%v)", n, err)
	}
	if got := readFile(t, s); got != "- [ ] Draft memo (Project: Q2) (Note: send friday)\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestDeleteProjectWithParens(t *testing.T) {
	s := newTestStore(t, "- [ ] a (Project: Q1 (draft)) (Due: 2025-01-01)\n- [ ] b (Project: Q1)\n")
	n, err := s.DeleteProject("Q1 (draft)")
	if err != nil || n != 1 {
		t.Fatalf("expected 1 line removed, got %d (%v)", n, err)
	}
	if got := readFile(t, s); got != "- [ ] b (Project: Q1)\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestCompleteTaskKeepsCRLF(t *testing.T) {
	s := newTestStore(t, "- [ ] a (Project: X)\r\n- [ ] b (Project: X)\r\n")
	if _, err := s.CompleteTask("a"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := readFile(t, s); got != "- [x] a (Project: X)\r\n- [ ] b (Project: X)\r\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestClearCompletedIsIdempotent(t *testing.T) {
	s := newTestStore(t, "--- Project: A ---\n- [x] a (Project: A)\n- [ ] b (Project: A)\n- [x] c (Project: B)\n")
	n, err := s.ClearCompleted()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 cleared, got %d", n)
	}
	first := readFile(t, s)
	n, err = s.ClearCompleted()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 cleared on second run, got %d", n)
	}
	if second := readFile(t, s); second != first {
		t.Fatalf("expected %q, got %q", first, second)
	}
	if first != "--- Project: A ---\n- [ ] b (Project: A)\n" {
		t.Fatalf("unexpected file %q", first)
	}
}

func TestExactMatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.txt")
	if err := os.WriteFile(path, []byte("- [ ] Buy milk now (Project: H)\n- [ ] Buy milk (Project: H)\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(path, WithMatcher(Exact))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.CompleteTask("Buy milk"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := readFile(t, s); got != "- [ ] Buy milk now (Project: H)\n- [x] Buy milk (Project: H)\n" {
		t.Fatalf("unexpected file %q", got)
	}
}

func TestProjectsSummary(t *testing.T) {
	s := newTestStore(t, "--- Project: Home --- (Note: house)\n- [ ] a (Project: Home)\n- [x] b (Project: Home)\n- [ ] c (Project: Work)\n")
	ps, err := s.Projects()
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(ps))
	}
	if ps[0].Name != "Home" || ps[0].Tasks != 2 || ps[0].Open != 1 || !ps[0].HasHeader || ps[0].Note != "house" {
		t.Fatalf("unexpected Home summary %#v", ps[0])
	}
	if ps[1].Name != "Work" || ps[1].HasHeader || ps[1].Tasks != 1 {
		t.Fatalf("unexpected Work summary %#v", ps[1])
	}
}
