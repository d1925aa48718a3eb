package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	SortStatus  = "status"
	SortProject = "project"
	SortDue     = "due"
)

var SortKeys = []string{SortStatus, SortProject, SortDue}

// sortLines orders task lines in place. All orderings are stable so lines
// with equal keys keep their file order.
func sortLines(lines []Line, by string, logger *log.Logger) error {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "":
		return nil
	case SortStatus:
		sort.SliceStable(lines, func(i, j int) bool {
			return !lines[i].Task.Done && lines[j].Task.Done
		})
	case SortProject:
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].Task.Project < lines[j].Task.Project
		})
	case SortDue:
		keys := make([]dueKey, len(lines))
		for i := range lines {
			keys[i] = newDueKey(lines[i].Task, logger)
		}
		idx := make([]int, len(lines))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return keys[idx[a]].less(keys[idx[b]])
		})
		sorted := make([]Line, len(lines))
		for i, k := range idx {
			sorted[i] = lines[k]
		}
		copy(lines, sorted)
	default:
		return fmt.Errorf("%w: unknown sort %q (use %s)", ErrInvalid, by, strings.Join(SortKeys, "|"))
	}
	return nil
}

// dueKey ranks dated tasks first, then tasks without a due date, then tasks
// whose due date does not parse.
type dueKey struct {
	rank int
	at   time.Time
}

func newDueKey(t Task, logger *log.Logger) dueKey {
	due := strings.TrimSpace(t.Due)
	if due == "" {
		return dueKey{rank: 1}
	}
	at, err := time.Parse(DateLayout, due)
	if err != nil {
		logger.Warn("unparseable due date, sorting last", "task", t.Description, "due", due)
		return dueKey{rank: 2}
	}
	return dueKey{at: at}
}

func (k dueKey) less(o dueKey) bool {
	if k.rank != o.rank {
		return k.rank < o.rank
	}
	return k.at.Before(o.at)
}
