package store

import "strings"

// Matcher decides whether a line is selected by a user query.
type Matcher interface {
	Match(l Line, query string) bool
}

type MatchFunc func(l Line, query string) bool

func (f MatchFunc) Match(l Line, query string) bool { return f(l, query) }

var (
	// Contains selects any line whose text contains the query.
	Contains = MatchFunc(func(l Line, query string) bool {
		return strings.Contains(l.raw, query)
	})
	// Exact selects tasks whose description equals the query.
	Exact = MatchFunc(func(l Line, query string) bool {
		return l.Kind == KindTask && l.Task.Description == query
	})
)

// find returns the index of the first line accepted by keep and selected by
// the store's matcher, or -1.
func (s *Store) find(doc *Document, query string, keep func(Line) bool) int {
	for i, l := range doc.Lines {
		if keep(l) && s.matcher.Match(l, query) {
			return i
		}
	}
	return -1
}

func isTask(l Line) bool { return l.Kind == KindTask }

func isOpenTask(l Line) bool { return l.Kind == KindTask && !l.Task.Done }

func isNoteTarget(l Line) bool { return l.Kind == KindTask || l.Kind == KindHeader }
