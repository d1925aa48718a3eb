package store

import (
	"strings"
)

// Kind identifies what a line of the todo file holds.
type Kind int

const (
	KindBlank Kind = iota
	KindTask
	KindHeader
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindTask:
		return "task"
	case KindHeader:
		return "header"
	default:
		return "text"
	}
}

const (
	openMarker   = "- [ ]"
	doneMarker   = "- [x]"
	headerPrefix = "--- Project: "
	headerSuffix = " ---"
	projectTag   = "(Project: "
	dueTag       = "(Due: "
	noteTag      = "(Note: "

	// DateLayout is the only accepted due date format.
	DateLayout = "2006-01-02"
)

type Task struct {
	Done        bool   `json:"done" yaml:"done"`
	Description string `json:"description" yaml:"description"`
	Project     string `json:"project" yaml:"project"`
	Due         string `json:"due,omitempty" yaml:"due,omitempty"`
	Note        string `json:"note,omitempty" yaml:"note,omitempty"`
}

type Header struct {
	Name string `json:"name" yaml:"name"`
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// Line is one parsed line of the todo file. The original text is kept so
// lines that are never mutated are written back unchanged.
type Line struct {
	Kind   Kind
	Task   Task
	Header Header
	raw    string
}

func (l Line) String() string { return l.raw }

func TaskLine(t Task) Line {
	return Line{Kind: KindTask, Task: t, raw: t.String()}
}

func HeaderLine(h Header) Line {
	return Line{Kind: KindHeader, Header: h, raw: h.String()}
}

func BlankLine() Line {
	return Line{Kind: KindBlank}
}

func (t Task) String() string {
	var b strings.Builder
	if t.Done {
		b.WriteString(doneMarker)
	} else {
		b.WriteString(openMarker)
	}
	b.WriteByte(' ')
	b.WriteString(t.Description)
	if t.Project != "" {
		b.WriteString(" " + projectTag + t.Project + ")")
	}
	if t.Due != "" {
		b.WriteString(" " + dueTag + t.Due + ")")
	}
	if t.Note != "" {
		b.WriteString(" " + noteTag + t.Note + ")")
	}
	return b.String()
}

func (h Header) String() string {
	s := headerPrefix + h.Name + headerSuffix
	if h.Note != "" {
		s += " " + noteTag + h.Note + ")"
	}
	return s
}

// ParseLine classifies a single line (without its newline).
func ParseLine(raw string) Line {
	trimmed := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
	if trimmed == "" {
		return Line{Kind: KindBlank, raw: raw}
	}
	if t, ok := parseTask(trimmed); ok {
		return Line{Kind: KindTask, Task: t, raw: raw}
	}
	if h, ok := parseHeader(trimmed); ok {
		return Line{Kind: KindHeader, Header: h, raw: raw}
	}
	return Line{Kind: KindText, raw: raw}
}

func parseTask(s string) (Task, bool) {
	var t Task
	var body string
	switch {
	case strings.HasPrefix(s, openMarker):
		body = s[len(openMarker):]
	case strings.HasPrefix(s, doneMarker):
		t.Done = true
		body = s[len(doneMarker):]
	default:
		return t, false
	}
	// The note runs to the end of the line. Due and project are cut from the
	// right, so a project name may itself hold parentheses.
	t.Note, body, _ = cutTag(body, noteTag, true)
	t.Due, body, _ = cutTrailingTag(body, dueTag, false)
	t.Project, body, _ = cutTrailingTag(body, projectTag, true)
	t.Description = strings.TrimSpace(body)
	return t, true
}

func parseHeader(s string) (Header, bool) {
	if !strings.HasPrefix(s, headerPrefix) {
		return Header{}, false
	}
	rest := s[len(headerPrefix):]
	i := strings.Index(rest, headerSuffix)
	if i < 0 {
		return Header{}, false
	}
	h := Header{Name: rest[:i]}
	tail := rest[i+len(headerSuffix):]
	if note, _, ok := cutTag(tail, noteTag, true); ok {
		h.Note = note
	}
	return h, true
}

// cutTag removes the first "(Key: value)" segment starting with tag from s
// and returns its value and what is left of s.
func cutTag(s, tag string, toEnd bool) (string, string, bool) {
	i := strings.Index(s, tag)
	if i < 0 {
		return "", s, false
	}
	start := i + len(tag)
	if toEnd {
		v := strings.TrimSuffix(strings.TrimRight(s[start:], " "), ")")
		return v, strings.TrimRight(s[:i], " "), true
	}
	j := strings.Index(s[start:], ")")
	if j < 0 {
		return s[start:], strings.TrimRight(s[:i], " "), true
	}
	rest := strings.TrimRight(s[:i], " ") + s[start+j+1:]
	return s[start : start+j], rest, true
}

// cutTrailingTag removes the "(Key: value)" segment that closes s. Unless
// nested is set the value may not contain parentheses. Segments that do not
// close the line fall back to cutTag.
func cutTrailingTag(s, tag string, nested bool) (string, string, bool) {
	trimmed := strings.TrimRight(s, " ")
	if !strings.HasSuffix(trimmed, ")") {
		return cutTag(s, tag, false)
	}
	i := strings.LastIndex(trimmed, tag)
	if i < 0 {
		return "", s, false
	}
	v := trimmed[i+len(tag) : len(trimmed)-1]
	if !nested && strings.ContainsAny(v, "()") {
		return cutTag(s, tag, false)
	}
	return v, strings.TrimRight(trimmed[:i], " "), true
}

func (l *Line) setTask(t Task) {
	l.Kind = KindTask
	l.Task = t
	l.raw = t.String() + l.eol()
}

func (l *Line) setHeader(h Header) {
	l.Kind = KindHeader
	l.Header = h
	l.raw = h.String() + l.eol()
}

// eol is the carriage return a CRLF line carries, if any.
func (l *Line) eol() string {
	if strings.HasSuffix(l.raw, "\r") {
		return "\r"
	}
	return ""
}

// markDone flips the open marker in place so the rest of the line keeps
// its exact bytes.
func (l *Line) markDone() {
	l.Task.Done = true
	l.raw = strings.Replace(l.raw, openMarker, doneMarker, 1)
}

// Document is the whole todo file as a sequence of lines.
type Document struct {
	Lines []Line
}

func ParseDocument(b []byte) *Document {
	s := string(b)
	if s == "" {
		return &Document{}
	}
	s = strings.TrimSuffix(s, "\n")
	parts := strings.Split(s, "\n")
	doc := &Document{Lines: make([]Line, 0, len(parts))}
	for _, p := range parts {
		doc.Lines = append(doc.Lines, ParseLine(p))
	}
	return doc
}

func (d *Document) Bytes() []byte {
	if len(d.Lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, l := range d.Lines {
		b.WriteString(l.raw)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (d *Document) Tasks() []Line {
	var out []Line
	for _, l := range d.Lines {
		if l.Kind == KindTask {
			out = append(out, l)
		}
	}
	return out
}

func (d *Document) header(name string) int {
	for i, l := range d.Lines {
		if l.Kind == KindHeader && l.Header.Name == name {
			return i
		}
	}
	return -1
}
