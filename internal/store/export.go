package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatYAML   = "yaml"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// Snapshot is the exported view of a todo file.
type Snapshot struct {
	File     string           `json:"file" yaml:"file"`
	Projects []ProjectSummary `json:"projects" yaml:"projects"`
	Tasks    []Task           `json:"tasks" yaml:"tasks"`
}

func (s *Store) Snapshot() (*Snapshot, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{File: s.Path, Projects: summarizeProjects(doc), Tasks: []Task{}}
	for _, l := range doc.Tasks() {
		snap.Tasks = append(snap.Tasks, l.Task)
	}
	if snap.Projects == nil {
		snap.Projects = []ProjectSummary{}
	}
	return snap, nil
}

// Export writes a snapshot into dir and returns the path written. NDJSON
// holds one task per line.
func (s *Store) Export(format, dir string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatJSON
	}
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: export directory is empty", ErrInvalid)
	}
	snap, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	var data []byte
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(snap, "", "  ")
		data = append(data, '\n')
	case FormatNDJSON:
		var b strings.Builder
		for _, t := range snap.Tasks {
			line, merr := json.Marshal(t)
			if merr != nil {
				return "", merr
			}
			b.Write(line)
			b.WriteByte('\n')
		}
		data = []byte(b.String())
	case FormatYAML:
		data, err = yaml.Marshal(snap)
	default:
		return "", fmt.Errorf("%w: unknown export format %q (use json|ndjson|yaml)", ErrInvalid, format)
	}
	if err != nil {
		return "", err
	}
	path := filepath.Join(expandHome(dir), fmt.Sprintf("todolist-%s.%s", newULID(), format))
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	s.logger.Debug("exported", "format", format, "path", path, "tasks", len(snap.Tasks))
	return path, nil
}

func newULID() string {
	t := ulid.Timestamp(timeNow())
	entropy := ulid.Monotonic(randReader{}, 0)
	id, err := ulid.New(t, entropy)
	if err != nil {
		return fmt.Sprintf("%d", timeNow().UnixNano())
	}
	return strings.ToUpper(id.String())
}
