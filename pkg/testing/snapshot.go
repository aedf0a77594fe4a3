package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/forms/pkg/form"
)

// UpdateEnv names the environment variable that makes MatchesFile rewrite
// golden files instead of comparing against them.
const UpdateEnv = "FORMS_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the state of a control tree.
type Snapshot struct {
	Root *Node `json:"root"`
}

// Node is one control in a Snapshot.
type Node struct {
	Path     string         `json:"path"`
	Kind     string         `json:"kind"`
	Status   string         `json:"status"`
	Value    any            `json:"value,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
	Dirty    bool           `json:"dirty,omitempty"`
	Touched  bool           `json:"touched,omitempty"`
	Children []*Node        `json:"children,omitempty"`
}

// Capture records c and its descendants. Only fields carry a value; a
// composite's value is implied by its children.
func Capture(c form.Control) *Snapshot {
	if c == nil {
		return &Snapshot{}
	}
	return &Snapshot{Root: captureNode(c)}
}

func captureNode(c form.Control) *Node {
	n := &Node{
		Path:    form.Path(c),
		Status:  c.Status().String(),
		Dirty:   c.Dirty(),
		Touched: c.Touched(),
	}
	if errs := c.Errors(); errs != nil {
		n.Errors = map[string]any(errs)
	}
	switch t := c.(type) {
	case *form.Group:
		n.Kind = "group"
		for _, name := range t.Names() {
			n.Children = append(n.Children, captureNode(t.Control(name)))
		}
	case *form.List:
		n.Kind = "list"
		for _, child := range t.Controls() {
			n.Children = append(n.Children, captureNode(child))
		}
	default:
		n.Kind = "field"
		n.Value = c.Value()
	}
	return n
}

// Paths lists every path in the snapshot in tree order.
func (s *Snapshot) Paths() []string {
	var out []string
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		out = append(out, n.Path)
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return out
}

// Find returns the node at path, or nil.
func (s *Snapshot) Find(path string) *Node {
	var found *Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n == nil || found != nil {
			return
		}
		if n.Path == path {
			found = n
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(s.Root)
	return found
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When FORMS_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s (-expected +actual)\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff compares the JSON forms of other and s and returns an empty string
// when they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, err := normalize(other)
	if err != nil {
		return err.Error()
	}
	b, err := normalize(s)
	if err != nil {
		return err.Error()
	}
	return cmp.Diff(a, b)
}

// normalize round-trips through JSON so values compare the way they are
// stored on disk.
func normalize(s *Snapshot) (any, error) {
	data, err := marshalSnapshot(s)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return out, nil
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SortedKeys returns the keys of m in order. Handy for asserting on errors.
func SortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
