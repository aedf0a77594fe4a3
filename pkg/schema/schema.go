// Package schema reads declarative form definitions from YAML and builds
// control trees from them.
//
// A definition looks like:
//
//	version: v1.0.0
//	updateOn: blur
//	fields:
//	  - name: email
//	    value: ""
//	    validators: [required, email]
//	  - name: age
//	    value: 18
//	    validators:
//	      - min: 18
//	  - name: address
//	    group:
//	      - name: city
//	        value: ""
//	  - name: tags
//	    list:
//	      - value: go
//
// Validators are looked up by name in a [validators.Registry]; a mapping
// entry passes its value to the validator factory.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the definition format major version this package reads.
const SupportedMajor = "v1"

// ErrUnsupportedVersion is returned for definitions of another major version.
var ErrUnsupportedVersion = errors.New("schema: unsupported version")

// DefinitionError reports a field whose definition cannot be built.
type DefinitionError struct {
	// Path is the dotted path of the field. Empty for the document itself.
	Path   string
	Reason string
	Err    error
}

func (e *DefinitionError) Error() string {
	msg := e.Reason
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg += ": " + e.Err.Error()
		}
	}
	if e.Path == "" {
		return "schema: " + msg
	}
	return fmt.Sprintf("schema: field %q: %s", e.Path, msg)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// Document is a parsed form definition.
type Document struct {
	Version         string          `yaml:"version"`
	UpdateOn        string          `yaml:"updateOn,omitempty"`
	Validators      []ValidatorSpec `yaml:"validators,omitempty"`
	AsyncValidators []ValidatorSpec `yaml:"asyncValidators,omitempty"`
	Fields          []FieldSpec     `yaml:"fields"`
}

// FieldSpec defines one control. A field with Group set becomes a group of
// those fields, one with List set becomes a list, and any other field is a
// leaf holding Value.
type FieldSpec struct {
	Name            string          `yaml:"name,omitempty"`
	Value           any             `yaml:"value,omitempty"`
	Disabled        bool            `yaml:"disabled,omitempty"`
	UpdateOn        string          `yaml:"updateOn,omitempty"`
	Validators      []ValidatorSpec `yaml:"validators,omitempty"`
	AsyncValidators []ValidatorSpec `yaml:"asyncValidators,omitempty"`
	Group           []FieldSpec     `yaml:"group,omitempty"`
	List            []FieldSpec     `yaml:"list,omitempty"`
}

func (f *FieldSpec) kind() string {
	switch {
	case f.Group != nil:
		return "group"
	case f.List != nil:
		return "list"
	}
	return "field"
}

// ValidatorSpec names a validator and its optional argument. In YAML it is
// either a bare name or a mapping with a single key:
//
//	- required
//	- minLength: 3
type ValidatorSpec struct {
	Name string
	Arg  any
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *ValidatorSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*v = ValidatorSpec{Name: strings.TrimSpace(name)}
		if v.Name == "" {
			return fmt.Errorf("line %d: empty validator name", node.Line)
		}
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: validator mapping must have exactly one key, got %d", node.Line, len(node.Content)/2)
		}
		var name string
		if err := node.Content[0].Decode(&name); err != nil {
			return err
		}
		var arg any
		if err := node.Content[1].Decode(&arg); err != nil {
			return err
		}
		*v = ValidatorSpec{Name: strings.TrimSpace(name), Arg: arg}
		return nil
	}
	return fmt.Errorf("line %d: validator must be a name or a single-key mapping", node.Line)
}

// MarshalYAML implements yaml.Marshaler.
func (v ValidatorSpec) MarshalYAML() (any, error) {
	if v.Arg == nil {
		return v.Name, nil
	}
	return map[string]any{v.Name: v.Arg}, nil
}

func (v ValidatorSpec) String() string {
	if v.Arg == nil {
		return v.Name
	}
	return fmt.Sprintf("%s(%v)", v.Name, v.Arg)
}

// Parse decodes a definition. Unknown keys are rejected, and the version
// must be a semantic version with major version v1.
func Parse(data []byte) (*Document, error) {
	return decode(bytes.NewReader(data))
}

// Load reads and parses the definition at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form definition: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

func decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DefinitionError{Reason: "empty document"}
		}
		return nil, fmt.Errorf("failed to parse form definition: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return nil, err
	}
	return &doc, nil
}

func checkVersion(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return &DefinitionError{Reason: "missing version"}
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return &DefinitionError{Reason: fmt.Sprintf("invalid version %q", v)}
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("%w %s (want %s.x)", ErrUnsupportedVersion, v, SupportedMajor)
	}
	return nil
}
