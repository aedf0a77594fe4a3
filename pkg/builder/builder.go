// Package builder constructs control trees from shorthand configuration.
//
// A child can be given as:
//
//   - a bare value, which becomes a [form.Field] of type any;
//   - a [form.State] or a map with exactly the keys "value" and "disabled";
//   - an existing [form.Control], used as-is;
//   - a tuple []any{valueOrState, validators, asyncValidators} of one to
//     three elements.
//
// A leaf whose value is itself a slice must therefore be written as a tuple
// or a State. The builder only constructs controls; it has no propagation
// logic of its own.
package builder

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-drift/forms/pkg/form"
)

// ErrConfiguration is matched by every error caused by malformed shorthand.
var ErrConfiguration = errors.New("builder: invalid configuration")

// ConfigError reports the entry that could not be normalized.
type ConfigError struct {
	// Path is the dotted path of the entry within the call. Empty for the
	// top-level spec.
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%v at %q: %s", ErrConfiguration, e.Path, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

func configErrorf(path, format string, args ...any) error {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// Entry is one named child for Group, kept in declared order.
type Entry struct {
	Name string
	Spec any
}

// Builder normalizes shorthand into controls. The zero value is ready to use.
type Builder struct {
	defaults []form.Option
}

// New returns a builder that applies defaults to every control it creates,
// before any per-call options. Defaults suit options every node should share,
// such as WithDispatcher, WithContext, WithLogger or WithUpdateOn.
func New(defaults ...form.Option) *Builder {
	return &Builder{defaults: defaults}
}

func (b *Builder) options(extra []form.Option) []form.Option {
	out := make([]form.Option, 0, len(b.defaults)+len(extra))
	out = append(out, b.defaults...)
	return append(out, extra...)
}

// Control normalizes a single spec. opts apply to the control only when one
// is created; a Control passed through is returned unchanged.
func (b *Builder) Control(spec any, opts ...form.Option) (form.Control, error) {
	return b.control("", spec, opts)
}

// Group builds a group. cfg is either a map[string]any, whose children are
// added in sorted name order, or a []Entry kept in declared order.
func (b *Builder) Group(cfg any, opts ...form.Option) (*form.Group, error) {
	var specs []Entry
	switch c := cfg.(type) {
	case nil:
	case []Entry:
		specs = c
	case map[string]any:
		specs = make([]Entry, 0, len(c))
		for _, name := range sortedKeys(c) {
			specs = append(specs, Entry{Name: name, Spec: c[name]})
		}
	default:
		return nil, configErrorf("", "group configuration must be map[string]any or []builder.Entry, got %T", cfg)
	}
	entries := make([]form.Entry, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, e := range specs {
		if e.Name == "" {
			return nil, configErrorf("", "group entry without a name")
		}
		if seen[e.Name] {
			return nil, configErrorf(e.Name, "duplicate group entry")
		}
		seen[e.Name] = true
		c, err := b.control(e.Name, e.Spec, nil)
		if err != nil {
			return nil, err
		}
		entries = append(entries, form.Entry{Name: e.Name, Control: c})
	}
	return form.NewGroup(entries, b.options(opts)...), nil
}

// List builds a list, normalizing items index by index.
func (b *Builder) List(items []any, opts ...form.Option) (*form.List, error) {
	controls := make([]form.Control, 0, len(items))
	for i, item := range items {
		c, err := b.control(strconv.Itoa(i), item, nil)
		if err != nil {
			return nil, err
		}
		controls = append(controls, c)
	}
	return form.NewList(controls, b.options(opts)...), nil
}

func (b *Builder) control(path string, spec any, opts []form.Option) (form.Control, error) {
	switch s := spec.(type) {
	case form.Control:
		return s, nil
	case []any:
		return b.tuple(path, s, opts)
	}
	state, err := toState(path, spec)
	if err != nil {
		return nil, err
	}
	return form.NewFieldFromState(state, b.options(opts)...), nil
}

func (b *Builder) tuple(path string, t []any, opts []form.Option) (form.Control, error) {
	if len(t) == 0 || len(t) > 3 {
		return nil, configErrorf(path, "tuple must have 1 to 3 elements, got %d", len(t))
	}
	if _, nested := t[0].([]any); nested {
		return nil, configErrorf(path, "tuple value must be a value or state, got a tuple")
	}
	if _, isControl := t[0].(form.Control); isControl {
		return nil, configErrorf(path, "tuple value must be a value or state, got a control")
	}
	state, err := toState(path, t[0])
	if err != nil {
		return nil, err
	}
	var own []form.Option
	if len(t) > 1 {
		fns, err := syncValidators(path, t[1])
		if err != nil {
			return nil, err
		}
		own = append(own, form.WithValidators(fns...))
	}
	if len(t) > 2 {
		fns, err := asyncValidators(path, t[2])
		if err != nil {
			return nil, err
		}
		own = append(own, form.WithAsyncValidators(fns...))
	}
	all := append(b.options(opts), own...)
	return form.NewFieldFromState(state, all...), nil
}

// toState reads a State from a bare value or a state descriptor.
func toState(path string, v any) (form.State[any], error) {
	switch s := v.(type) {
	case form.State[any]:
		return s, nil
	case map[string]any:
		if !isStateMap(s) {
			return form.State[any]{Value: v}, nil
		}
		disabled, ok := s["disabled"].(bool)
		if !ok {
			return form.State[any]{}, configErrorf(path, "state field disabled must be a bool, got %T", s["disabled"])
		}
		return form.State[any]{Value: s["value"], Disabled: disabled}, nil
	}
	return form.State[any]{Value: v}, nil
}

func isStateMap(m map[string]any) bool {
	if len(m) != 2 {
		return false
	}
	_, hasValue := m["value"]
	_, hasDisabled := m["disabled"]
	return hasValue && hasDisabled
}

func syncValidators(path string, v any) ([]form.ValidatorFn, error) {
	switch fn := v.(type) {
	case nil:
		return nil, nil
	case form.ValidatorFn:
		return []form.ValidatorFn{fn}, nil
	case func(form.Control) form.ValidationErrors:
		return []form.ValidatorFn{fn}, nil
	case []form.ValidatorFn:
		return fn, nil
	case []any:
		out := make([]form.ValidatorFn, 0, len(fn))
		for i, item := range fn {
			got, err := syncValidators(path, item)
			if err != nil {
				return nil, configErrorf(path, "validator %d: %s", i, reason(err))
			}
			out = append(out, got...)
		}
		return out, nil
	}
	return nil, configErrorf(path, "unsupported validator %T", v)
}

func asyncValidators(path string, v any) ([]form.AsyncValidatorFn, error) {
	switch fn := v.(type) {
	case nil:
		return nil, nil
	case form.AsyncValidatorFn:
		return []form.AsyncValidatorFn{fn}, nil
	case func(form.Control) form.AsyncTask:
		return []form.AsyncValidatorFn{fn}, nil
	case []form.AsyncValidatorFn:
		return fn, nil
	case []any:
		out := make([]form.AsyncValidatorFn, 0, len(fn))
		for i, item := range fn {
			got, err := asyncValidators(path, item)
			if err != nil {
				return nil, configErrorf(path, "async validator %d: %s", i, reason(err))
			}
			out = append(out, got...)
		}
		return out, nil
	}
	return nil, configErrorf(path, "unsupported async validator %T", v)
}

func reason(err error) string {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	return err.Error()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
