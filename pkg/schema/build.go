package schema

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-drift/forms/pkg/builder"
	"github.com/go-drift/forms/pkg/form"
	"github.com/go-drift/forms/pkg/validators"
)

// Build creates the control tree described by d using the default
// validator registry. opts apply to every control, as with [builder.New].
func (d *Document) Build(opts ...form.Option) (*form.Group, error) {
	return d.BuildWith(validators.Default(), opts...)
}

// BuildWith is Build with an explicit validator registry.
func (d *Document) BuildWith(r *validators.Registry, opts ...form.Option) (*form.Group, error) {
	c := &compiler{registry: r, builder: builder.New(opts...)}
	own, err := c.options("", d.UpdateOn, false, d.Validators, d.AsyncValidators)
	if err != nil {
		return nil, err
	}
	entries, err := c.entries("", d.Fields)
	if err != nil {
		return nil, err
	}
	g, err := c.builder.Group(entries, own...)
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	return g, nil
}

type compiler struct {
	registry *validators.Registry
	builder  *builder.Builder
}

func (c *compiler) entries(prefix string, fields []FieldSpec) ([]builder.Entry, error) {
	out := make([]builder.Entry, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Name == "" {
			return nil, &DefinitionError{Path: join(prefix, strconv.Itoa(i)), Reason: "group field without a name"}
		}
		path := join(prefix, f.Name)
		if seen[f.Name] {
			return nil, &DefinitionError{Path: path, Reason: "duplicate field name"}
		}
		seen[f.Name] = true
		ctrl, err := c.field(path, f)
		if err != nil {
			return nil, err
		}
		out = append(out, builder.Entry{Name: f.Name, Spec: ctrl})
	}
	return out, nil
}

func (c *compiler) field(path string, f *FieldSpec) (form.Control, error) {
	if f.Group != nil && f.List != nil {
		return nil, &DefinitionError{Path: path, Reason: "field cannot be both a group and a list"}
	}
	if f.kind() != "field" && f.Value != nil {
		return nil, &DefinitionError{Path: path, Reason: fmt.Sprintf("a %s takes its value from its fields", f.kind())}
	}
	opts, err := c.options(path, f.UpdateOn, f.Disabled, f.Validators, f.AsyncValidators)
	if err != nil {
		return nil, err
	}

	var (
		ctrl form.Control
		berr error
	)
	switch f.kind() {
	case "group":
		entries, err := c.entries(path, f.Group)
		if err != nil {
			return nil, err
		}
		ctrl, berr = c.builder.Group(entries, opts...)
	case "list":
		items := make([]any, 0, len(f.List))
		for i := range f.List {
			item, err := c.field(join(path, strconv.Itoa(i)), &f.List[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		ctrl, berr = c.builder.List(items, opts...)
	default:
		// State keeps slice and mapping values from being read as shorthand.
		ctrl, berr = c.builder.Control(form.State[any]{Value: f.Value}, opts...)
	}
	if berr != nil {
		return nil, &DefinitionError{Path: path, Err: berr}
	}
	return ctrl, nil
}

func (c *compiler) options(path, updateOn string, disabled bool, syncs, asyncs []ValidatorSpec) ([]form.Option, error) {
	var opts []form.Option
	if updateOn != "" {
		u, err := form.ParseUpdateOn(updateOn)
		if err != nil {
			return nil, &DefinitionError{Path: path, Err: err}
		}
		opts = append(opts, form.WithUpdateOn(u))
	}
	if disabled {
		opts = append(opts, form.WithDisabled())
	}
	for _, v := range syncs {
		fn, err := c.registry.Build(v.Name, v.Arg)
		if err != nil {
			return nil, c.validatorError(path, v, err)
		}
		opts = append(opts, form.WithValidators(fn))
	}
	for _, v := range asyncs {
		fn, err := c.registry.BuildAsync(v.Name, v.Arg)
		if err != nil {
			return nil, c.validatorError(path, v, err)
		}
		opts = append(opts, form.WithAsyncValidators(fn))
	}
	return opts, nil
}

func (c *compiler) validatorError(path string, v ValidatorSpec, err error) error {
	if errors.Is(err, validators.ErrUnknownValidator) {
		return &DefinitionError{Path: path, Err: err}
	}
	return &DefinitionError{Path: path, Reason: fmt.Sprintf("validator %s", v), Err: err}
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
