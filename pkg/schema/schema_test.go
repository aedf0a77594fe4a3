package schema_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/forms/pkg/dispatch"
	"github.com/go-drift/forms/pkg/form"
	"github.com/go-drift/forms/pkg/schema"
	"github.com/go-drift/forms/pkg/validators"
)

func TestLoadAndBuild(t *testing.T) {
	doc, err := schema.Load("testdata/signup.yaml")
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", doc.Version)
	require.Len(t, doc.Fields, 6)
	assert.Equal(t, []schema.ValidatorSpec{{Name: "required"}, {Name: "minLength", Arg: 8}}, doc.Fields[1].Validators)

	root, err := doc.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "password", "age", "address", "tags", "terms"}, root.Names())
	assert.Equal(t, form.UpdateOnBlur, root.Get("email").UpdateOn())
	assert.Equal(t, form.UpdateOnChange, root.Get("tags.0").UpdateOn())

	want := map[string]any{
		"email":    "",
		"password": "",
		"age":      17,
		"address":  map[string]any{"city": "Lisbon"},
		"tags":     []any{"go", []any{"nested", "slice"}},
		"terms":    false,
	}
	if diff := cmp.Diff(want, root.Value()); diff != "" {
		t.Errorf("initial value mismatch (-want +got):\n%s", diff)
	}

	assert.True(t, root.Invalid())
	assert.Equal(t, true, root.GetError("required", "email"))
	assert.True(t, root.HasError("required", "terms"))
	assert.Contains(t, root.Get("age").Errors(), "min")
	assert.True(t, root.Get("address.zip").Disabled())

	values, err := schema.LoadValues("testdata/signup.values.yaml")
	require.NoError(t, err)
	require.NoError(t, root.PatchValue(values))
	assert.True(t, root.Valid(), "errors: %v", root.Get("password").Errors())
	assert.Equal(t, []any{"golang", []any{"a", "b"}}, root.Get("tags").Value())

	root.Get("address.zip").Enable()
	require.NoError(t, root.Get("address.zip").SetValue("12345"))
	assert.Contains(t, root.Get("address.zip").Errors(), "pattern")
	require.NoError(t, root.Get("address.zip").SetValue("1000-001"))
	assert.True(t, root.Valid())
}

func TestParse_Version(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"v1.0.0", true},
		{"1.4.2", true},
		{"v1", true},
		{"v2.0.0", false},
		{"0.9.0", false},
		{"one", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			_, err := schema.Parse([]byte("version: \"" + tt.version + "\"\nfields: []\n"))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	_, err := schema.Parse([]byte("version: v2.0.0\n"))
	assert.ErrorIs(t, err, schema.ErrUnsupportedVersion)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty document"},
		{"unknown key", "version: v1.0.0\nfeilds: []\n", "feilds"},
		{"validator list in mapping", "version: v1.0.0\nfields:\n  - name: a\n    validators:\n      - {min: 1, max: 2}\n", "exactly one key"},
		{"validator sequence", "version: v1.0.0\nfields:\n  - name: a\n    validators:\n      - [min]\n", "single-key mapping"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func build(t *testing.T, doc string) (*form.Group, error) {
	t.Helper()
	d, err := schema.Parse([]byte("version: v1.0.0\n" + doc))
	require.NoError(t, err)
	return d.Build()
}

func TestBuild_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		want string
	}{
		{
			"unknown validator",
			"fields:\n  - name: user\n    group:\n      - name: email\n        validators: [emial]\n",
			"user.email",
			`did you mean "email"?`,
		},
		{
			"bad argument",
			"fields:\n  - name: n\n    validators:\n      - minLength: lots\n",
			"n",
			"validator minLength(lots)",
		},
		{
			"duplicate name",
			"fields:\n  - name: a\n  - name: a\n",
			"a",
			"duplicate field name",
		},
		{
			"missing name",
			"fields:\n  - value: 1\n",
			"0",
			"without a name",
		},
		{
			"group and list",
			"fields:\n  - name: a\n    group: [{name: b}]\n    list: [{value: 1}]\n",
			"a",
			"both a group and a list",
		},
		{
			"value on group",
			"fields:\n  - name: a\n    value: 1\n    group: [{name: b}]\n",
			"a",
			"takes its value from its fields",
		},
		{
			"bad updateOn",
			"fields:\n  - name: items\n    list:\n      - updateOn: sometimes\n",
			"items.0",
			"unknown updateOn",
		},
		{
			"unknown async validator",
			"fields:\n  - name: a\n    asyncValidators: [unique]\n",
			"a",
			"unknown validator",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.doc)
			var de *schema.DefinitionError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, tt.path, de.Path)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := build(t, "validators: [requird]\nfields: []\n")
	assert.ErrorIs(t, err, validators.ErrUnknownValidator)
}

func TestBuildWith_AsyncRegistry(t *testing.T) {
	r := validators.NewRegistry()
	r.RegisterAsync("unique", func(arg any) (form.AsyncValidatorFn, error) {
		return form.AsyncValue(func(ctx context.Context, v any) (form.ValidationErrors, error) {
			if v == arg {
				return form.ValidationErrors{"unique": true}, nil
			}
			return nil, nil
		}), nil
	})
	doc, err := schema.Parse([]byte(strings.Join([]string{
		"version: v1.0.0",
		"fields:",
		"  - name: handle",
		"    value: admin",
		"    asyncValidators:",
		"      - unique: admin",
	}, "\n")))
	require.NoError(t, err)

	q := dispatch.NewQueue()
	root, err := doc.BuildWith(r, form.WithDispatcher(q))
	require.NoError(t, err)
	assert.True(t, root.Pending())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, form.WaitSettled(ctx, q, root))
	assert.Equal(t, form.ValidationErrors{"unique": true}, root.Get("handle").Errors())
}

func TestParseValues(t *testing.T) {
	values, err := schema.ParseValues(nil)
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = schema.ParseValues([]byte("a: 1\nb:\n  c: [x]\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": map[string]any{"c": []any{"x"}}}, values)

	_, err = schema.ParseValues([]byte("- not\n- a mapping\n"))
	assert.Error(t, err)

	_, err = schema.LoadValues("testdata/missing.yaml")
	assert.Error(t, err)
}

func TestValidatorSpec_MarshalYAML(t *testing.T) {
	v, err := schema.ValidatorSpec{Name: "required"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "required", v)

	v, err = schema.ValidatorSpec{Name: "min", Arg: 3}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"min": 3}, v)
	assert.Equal(t, "min(3)", schema.ValidatorSpec{Name: "min", Arg: 3}.String())
}
