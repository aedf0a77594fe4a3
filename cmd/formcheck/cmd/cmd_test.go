package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/forms/pkg/form"
)

// capture redirects command output for the duration of a test.
func capture(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	out, errOut = new(bytes.Buffer), new(bytes.Buffer)
	prevOut, prevErr := stdout, stderr
	stdout, stderr = out, errOut
	t.Cleanup(func() { stdout, stderr = prevOut, prevErr })
	return out, errOut
}

// reportLines indexes report output by control path.
func reportLines(out string) map[string][]string {
	lines := make(map[string][]string)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 0 {
			lines[fields[0]] = fields[1:]
		}
	}
	return lines
}

func TestValidate_Valid(t *testing.T) {
	out, _ := capture(t)
	require.NoError(t, Run([]string{"validate", "testdata/profile.yaml", "testdata/good.values.yaml"}))

	lines := reportLines(out.String())
	assert.Equal(t, []string{"VALID", "-"}, lines["."])
	assert.Equal(t, []string{"VALID", "-"}, lines["email"])
	assert.Equal(t, []string{"DISABLED", "-"}, lines["address.zip"])
	assert.Equal(t, []string{"VALID", "-"}, lines["tags.0"])
	assert.Len(t, lines, 8)
}

func TestValidate_Invalid(t *testing.T) {
	out, _ := capture(t)
	err := Run([]string{"validate", "testdata/profile.yaml", "testdata/bad.values.yaml"})
	require.ErrorIs(t, err, ErrInvalid)

	lines := reportLines(out.String())
	assert.Equal(t, []string{"INVALID", "-"}, lines["."])
	assert.Equal(t, []string{"INVALID", "email"}, lines["email"])
	require.NotEmpty(t, lines["age"])
	assert.Equal(t, "INVALID", lines["age"][0])
	assert.True(t, strings.HasPrefix(lines["age"][1], "min="), "got %v", lines["age"])
	assert.Equal(t, []string{"INVALID", "-"}, lines["address"])
	assert.Equal(t, []string{"INVALID", "required"}, lines["address.city"])
}

func TestValidate_Patch(t *testing.T) {
	capture(t)
	err := Run([]string{"validate", "testdata/profile.yaml", "testdata/partial.values.yaml"})
	require.ErrorIs(t, err, form.ErrShapeMismatch)
	assert.Contains(t, err.Error(), "age")

	out, _ := capture(t)
	err = Run([]string{"validate", "--patch", "testdata/profile.yaml", "testdata/partial.values.yaml"})
	require.ErrorIs(t, err, ErrInvalid)
	lines := reportLines(out.String())
	assert.Equal(t, []string{"VALID", "-"}, lines["email"])
}

func TestValidate_LoadErrors(t *testing.T) {
	capture(t)
	err := Run([]string{"validate", "testdata/missing.yaml", "testdata/good.values.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read form definition")

	err = Run([]string{"validate", "testdata/profile.yaml", "testdata/missing.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read values")
}

func TestParseValidateArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    validateOptions
		wantErr bool
	}{
		{
			name: "defaults",
			args: []string{"def.yaml", "values.yaml"},
			want: validateOptions{logLevel: "warn", definition: "def.yaml", values: "values.yaml"},
		},
		{
			name: "flags",
			args: []string{"-patch", "def.yaml", "--log-level", "debug", "values.yaml"},
			want: validateOptions{patch: true, logLevel: "debug", definition: "def.yaml", values: "values.yaml"},
		},
		{
			name: "level with equals",
			args: []string{"--log-level=trace", "def.yaml", "values.yaml"},
			want: validateOptions{logLevel: "trace", definition: "def.yaml", values: "values.yaml"},
		},
		{name: "missing values", args: []string{"def.yaml"}, wantErr: true},
		{name: "too many files", args: []string{"a", "b", "c"}, wantErr: true},
		{name: "unknown flag", args: []string{"--strict", "a", "b"}, wantErr: true},
		{name: "missing level", args: []string{"a", "b", "--log-level"}, wantErr: true},
		{name: "bad level", args: []string{"--log-level", "loud", "a", "b"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseValidateArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTree(t *testing.T) {
	out, _ := capture(t)
	require.NoError(t, Run([]string{"tree", "testdata/profile.yaml"}))
	want := strings.Join([]string{
		`. (group) INVALID`,
		`  email (field) INVALID = ""`,
		`  age (field) INVALID = 0`,
		`  address (group) INVALID`,
		`    city (field) INVALID = ""`,
		`    zip (field) DISABLED = ""`,
		`  tags (list) VALID [updateOn blur]`,
		`    0 (field) VALID = "go" [updateOn blur]`,
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())

	assert.Error(t, Run([]string{"tree"}))
}

func TestRun_Dispatch(t *testing.T) {
	out, errOut := capture(t)
	require.NoError(t, Run([]string{"version"}))
	assert.Contains(t, out.String(), "formcheck version "+Version)

	out.Reset()
	require.NoError(t, Run([]string{"--version"}))
	assert.Contains(t, out.String(), "formcheck version")

	out.Reset()
	require.NoError(t, Run(nil))
	assert.Contains(t, out.String(), "validate")
	assert.Contains(t, out.String(), "tree")

	out.Reset()
	require.NoError(t, Run([]string{"validate", "--help"}))
	assert.Contains(t, out.String(), "--patch")

	err := Run([]string{"lint"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, errOut.String(), `unknown command "lint"`)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "-", formatErrors(nil))
	assert.Equal(t, "email required", formatErrors(form.ValidationErrors{"required": true, "email": true}))
	assert.Equal(t, "minlength=3 taken", formatErrors(form.ValidationErrors{"taken": true, "minlength": 3}))
}
