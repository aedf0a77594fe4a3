package form_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/forms/pkg/dispatch"
	formerrors "github.com/go-drift/forms/pkg/errors"
	"github.com/go-drift/forms/pkg/form"
	ftesting "github.com/go-drift/forms/pkg/testing"
)

func TestSyncValidators_MergeInOrder(t *testing.T) {
	first := func(form.Control) form.ValidationErrors {
		return form.ValidationErrors{"a": 1, "shared": "first"}
	}
	second := func(form.Control) form.ValidationErrors {
		return form.ValidationErrors{"shared": "second"}
	}
	f := form.NewField("", form.WithValidators(first, nil, second))

	assert.Equal(t, form.ValidationErrors{"a": 1, "shared": "second"}, f.Errors())
	assert.True(t, f.Invalid())
	assert.Equal(t, "second", f.GetError("shared"))
}

func TestSyncValidators_EmptyMapMeansValid(t *testing.T) {
	empty := func(form.Control) form.ValidationErrors { return form.ValidationErrors{} }
	f := form.NewField("", form.WithValidators(empty))

	assert.Nil(t, f.Errors())
	assert.True(t, f.Valid())
}

func TestCompose(t *testing.T) {
	assert.Nil(t, form.Compose())
	assert.Nil(t, form.Compose(nil, nil))

	v := form.Compose(requiredString, func(form.Control) form.ValidationErrors {
		return form.ValidationErrors{"other": true}
	})
	got := v(form.NewField(""))
	assert.Equal(t, form.ValidationErrors{"required": true, "other": true}, got)
}

func TestValidators_SetAddClear(t *testing.T) {
	f := form.NewField("")
	f.SetValidators(requiredString)
	assert.True(t, f.Valid(), "setting validators does not revalidate")

	f.UpdateValueAndValidity()
	assert.True(t, f.HasError("required"))

	f.AddValidators(func(form.Control) form.ValidationErrors { return errorsWith("extra", 1) })
	f.UpdateValueAndValidity()
	assert.Equal(t, form.ValidationErrors{"required": true, "extra": 1}, f.Errors())

	f.ClearValidators()
	f.UpdateValueAndValidity()
	assert.True(t, f.Valid())
}

func TestGroup_StatusFromChildren(t *testing.T) {
	name := form.NewField("", form.WithValidators(requiredString))
	g := form.NewGroup(entries("name", name, "age", form.NewField(1)))
	assert.True(t, g.Invalid())
	assert.Nil(t, g.Errors(), "child errors stay on the child")
	assert.True(t, g.HasError("required", "name"))
	assert.Equal(t, true, g.GetError("required", "name"))
	assert.Nil(t, g.GetError("required", "missing"))

	name.Set("ada")
	assert.True(t, g.Valid())

	name.Set("")
	name.Disable()
	assert.True(t, g.Valid(), "disabled children do not count")
}

func TestGroup_ValidatorSeesValue(t *testing.T) {
	match := func(c form.Control) form.ValidationErrors {
		v := c.Value().(map[string]any)
		if v["password"] != v["confirm"] {
			return errorsWith("mismatch", true)
		}
		return nil
	}
	g := form.NewGroup(entries(
		"password", form.NewField("a"),
		"confirm", form.NewField("b"),
	), form.WithValidators(match))
	assert.True(t, g.HasError("mismatch"))

	g.Control("confirm").(*form.Field[string]).Set("a")
	assert.True(t, g.Valid())
}

func TestLegacyOptionsBehaveLikeOptions(t *testing.T) {
	build := func(opt form.Option) *form.Group {
		return form.NewGroup(entries("a", form.NewField("")), opt)
	}
	v := func(c form.Control) form.ValidationErrors { return errorsWith("group", true) }

	legacy := build(form.LegacyOptions{Validator: v})
	current := build(form.Options{Validators: []form.ValidatorFn{v}})

	assert.Equal(t, current.Errors(), legacy.Errors())
	assert.Equal(t, current.Status(), legacy.Status())

	blur := build(form.Options{UpdateOn: form.UpdateOnBlur})
	assert.Equal(t, form.UpdateOnBlur, blur.UpdateOn())
	assert.Equal(t, form.UpdateOnBlur, blur.Control("a").UpdateOn())
}

func TestSetErrors(t *testing.T) {
	f := form.NewField("x")
	g := form.NewGroup(entries("f", f))

	f.SetErrors(form.ValidationErrors{"server": "taken"})
	assert.True(t, f.Invalid())
	assert.True(t, g.Invalid())

	f.SetErrors(form.ValidationErrors{})
	assert.Nil(t, f.Errors())
	assert.True(t, g.Valid())
}

func TestMarkAsPending(t *testing.T) {
	f := form.NewField("x")
	g := form.NewGroup(entries("f", f))

	f.MarkAsPending()
	assert.True(t, f.Pending())
	assert.True(t, g.Pending())

	f.UpdateValueAndValidity()
	assert.True(t, g.Valid())

	f.MarkAsPending(form.OnlySelf())
	assert.True(t, f.Pending())
	assert.True(t, g.Valid())
}

func TestAsync_PendingThenResolved(t *testing.T) {
	q := dispatch.NewQueue()
	stub := ftesting.NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()))
	g := form.NewGroup(entries("user", f), form.WithDispatcher(q))

	// Joining the group restarts the field's pass under the group's dispatcher.
	require.Equal(t, 2, stub.Calls())
	assert.True(t, f.Pending())
	assert.True(t, g.Pending())

	// The superseded pass is delivered off the tree goroutine and dropped.
	stub.Call(0).Resolve(form.ValidationErrors{"stale": true})
	stub.Last().Resolve(form.ValidationErrors{"taken": true})
	assert.True(t, f.Pending(), "results wait in the queue until it is drained")

	settle(t, q, g)
	assert.Equal(t, 0, q.Len())
	assert.True(t, f.Invalid())
	assert.True(t, g.Invalid())
	assert.Equal(t, form.ValidationErrors{"taken": true}, f.Errors())
}

func TestAsync_AttachedChildUsesInheritedDispatcher(t *testing.T) {
	q := dispatch.NewQueue()
	check := form.AsyncValue(func(ctx context.Context, v any) (form.ValidationErrors, error) {
		return form.ValidationErrors{"taken": v}, nil
	})

	tests := []struct {
		name   string
		attach func(child form.Control) form.Control
	}{
		{"list construction", func(c form.Control) form.Control {
			return form.NewList([]form.Control{c}, form.WithDispatcher(q))
		}},
		{"list push", func(c form.Control) form.Control {
			l := form.NewList(nil, form.WithDispatcher(q))
			l.Push(c)
			return l
		}},
		{"group add", func(c form.Control) form.Control {
			g := form.NewGroup(nil, form.WithDispatcher(q))
			g.AddControl("c", c)
			return g
		}},
		{"nested subtree", func(c form.Control) form.Control {
			inner := form.NewGroup(entries("c", c))
			return form.NewGroup(entries("inner", inner), form.WithDispatcher(q))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := make(chan struct{})
			gated := form.AsyncValue(func(ctx context.Context, v any) (form.ValidationErrors, error) {
				<-gate
				return nil, nil
			})
			f := form.NewField("x", form.WithAsyncValidators(gated, check))
			root := tt.attach(f)
			close(gate)

			require.True(t, root.Pending())
			settle(t, q, root)
			assert.Equal(t, form.ValidationErrors{"taken": "x"}, f.Errors())
			assert.True(t, root.Invalid())

			f.Set("y")
			assert.True(t, f.Pending(), "later passes keep using the inherited dispatcher")
			settle(t, q, root)
			assert.Equal(t, form.ValidationErrors{"taken": "y"}, f.Errors())
		})
	}
}

func TestAsync_SkippedWhenSyncInvalid(t *testing.T) {
	q := dispatch.NewQueue()
	stub := ftesting.NewAsyncStub()
	f := form.NewField("",
		form.WithValidators(requiredString),
		form.WithAsyncValidators(stub.Validator()),
		form.WithDispatcher(q))

	assert.Equal(t, 0, stub.Calls())
	assert.True(t, f.Invalid())

	f.Set("bob")
	assert.Equal(t, 1, stub.Calls())
	assert.True(t, f.Pending())
}

func TestAsync_WaitsForAllValidators(t *testing.T) {
	q := dispatch.NewQueue()
	first, second := ftesting.NewAsyncStub(), ftesting.NewAsyncStub()
	f := form.NewField("bob",
		form.WithAsyncValidators(first.Validator(), second.Validator()),
		form.WithDispatcher(q))

	second.Last().Resolve(form.ValidationErrors{"b": 2, "shared": "second"})
	assert.True(t, f.Pending(), "one of two validators is still running")
	assert.Equal(t, 0, q.Len())

	first.Last().Resolve(form.ValidationErrors{"a": 1, "shared": "first"})
	settle(t, q, f)

	assert.Equal(t, form.ValidationErrors{"a": 1, "b": 2, "shared": "second"}, f.Errors())
}

func TestAsync_StaleResultDiscarded(t *testing.T) {
	q := dispatch.NewQueue()
	first, second := ftesting.NewAsyncStub(), ftesting.NewAsyncStub()
	f := form.NewField("a",
		form.WithAsyncValidators(first.Validator(), second.Validator()),
		form.WithDispatcher(q))
	rec := ftesting.Record(f)

	// A second pass supersedes the first before either finishes.
	f.Set("b")
	require.Equal(t, 2, first.Calls())

	// The later pass resolves valid.
	first.Call(1).Resolve(nil)
	second.Call(1).Resolve(nil)
	runNext(t, q)
	assert.True(t, f.Valid())

	// The earlier pass resolves invalid afterwards and must be ignored.
	second.Call(0).Resolve(nil)
	first.Call(0).Resolve(form.ValidationErrors{"taken": true})
	runNext(t, q)

	assert.True(t, f.Valid())
	assert.Nil(t, f.Errors())
	assert.Equal(t, []string{
		"status . PENDING",
		"status . VALID",
	}, rec.Filter("status"))
}

func TestAsync_FailureMarksInvalid(t *testing.T) {
	reports := installReports(t)
	q := dispatch.NewQueue()
	stub := ftesting.NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()), form.WithDispatcher(q))

	stub.Last().Fail(errors.New("lookup unavailable"))
	settle(t, q, f)

	assert.True(t, f.Invalid())
	require.True(t, f.HasError(form.AsyncFailedKey))
	assert.Contains(t, f.GetError(form.AsyncFailedKey), "lookup unavailable")

	errs, panics := reports.counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 0, panics)
}

func TestAsync_PanicMarksInvalid(t *testing.T) {
	reports := installReports(t)
	q := dispatch.NewQueue()
	stub := ftesting.NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()), form.WithDispatcher(q))

	stub.Last().Panic("boom")
	settle(t, q, f)

	assert.True(t, f.HasError(form.AsyncFailedKey))
	assert.Contains(t, f.GetError(form.AsyncFailedKey), "boom")
	errs, panics := reports.counts()
	assert.Equal(t, 1, errs)
	assert.Equal(t, 1, panics)
}

func TestAsync_DispatcherPanicIsReported(t *testing.T) {
	reports := installReports(t)
	broken := dispatch.Func(func(func()) { panic("dispatcher closed") })
	stub := ftesting.NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()))
	g := form.NewGroup(entries("name", f), form.WithDispatcher(broken))
	require.Equal(t, 2, stub.Calls())

	stub.Call(0).Resolve(nil)
	stub.Last().Resolve(nil)
	require.Eventually(t, func() bool {
		errs, _ := reports.counts()
		return errs == 1
	}, time.Second, time.Millisecond)

	got := reports.lastError()
	assert.Equal(t, formerrors.KindDispatch, got.Kind)
	assert.Equal(t, "form.dispatch", got.Op)
	assert.Equal(t, "name", got.Path)
	assert.ErrorContains(t, got, "dispatcher closed")
	assert.True(t, f.Pending())
	assert.True(t, g.Pending())
}

func TestAsync_DisableSupersedes(t *testing.T) {
	q := dispatch.NewQueue()
	stub := ftesting.NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()), form.WithDispatcher(q))
	require.True(t, f.Pending())

	f.Disable()
	assert.Equal(t, form.StatusDisabled, f.Status())

	stub.Call(0).Resolve(form.ValidationErrors{"taken": true})
	runNext(t, q)
	assert.Nil(t, f.Errors())

	f.Enable()
	assert.True(t, f.Pending())
	assert.Equal(t, 2, stub.Calls())
	stub.Last().Resolve(nil)
	settle(t, q, f)
	assert.True(t, f.Valid())
}

func TestAsyncValue_CopiesValue(t *testing.T) {
	q := dispatch.NewQueue()
	seen := make(chan any, 1)
	release := make(chan struct{})
	check := form.AsyncValue(func(ctx context.Context, v any) (form.ValidationErrors, error) {
		<-release
		seen <- v
		return nil, nil
	})
	tags := []string{"a"}
	f := form.NewField(tags, form.WithAsyncValidators(check), form.WithDispatcher(q))

	tags[0] = "changed"
	close(release)
	settle(t, q, f)

	assert.Equal(t, []string{"a"}, <-seen)
}

func TestWithContext(t *testing.T) {
	type key struct{}
	q := dispatch.NewQueue()
	got := make(chan any, 1)
	check := form.AsyncValue(func(ctx context.Context, _ any) (form.ValidationErrors, error) {
		got <- ctx.Value(key{})
		return nil, nil
	})
	ctx := context.WithValue(context.Background(), key{}, "request-1")
	form.NewGroup(
		entries("f", form.NewField("x")),
		form.WithContext(ctx),
		form.WithDispatcher(q),
		form.WithAsyncValidators(check),
	)
	runNext(t, q)
	assert.Equal(t, "request-1", <-got)
}

func TestComposeAsync(t *testing.T) {
	a, b := ftesting.NewAsyncStub(), ftesting.NewAsyncStub()
	assert.Nil(t, form.ComposeAsync(nil))

	task := form.ComposeAsync(a.Validator(), b.Validator())(form.NewField(1))
	a.Last().Resolve(form.ValidationErrors{"a": true})
	b.Last().Fail(errors.New("down"))

	errs, err := task(context.Background())
	assert.Equal(t, form.ValidationErrors{"a": true}, errs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}

func TestTraceLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Name: "test", Level: hclog.Trace, Output: &buf})
	q := dispatch.NewQueue()
	stub := ftesting.NewAsyncStub()
	f := form.NewField("a",
		form.WithAsyncValidators(stub.Validator()),
		form.WithDispatcher(q),
		form.WithLogger(logger))

	f.Set("b")
	stub.Call(0).Resolve(nil)
	runNext(t, q)

	assert.Contains(t, buf.String(), "async validation started")
	assert.Contains(t, buf.String(), "discarding stale async result")
}
