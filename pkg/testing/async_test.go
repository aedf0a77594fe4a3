package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-drift/forms/pkg/dispatch"
	formerrors "github.com/go-drift/forms/pkg/errors"
	"github.com/go-drift/forms/pkg/form"
)

type quietHandler struct{}

func (quietHandler) HandleError(*formerrors.FormError) {}
func (quietHandler) HandlePanic(*formerrors.PanicError) {}

func settle(t *testing.T, q *dispatch.Queue, c form.Control) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := form.WaitSettled(ctx, q, c); err != nil {
		t.Fatalf("WaitSettled: %v", err)
	}
}

func TestAsyncStub_Resolve(t *testing.T) {
	q := dispatch.NewQueue()
	stub := NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()), form.WithDispatcher(q))

	if stub.Calls() != 1 {
		t.Fatalf("calls = %d, want 1", stub.Calls())
	}
	if stub.Last().Value != "bob" {
		t.Errorf("call value = %v, want bob", stub.Last().Value)
	}
	if !f.Pending() {
		t.Fatalf("status = %s, want PENDING", f.Status())
	}

	stub.Last().Resolve(form.ValidationErrors{"taken": true})
	settle(t, q, f)

	if !f.Invalid() || !f.HasError("taken") {
		t.Errorf("status = %s errors = %v", f.Status(), f.Errors())
	}
}

func TestAsyncStub_FailAndPanic(t *testing.T) {
	formerrors.SetHandler(quietHandler{})
	defer formerrors.SetHandler(nil)

	q := dispatch.NewQueue()
	stub := NewAsyncStub()
	f := form.NewField("bob", form.WithAsyncValidators(stub.Validator()), form.WithDispatcher(q))

	stub.Last().Fail(errors.New("lookup down"))
	settle(t, q, f)
	if !f.HasError(form.AsyncFailedKey) {
		t.Errorf("errors = %v, want %s", f.Errors(), form.AsyncFailedKey)
	}

	f.Set("alice")
	stub.Last().Panic("boom")
	settle(t, q, f)
	if !f.HasError(form.AsyncFailedKey) {
		t.Errorf("errors = %v, want %s after panic", f.Errors(), form.AsyncFailedKey)
	}
}

func TestAsyncStub_Call(t *testing.T) {
	stub := NewAsyncStub()
	if stub.Last() != nil || stub.Call(3) != nil {
		t.Error("expected nil calls on an empty stub")
	}

	task := stub.Validator()(form.NewField(1))
	call := stub.Call(0)
	call.Resolve(nil)
	call.Resolve(form.ValidationErrors{"ignored": true})

	errs, err := task(context.Background())
	if err != nil || errs != nil {
		t.Errorf("task = %v, %v; want nil, nil", errs, err)
	}
}

func TestAsyncStub_ContextCancelled(t *testing.T) {
	stub := NewAsyncStub()
	task := stub.Validator()(form.NewField(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := task(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
