package testing

import (
	"context"
	"sync"

	"github.com/go-drift/forms/pkg/form"
)

// AsyncStub is an async validator whose tasks block until the test settles
// them, one call at a time.
//
//	stub := ftesting.NewAsyncStub()
//	f := form.NewField("a", form.WithAsyncValidators(stub.Validator()), form.WithDispatcher(q))
//	stub.Call(0).Resolve(form.ValidationErrors{"taken": true})
//	q.RunNext(ctx)
type AsyncStub struct {
	mu    sync.Mutex
	calls []*AsyncCall
}

// NewAsyncStub creates a stub with no calls.
func NewAsyncStub() *AsyncStub {
	return &AsyncStub{}
}

// AsyncCall is one task started by an AsyncStub.
type AsyncCall struct {
	// Value is the control's value when the pass started.
	Value any

	once sync.Once
	done chan outcome
}

type outcome struct {
	errs  form.ValidationErrors
	err   error
	panic any
}

// Validator returns the validator function to attach to a control. Every
// pass that starts it records a new call.
func (s *AsyncStub) Validator() form.AsyncValidatorFn {
	return func(c form.Control) form.AsyncTask {
		call := &AsyncCall{Value: c.Value(), done: make(chan outcome, 1)}
		s.mu.Lock()
		s.calls = append(s.calls, call)
		s.mu.Unlock()
		return call.run
	}
}

// Calls reports how many tasks have been started.
func (s *AsyncStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// Call returns the i-th started task; negative i counts from the end.
func (s *AsyncStub) Call(i int) *AsyncCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 {
		i += len(s.calls)
	}
	if i < 0 || i >= len(s.calls) {
		return nil
	}
	return s.calls[i]
}

// Last returns the most recent task, or nil.
func (s *AsyncStub) Last() *AsyncCall { return s.Call(-1) }

// Resolve completes the task with errs, nil meaning valid.
func (c *AsyncCall) Resolve(errs form.ValidationErrors) {
	c.settle(outcome{errs: errs})
}

// Fail completes the task with an error.
func (c *AsyncCall) Fail(err error) {
	c.settle(outcome{err: err})
}

// Panic makes the task panic with v.
func (c *AsyncCall) Panic(v any) {
	c.settle(outcome{panic: v})
}

func (c *AsyncCall) settle(o outcome) {
	c.once.Do(func() { c.done <- o })
}

func (c *AsyncCall) run(ctx context.Context) (form.ValidationErrors, error) {
	select {
	case o := <-c.done:
		if o.panic != nil {
			panic(o.panic)
		}
		return o.errs, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
