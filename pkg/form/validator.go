package form

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/copystructure"
	"golang.org/x/sync/errgroup"

	formerrors "github.com/go-drift/forms/pkg/errors"
)

// ValidatorFn inspects a control and returns its errors, or nil when valid.
type ValidatorFn func(c Control) ValidationErrors

// AsyncTask is the deferred half of an asynchronous validator. It runs on its
// own goroutine and must not touch the control tree.
type AsyncTask func(ctx context.Context) (ValidationErrors, error)

// AsyncValidatorFn starts an asynchronous check. It is called on the tree's
// goroutine when a validation pass begins, so it may read c freely, and
// returns the task that completes the check. A nil task counts as valid.
type AsyncValidatorFn func(c Control) AsyncTask

// AsyncValue adapts a check that only needs the control's value. The value is
// deep-copied when the pass starts so the task never shares maps or slices
// with the tree.
func AsyncValue(check func(ctx context.Context, value any) (ValidationErrors, error)) AsyncValidatorFn {
	return func(c Control) AsyncTask {
		value := copyValue(c.Value())
		return func(ctx context.Context) (ValidationErrors, error) {
			return check(ctx, value)
		}
	}
}

// Compose merges several validators into one. Every validator runs; later
// error codes overwrite earlier ones. Compose returns nil when given no
// non-nil validators.
func Compose(fns ...ValidatorFn) ValidatorFn {
	fns = compactValidators(fns)
	if len(fns) == 0 {
		return nil
	}
	return func(c Control) ValidationErrors {
		return runValidators(fns, c)
	}
}

// ComposeAsync merges several async validators into one whose task waits
// for all of them.
func ComposeAsync(fns ...AsyncValidatorFn) AsyncValidatorFn {
	fns = compactAsyncValidators(fns)
	if len(fns) == 0 {
		return nil
	}
	return func(c Control) AsyncTask {
		tasks := startAsyncValidators(fns, c)
		return func(ctx context.Context) (ValidationErrors, error) {
			return runTasks(ctx, tasks)
		}
	}
}

func mergeErrors(sets ...ValidationErrors) ValidationErrors {
	var merged ValidationErrors
	for _, set := range sets {
		if set == nil {
			continue
		}
		for code, detail := range set {
			if merged == nil {
				merged = make(ValidationErrors, len(set))
			}
			merged[code] = detail
		}
	}
	return merged
}

func runValidators(fns []ValidatorFn, c Control) ValidationErrors {
	if len(fns) == 0 {
		return nil
	}
	results := make([]ValidationErrors, 0, len(fns))
	for _, fn := range fns {
		results = append(results, fn(c))
	}
	return mergeErrors(results...)
}

func startAsyncValidators(fns []AsyncValidatorFn, c Control) []AsyncTask {
	tasks := make([]AsyncTask, 0, len(fns))
	for _, fn := range fns {
		tasks = append(tasks, fn(c))
	}
	return tasks
}

// runTasks runs every task concurrently and waits for all of them. Results
// merge in task order. Failures, including panics, are combined into the
// returned error.
func runTasks(ctx context.Context, tasks []AsyncTask) (ValidationErrors, error) {
	results := make([]ValidationErrors, len(tasks))
	var (
		mu     sync.Mutex
		faults *multierror.Error
		g      errgroup.Group
	)
	fail := func(err error) {
		mu.Lock()
		faults = multierror.Append(faults, err)
		mu.Unlock()
	}
	for i, task := range tasks {
		if task == nil {
			continue
		}
		g.Go(func() error {
			defer formerrors.RecoverWithCallback("form.asyncTask", func(r any) {
				fail(fmt.Errorf("async validator %d panicked: %v", i, r))
			})
			errs, err := task(ctx)
			if err != nil {
				fail(fmt.Errorf("async validator %d: %w", i, err))
				return nil
			}
			results[i] = errs
			return nil
		})
	}
	_ = g.Wait()
	return mergeErrors(results...), faults.ErrorOrNil()
}

func compactValidators(fns []ValidatorFn) []ValidatorFn {
	out := make([]ValidatorFn, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

func compactAsyncValidators(fns []AsyncValidatorFn) []AsyncValidatorFn {
	out := make([]AsyncValidatorFn, 0, len(fns))
	for _, fn := range fns {
		if fn != nil {
			out = append(out, fn)
		}
	}
	return out
}

// copyValue deep-copies maps and slices. Other kinds are returned as-is:
// copystructure drops unexported struct fields.
func copyValue(v any) any {
	if v == nil {
		return nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Slice:
		if dup, err := copystructure.Copy(v); err == nil {
			return dup
		}
	}
	return v
}
