package form_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-drift/forms/pkg/dispatch"
	formerrors "github.com/go-drift/forms/pkg/errors"
	"github.com/go-drift/forms/pkg/form"
)

func entries(kv ...any) []form.Entry {
	out := make([]form.Entry, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, form.Entry{Name: kv[i].(string), Control: kv[i+1].(form.Control)})
	}
	return out
}

func settle(t *testing.T, q *dispatch.Queue, c form.Control) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, form.WaitSettled(ctx, q, c))
}

// runNext delivers exactly one async completion.
func runNext(t *testing.T, q *dispatch.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.RunNext(ctx))
}

func errorsWith(code string, detail any) form.ValidationErrors {
	return form.ValidationErrors{code: detail}
}

func requiredString(c form.Control) form.ValidationErrors {
	if s, _ := c.Value().(string); s == "" {
		return errorsWith("required", true)
	}
	return nil
}

// captureReports swaps the global error handler for the duration of a test.
type captureReports struct {
	mu     sync.Mutex
	errors []*formerrors.FormError
	panics []*formerrors.PanicError
}

func (c *captureReports) HandleError(err *formerrors.FormError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

func (c *captureReports) HandlePanic(err *formerrors.PanicError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics = append(c.panics, err)
}

func (c *captureReports) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors), len(c.panics)
}

func (c *captureReports) lastError() *formerrors.FormError {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errors) == 0 {
		return nil
	}
	return c.errors[len(c.errors)-1]
}

func installReports(t *testing.T) *captureReports {
	t.Helper()
	c := &captureReports{}
	formerrors.SetHandler(c)
	t.Cleanup(func() { formerrors.SetHandler(nil) })
	return c
}
