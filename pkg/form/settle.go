package form

import (
	"context"

	"github.com/go-drift/forms/pkg/dispatch"
)

// WaitSettled drains q on the calling goroutine until c is no longer
// pending. It returns ctx.Err() if the context ends first; a control whose
// async work never completes stays pending.
func WaitSettled(ctx context.Context, q *dispatch.Queue, c Control) error {
	for c.Pending() {
		if err := q.RunNext(ctx); err != nil {
			return err
		}
	}
	q.RunPending()
	return nil
}
