package form

import (
	"fmt"

	formerrors "github.com/go-drift/forms/pkg/errors"
)

func (b *base) UpdateValueAndValidity(opts ...UpdateOption) {
	b.updateValueAndValidity(resolveUpdate(opts))
}

// updateValueAndValidity runs one pass on b and, unless u.onlySelf, on every
// ancestor. Any async work started by an earlier pass is superseded.
func (b *base) updateValueAndValidity(u updateConfig) {
	b.generation.Add(1)
	b.asyncRunning = false

	if b.Disabled() {
		b.errors = nil
		b.status = StatusValid
	} else {
		b.errors = runValidators(b.validators, b.self)
		b.status = b.calculateStatus()
		if (b.status == StatusValid || b.status == StatusPending) && len(b.asyncValidators) > 0 {
			b.startAsync(u)
		}
	}

	if !u.silent {
		b.emit(ValueChangeEvent{Control: b.self, Value: b.self.Value()})
		b.emit(StatusChangeEvent{Control: b.self, Status: b.Status()})
	}
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().updateValueAndValidity(u)
		}
	}
}

func (b *base) calculateStatus() Status {
	switch {
	case b.errors != nil:
		return StatusInvalid
	case b.asyncRunning || b.anyEnabledChild(Control.Pending):
		return StatusPending
	case b.anyEnabledChild(Control.Invalid):
		return StatusInvalid
	default:
		return StatusValid
	}
}

// startAsync marks b pending and runs the async validators of the current
// generation. The result comes back through the resolved dispatcher.
func (b *base) startAsync(u updateConfig) {
	b.status = StatusPending
	b.asyncRunning = true
	gen := b.generation.Load()

	tasks := startAsyncValidators(b.asyncValidators, b.self)
	d, bound := b.resolveDispatcher()
	b.asyncBound = bound
	ctx := b.resolveContext()
	silent := u.silent
	l := b.log()
	path := pathOf(b.self)

	if l.IsTrace() {
		l.Trace("async validation started", "path", path, "generation", gen, "validators", len(tasks))
	}

	go func() {
		errs, err := runTasks(ctx, tasks)
		// A dispatcher that panics leaves the pass pending until the next one.
		defer func() {
			if r := recover(); r != nil {
				formerrors.Report(&formerrors.FormError{
					Op:         "form.dispatch",
					Kind:       formerrors.KindDispatch,
					Path:       path,
					Err:        fmt.Errorf("dispatcher panicked: %v", r),
					StackTrace: formerrors.CaptureStack(),
				})
			}
		}()
		d.Dispatch(func() {
			// Only the generation is read here: a superseded pass may be
			// delivered by the default dispatcher on this goroutine.
			if cur := b.generation.Load(); cur != gen {
				if l.IsTrace() {
					l.Trace("discarding stale async result", "path", path, "generation", gen, "current", cur)
				}
				return
			}
			b.finishAsync(gen, errs, err, silent)
		})
	}()
}

// settleAttached brings c in line with its new parent. Under a disabled
// ancestor c drops its errors and any async work, like Disable would.
// Otherwise the passes in flight that fell back to the default dispatcher
// restart, so their results arrive through the dispatcher c now inherits.
func settleAttached(c Control) {
	if c.Disabled() {
		c.node().quiesce(updateConfig{silent: true})
		return
	}
	rebindAsync(c)
}

func rebindAsync(c Control) {
	n := c.node()
	for _, child := range n.self.children() {
		rebindAsync(child)
	}
	if !n.asyncRunning || n.asyncBound {
		return
	}
	if _, bound := n.resolveDispatcher(); bound {
		n.updateValueAndValidity(updateConfig{onlySelf: true, silent: true})
	}
}

func (b *base) finishAsync(gen uint64, errs ValidationErrors, err error, silent bool) {
	b.asyncRunning = false

	if err != nil {
		formerrors.Report(&formerrors.FormError{
			Op:   "form.asyncValidate",
			Kind: formerrors.KindAsyncValidator,
			Path: pathOf(b.self),
			Err:  err,
		})
		errs = mergeErrors(errs, ValidationErrors{AsyncFailedKey: err.Error()})
	}

	if l := b.log(); l.IsTrace() {
		l.Trace("async validation finished", "path", pathOf(b.self), "generation", gen, "errors", len(errs))
	}
	b.setErrors(errs, updateConfig{silent: silent})
}

func (b *base) SetErrors(errs ValidationErrors, opts ...UpdateOption) {
	b.setErrors(errs, resolveUpdate(opts))
}

func (b *base) setErrors(errs ValidationErrors, u updateConfig) {
	if len(errs) == 0 {
		errs = nil
	}
	b.errors = errs
	b.updateControlsErrors(u)
}

// updateControlsErrors recalculates the status of b and its ancestors
// without rerunning validators.
func (b *base) updateControlsErrors(u updateConfig) {
	b.status = b.calculateStatus()
	if !u.silent {
		b.emit(StatusChangeEvent{Control: b.self, Status: b.Status()})
	}
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().updateControlsErrors(u)
		}
	}
}

// revalidateSubtree runs a pass on every descendant, children first, then
// on b itself. It never propagates upward.
func (b *base) revalidateSubtree(u updateConfig) {
	for _, c := range b.self.children() {
		c.node().revalidateSubtree(u)
	}
	b.updateValueAndValidity(u.self())
}

// updateAncestors brings the parent chain up to date after b changed shape.
func (b *base) updateAncestors(u updateConfig) {
	if u.onlySelf {
		return
	}
	p := b.Parent()
	if p == nil {
		return
	}
	pb := p.node()
	pb.updateValueAndValidity(u)
	pb.updatePristine(u)
	pb.updateTouched(u)
}

func (b *base) SyncPending(opts ...UpdateOption) {
	u := resolveUpdate(opts)
	if !b.self.syncPending(u) || u.onlySelf {
		return
	}
	if p := b.Parent(); p != nil {
		p.node().updateValueAndValidity(u)
	}
}

// syncChildren is the composite half of syncPending.
func (b *base) syncChildren(u updateConfig) bool {
	updated := false
	for _, c := range b.self.children() {
		if c.syncPending(u) {
			updated = true
		}
	}
	if updated {
		b.updateValueAndValidity(u.self())
	}
	return updated
}

// Path returns the dotted path of c from its root, such as "address.lines.0".
// The root's path is empty.
func Path(c Control) string {
	if c == nil {
		return ""
	}
	return pathOf(c)
}

func pathOf(c Control) string {
	var segs []string
	for cur := c; cur != nil; {
		p := cur.Parent()
		if p == nil {
			break
		}
		segs = append(segs, childKey(p, cur))
		cur = p
	}
	path := ""
	for i := len(segs) - 1; i >= 0; i-- {
		path = joinPath(path, segs[i])
	}
	return path
}

func childKey(parent, child Control) string {
	switch p := parent.(type) {
	case *Group:
		for _, name := range p.names {
			if p.controls[name] == child {
				return name
			}
		}
	case *List:
		for i, c := range p.controls {
			if c == child {
				return fmt.Sprint(i)
			}
		}
	}
	return "?"
}
