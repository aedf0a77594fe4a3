package form

import (
	"context"
	"sync/atomic"
	"weak"

	"github.com/hashicorp/go-hclog"

	"github.com/go-drift/forms/pkg/dispatch"
)

// Control is a node of a form tree: a [Field], a [Group] or a [List].
//
// Controls are not safe for concurrent use. All calls must come from the
// goroutine that owns the tree; asynchronous validation results are handed
// back through a [dispatch.Dispatcher].
type Control interface {
	// Value returns the current value. Composites compute it on every call
	// from their enabled children.
	Value() any
	// RawValue is like Value but includes disabled children.
	RawValue() any

	Status() Status
	Valid() bool
	Invalid() bool
	Pending() bool
	Disabled() bool
	Enabled() bool

	// Errors returns the control's own errors, nil when there are none.
	Errors() ValidationErrors
	// SetErrors replaces the control's errors by hand and recalculates the
	// status of the control and its ancestors.
	SetErrors(errs ValidationErrors, opts ...UpdateOption)
	// GetError returns the detail for code on the control at path, or nil.
	GetError(code string, path ...any) any
	// HasError reports whether the control at path has an error with code.
	HasError(code string, path ...any) bool

	Pristine() bool
	Dirty() bool
	Touched() bool
	Untouched() bool
	UpdateOn() UpdateOn

	// Parent returns the owning composite, or nil for a root.
	Parent() Control
	// Root returns the top of the tree.
	Root() Control
	// Get finds a descendant. Path elements are names, indices, or dotted
	// strings such as "address.lines.0". It returns nil when nothing matches.
	Get(path ...any) Control

	// SetValue replaces the whole value. See the concrete types for the
	// shape each accepts. A mismatch returns an error matching
	// ErrShapeMismatch and changes nothing.
	SetValue(v any, opts ...UpdateOption) error
	// PatchValue applies the parts of v that match existing children and
	// ignores the rest.
	PatchValue(v any, opts ...UpdateOption) error
	// Reset restores v, or each field's default when v is nil, and marks the
	// subtree pristine and untouched.
	Reset(v any, opts ...UpdateOption) error

	Disable(opts ...UpdateOption)
	Enable(opts ...UpdateOption)

	MarkAsTouched(opts ...UpdateOption)
	MarkAllAsTouched(opts ...UpdateOption)
	MarkAsUntouched(opts ...UpdateOption)
	MarkAsDirty(opts ...UpdateOption)
	MarkAsPristine(opts ...UpdateOption)
	MarkAsPending(opts ...UpdateOption)

	SetValidators(fns ...ValidatorFn)
	AddValidators(fns ...ValidatorFn)
	ClearValidators()
	SetAsyncValidators(fns ...AsyncValidatorFn)
	AddAsyncValidators(fns ...AsyncValidatorFn)
	ClearAsyncValidators()

	// UpdateValueAndValidity recomputes the value, reruns validators and
	// propagates to the ancestors unless OnlySelf is given.
	UpdateValueAndValidity(opts ...UpdateOption)
	// SyncPending commits input held back by UpdateOnSubmit in the subtree.
	SyncPending(opts ...UpdateOption)

	// Listen subscribes to every event the control emits.
	Listen(fn func(Event)) (unsubscribe func())
	// OnValueChange subscribes to value changes.
	OnValueChange(fn func(any)) (unsubscribe func())
	// OnStatusChange subscribes to status changes.
	OnStatusChange(fn func(Status)) (unsubscribe func())

	node() *base
	children() []Control
	checkSet(v any, path string) error
	applySet(v any, u updateConfig)
	checkPatch(v any, path string) error
	applyPatch(v any, u updateConfig)
	checkReset(v any, path string) error
	applyReset(v any, u updateConfig)
	syncPending(u updateConfig) bool
}

var nullLogger = hclog.NewNullLogger()

// base implements the part of the Control contract shared by every kind.
type base struct {
	self   Control
	parent func() Control

	status          Status
	errors          ValidationErrors
	disabled        bool
	dirty           bool
	touched         bool
	updateOn        UpdateOn
	validators      []ValidatorFn
	asyncValidators []AsyncValidatorFn

	// generation identifies the latest pass; async results from older
	// passes are dropped. Stale deliveries may arrive off the tree
	// goroutine, so it is read atomically.
	generation   atomic.Uint64
	asyncRunning bool
	// asyncBound records whether the running pass found a dispatcher on the
	// control or an ancestor rather than falling back to dispatch.Default.
	asyncBound bool

	dispatcher dispatch.Dispatcher
	ctx        context.Context
	logger     hclog.Logger
	listeners  listenerSet
}

func (b *base) setup(self Control, opts []Option) {
	cfg := resolveOptions(opts)
	b.self = self
	b.validators = cfg.validators
	b.asyncValidators = cfg.asyncValidators
	b.updateOn = cfg.updateOn
	b.dispatcher = cfg.dispatcher
	b.ctx = cfg.ctx
	b.logger = cfg.logger
	b.disabled = cfg.disabled
}

func (b *base) node() *base { return b }

// weakRef returns a parent accessor that does not keep p alive.
func weakRef[T any, P interface {
	*T
	Control
}](p P) func() Control {
	w := weak.Make((*T)(p))
	return func() Control {
		if v := w.Value(); v != nil {
			return P(v)
		}
		return nil
	}
}

func (b *base) setParent(parent func() Control) { b.parent = parent }

func (b *base) Parent() Control {
	if b.parent == nil {
		return nil
	}
	return b.parent()
}

func (b *base) Root() Control {
	var root Control = b.self
	for p := root.Parent(); p != nil; p = p.Parent() {
		root = p
	}
	return root
}

func (b *base) Status() Status {
	if b.Disabled() {
		return StatusDisabled
	}
	return b.status
}

func (b *base) Valid() bool   { return b.Status() == StatusValid }
func (b *base) Invalid() bool { return b.Status() == StatusInvalid }
func (b *base) Pending() bool { return b.Status() == StatusPending }
func (b *base) Enabled() bool { return !b.Disabled() }

// Disabled reports whether the control was disabled, sits under a disabled
// ancestor, or is a composite whose children are all disabled.
func (b *base) Disabled() bool {
	if b.selfDisabled() {
		return true
	}
	for p := b.Parent(); p != nil; p = p.Parent() {
		if p.node().disabled {
			return true
		}
	}
	return false
}

// selfDisabled ignores ancestors.
func (b *base) selfDisabled() bool {
	if b.disabled {
		return true
	}
	kids := b.self.children()
	if len(kids) == 0 {
		return false
	}
	for _, c := range kids {
		if !c.node().selfDisabled() {
			return false
		}
	}
	return true
}

func (b *base) Errors() ValidationErrors { return b.errors }

func (b *base) GetError(code string, path ...any) any {
	errs := b.errorsAt(path)
	if errs == nil {
		return nil
	}
	return errs[code]
}

func (b *base) HasError(code string, path ...any) bool {
	errs := b.errorsAt(path)
	if errs == nil {
		return false
	}
	_, ok := errs[code]
	return ok
}

func (b *base) errorsAt(path []any) ValidationErrors {
	target := b.self
	if len(path) > 0 {
		target = b.Get(path...)
	}
	if target == nil {
		return nil
	}
	return target.Errors()
}

func (b *base) Pristine() bool  { return !b.dirty }
func (b *base) Dirty() bool     { return b.dirty }
func (b *base) Touched() bool   { return b.touched }
func (b *base) Untouched() bool { return !b.touched }

func (b *base) UpdateOn() UpdateOn {
	if b.updateOn != UpdateOnDefault {
		return b.updateOn
	}
	if p := b.Parent(); p != nil {
		return p.UpdateOn()
	}
	return UpdateOnChange
}

func (b *base) Get(path ...any) Control {
	segs, ok := splitPath(path)
	if !ok || len(segs) == 0 {
		return nil
	}
	cur := b.self
	for _, seg := range segs {
		cur = childAt(cur, seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func (b *base) SetValue(v any, opts ...UpdateOption) error {
	if err := b.self.checkSet(v, ""); err != nil {
		return err
	}
	b.self.applySet(v, resolveUpdate(opts))
	return nil
}

func (b *base) PatchValue(v any, opts ...UpdateOption) error {
	if err := b.self.checkPatch(v, ""); err != nil {
		return err
	}
	b.self.applyPatch(v, resolveUpdate(opts))
	return nil
}

func (b *base) Reset(v any, opts ...UpdateOption) error {
	if err := b.self.checkReset(v, ""); err != nil {
		return err
	}
	u := resolveUpdate(opts)
	b.self.applyReset(v, u)
	if !u.silent {
		b.emit(ResetEvent{Control: b.self})
	}
	return nil
}

func (b *base) SetValidators(fns ...ValidatorFn) {
	b.validators = compactValidators(fns)
}

func (b *base) AddValidators(fns ...ValidatorFn) {
	b.validators = append(b.validators, compactValidators(fns)...)
}

func (b *base) ClearValidators() { b.validators = nil }

func (b *base) SetAsyncValidators(fns ...AsyncValidatorFn) {
	b.asyncValidators = compactAsyncValidators(fns)
}

func (b *base) AddAsyncValidators(fns ...AsyncValidatorFn) {
	b.asyncValidators = append(b.asyncValidators, compactAsyncValidators(fns)...)
}

func (b *base) ClearAsyncValidators() { b.asyncValidators = nil }

func (b *base) Listen(fn func(Event)) func() {
	return b.listeners.add(fn)
}

func (b *base) OnValueChange(fn func(any)) func() {
	if fn == nil {
		return func() {}
	}
	return b.listeners.add(func(e Event) {
		if vc, ok := e.(ValueChangeEvent); ok {
			fn(vc.Value)
		}
	})
}

func (b *base) OnStatusChange(fn func(Status)) func() {
	if fn == nil {
		return func() {}
	}
	return b.listeners.add(func(e Event) {
		if sc, ok := e.(StatusChangeEvent); ok {
			fn(sc.Status)
		}
	})
}

func (b *base) emit(e Event) { b.listeners.emit(e) }

// anyEnabledChild reports whether pred holds for an enabled child.
func (b *base) anyEnabledChild(pred func(Control) bool) bool {
	for _, c := range b.self.children() {
		if !c.Disabled() && pred(c) {
			return true
		}
	}
	return false
}

// resolveDispatcher returns the dispatcher of b or its nearest ancestor that
// has one, reporting false when it falls back to dispatch.Default.
func (b *base) resolveDispatcher() (dispatch.Dispatcher, bool) {
	for n := b; n != nil; n = parentNode(n) {
		if n.dispatcher != nil {
			return n.dispatcher, true
		}
	}
	return dispatch.Default(), false
}

func (b *base) resolveContext() context.Context {
	for n := b; n != nil; n = parentNode(n) {
		if n.ctx != nil {
			return n.ctx
		}
	}
	return context.Background()
}

func (b *base) log() hclog.Logger {
	for n := b; n != nil; n = parentNode(n) {
		if n.logger != nil {
			return n.logger
		}
	}
	return nullLogger
}

func parentNode(b *base) *base {
	if p := b.Parent(); p != nil {
		return p.node()
	}
	return nil
}
