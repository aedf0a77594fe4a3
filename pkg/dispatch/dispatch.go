// Package dispatch hands callbacks produced on worker goroutines back to the
// goroutine that owns a form tree.
//
// Form trees are not safe for concurrent use. Asynchronous validators run
// their work on separate goroutines and deliver the result through a
// [Dispatcher], which is expected to run the callback on the tree's
// goroutine. Hosts with an event loop register their own scheduling
// function; everything else can use a [Queue] and drain it.
package dispatch

import "sync"

// Dispatcher schedules callbacks on the goroutine that owns a form tree.
type Dispatcher interface {
	Dispatch(callback func())
}

// Func adapts a plain scheduling function to a Dispatcher.
type Func func(callback func())

// Dispatch calls f(callback).
func (f Func) Dispatch(callback func()) {
	f(callback)
}

// Immediate runs callbacks on the calling goroutine. It is only safe when
// nothing else touches the tree while async work is in flight.
var Immediate Dispatcher = Func(func(callback func()) { callback() })

var (
	defaultMu sync.RWMutex
	defaultD  Dispatcher
)

// Register sets the dispatcher used by controls that were not given one.
// Pass nil to fall back to Immediate.
func Register(d Dispatcher) {
	defaultMu.Lock()
	defaultD = d
	defaultMu.Unlock()
}

// Default returns the registered dispatcher, or Immediate when none is registered.
func Default() Dispatcher {
	defaultMu.RLock()
	d := defaultD
	defaultMu.RUnlock()
	if d == nil {
		return Immediate
	}
	return d
}

// Dispatch schedules a callback on the default dispatcher.
// Returns false if the callback is nil.
func Dispatch(callback func()) bool {
	if callback == nil {
		return false
	}
	Default().Dispatch(callback)
	return true
}
