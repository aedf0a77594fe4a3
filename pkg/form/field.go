package form

import (
	"math"
	"reflect"
)

// State is the {value, disabled} form of a field's initial value. Field
// Reset also accepts it.
type State[T any] struct {
	Value    T
	Disabled bool
}

// Field is a leaf control holding a single value of type T.
type Field[T any] struct {
	base

	value        T
	defaultValue T

	// Input held back by UpdateOnBlur or UpdateOnSubmit.
	pendingValue   T
	pendingChange  bool
	pendingDirty   bool
	pendingTouched bool
}

// NewField creates a field with initial value v. The value is also kept,
// deep-copied, as the default Reset restores.
func NewField[T any](v T, opts ...Option) *Field[T] {
	f := &Field[T]{value: v, defaultValue: copyTyped(v)}
	f.setup(f, opts)
	f.updateValueAndValidity(updateConfig{onlySelf: true, silent: true})
	return f
}

// NewFieldFromState creates a field from a State.
func NewFieldFromState[T any](s State[T], opts ...Option) *Field[T] {
	if s.Disabled {
		opts = append(opts, WithDisabled())
	}
	return NewField(s.Value, opts...)
}

func (f *Field[T]) Value() any    { return f.value }
func (f *Field[T]) RawValue() any { return f.value }

// Typed returns the value as T.
func (f *Field[T]) Typed() T { return f.value }

// Default returns the value Reset(nil) restores.
func (f *Field[T]) Default() T { return copyTyped(f.defaultValue) }

// Set is SetValue for a value already of type T.
func (f *Field[T]) Set(v T, opts ...UpdateOption) {
	f.setValue(v, resolveUpdate(opts))
}

func (f *Field[T]) setValue(v T, u updateConfig) {
	f.value = v
	f.pendingChange = false
	f.updateValueAndValidity(u)
}

// Input records a value typed into the bound view. It is applied at once
// and marks the field dirty under UpdateOnChange; otherwise it is held until
// Blur or SyncPending.
func (f *Field[T]) Input(v T) {
	f.pendingValue = v
	f.pendingChange = true
	f.pendingDirty = true
	if f.UpdateOn() == UpdateOnChange {
		f.commitPending(updateConfig{})
	}
}

// Blur records that the bound view lost focus. The field is marked touched,
// and under UpdateOnBlur held input is applied. Under UpdateOnSubmit both
// wait for SyncPending.
func (f *Field[T]) Blur() {
	f.pendingTouched = true
	switch f.UpdateOn() {
	case UpdateOnSubmit:
		return
	case UpdateOnBlur:
		if f.pendingChange {
			f.commitPending(updateConfig{})
		}
	}
	f.pendingTouched = false
	f.markAsTouched(updateConfig{})
}

func (f *Field[T]) commitPending(u updateConfig) {
	if f.pendingDirty {
		f.pendingDirty = false
		f.markAsDirty(updateConfig{silent: u.silent})
	}
	f.setValue(f.pendingValue, u)
}

func (f *Field[T]) syncPending(u updateConfig) bool {
	if f.UpdateOn() != UpdateOnSubmit {
		return false
	}
	if f.pendingDirty {
		f.pendingDirty = false
		f.markAsDirty(updateConfig{silent: u.silent})
	}
	if f.pendingTouched {
		f.pendingTouched = false
		f.markAsTouched(updateConfig{silent: u.silent})
	}
	if !f.pendingChange {
		return false
	}
	f.setValue(f.pendingValue, u.self())
	return true
}

func (f *Field[T]) children() []Control { return nil }

func (f *Field[T]) checkSet(v any, path string) error {
	_, err := f.coerce(v, path)
	return err
}

func (f *Field[T]) applySet(v any, u updateConfig) {
	t, _ := f.coerce(v, "")
	f.setValue(t, u)
}

func (f *Field[T]) checkPatch(v any, path string) error { return f.checkSet(v, path) }

func (f *Field[T]) applyPatch(v any, u updateConfig) { f.applySet(v, u) }

func (f *Field[T]) checkReset(v any, path string) error {
	if _, ok := v.(State[T]); ok || v == nil {
		return nil
	}
	return f.checkSet(v, path)
}

func (f *Field[T]) applyReset(v any, u updateConfig) {
	next := f.Default()
	switch s := v.(type) {
	case nil:
	case State[T]:
		next = s.Value
		f.disabled = s.Disabled
	default:
		next, _ = f.coerce(v, "")
	}
	f.pendingChange = false
	f.pendingDirty = false
	f.pendingTouched = false
	f.markAsPristine(u)
	f.markAsUntouched(u)
	f.setValue(next, u)
}

// coerce converts v to T. nil yields the zero value and numbers convert
// between numeric kinds; anything else must be assignable to T.
func (f *Field[T]) coerce(v any, path string) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(want) {
		return rv.Convert(want).Interface().(T), nil
	}
	if isNumber(rv.Kind()) && isNumber(want.Kind()) {
		out, ok := convertNumber(rv, want)
		if !ok {
			return zero, shapeErrorf(path, "%v (%T) does not fit in %v", v, v, want)
		}
		return out.Interface().(T), nil
	}
	return zero, shapeErrorf(path, "cannot use %T as %v", v, want)
}

// Bounds of the int64 and uint64 ranges as float64. Both are exact powers of
// two, so comparisons against them are exact.
const (
	minInt64Float  = -(1 << 63)
	maxInt64Float  = 1 << 63
	maxUint64Float = 1 << 64
)

// convertNumber converts rv to the numeric type want, failing when the value
// would be truncated, wrapped or rounded to a different integer.
func convertNumber(rv reflect.Value, want reflect.Type) (reflect.Value, bool) {
	out := reflect.New(want).Elem()
	switch {
	case rv.CanInt():
		return out, setFromInt(out, rv.Int())
	case rv.CanUint():
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return out, setFromInt(out, int64(u))
		}
		switch {
		case out.CanUint():
			if out.OverflowUint(u) {
				return out, false
			}
			out.SetUint(u)
			return out, true
		case out.CanFloat():
			out.SetFloat(float64(u))
			g := out.Float()
			return out, g < maxUint64Float && uint64(g) == u
		}
		return out, false
	}
	return out, setFromFloat(out, rv.Float())
}

func setFromInt(out reflect.Value, i int64) bool {
	switch {
	case out.CanInt():
		if out.OverflowInt(i) {
			return false
		}
		out.SetInt(i)
	case out.CanUint():
		if i < 0 || out.OverflowUint(uint64(i)) {
			return false
		}
		out.SetUint(uint64(i))
	default:
		out.SetFloat(float64(i))
		g := out.Float()
		return g >= minInt64Float && g < maxInt64Float && int64(g) == i
	}
	return true
}

func setFromFloat(out reflect.Value, f float64) bool {
	if out.CanFloat() {
		if out.OverflowFloat(f) {
			return false
		}
		out.SetFloat(f)
		return true
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return false
	}
	if out.CanInt() {
		if f < minInt64Float || f >= maxInt64Float || out.OverflowInt(int64(f)) {
			return false
		}
		out.SetInt(int64(f))
		return true
	}
	if f < 0 || f >= maxUint64Float || out.OverflowUint(uint64(f)) {
		return false
	}
	out.SetUint(uint64(f))
	return true
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func copyTyped[T any](v T) T {
	if dup, ok := copyValue(v).(T); ok {
		return dup
	}
	return v
}
