package form

import (
	"slices"
)

// List is a composite control with an ordered, resizable set of children.
//
// Its value is a []any of the enabled children's values in index order.
// Disabled children are skipped, so an index into Value can differ from the
// index of the same child in Controls.
type List struct {
	base

	controls []Control
}

// NewList creates a list. Nil children are skipped.
func NewList(children []Control, opts ...Option) *List {
	l := &List{controls: make([]Control, 0, len(children))}
	l.setup(l, opts)
	for _, c := range children {
		if c != nil {
			l.adopt(c)
			l.controls = append(l.controls, c)
			settleAttached(c)
		}
	}
	l.updateValueAndValidity(updateConfig{onlySelf: true, silent: true})
	return l
}

func (l *List) adopt(c Control) {
	c.node().setParent(weakRef(l))
}

// normalize maps a negative index to one counted from the end.
func (l *List) normalize(i int) int {
	if i < 0 {
		i += len(l.controls)
	}
	return i
}

// At returns the child at i, counting from the end when i is negative, or
// nil when out of range.
func (l *List) At(i int) Control {
	i = l.normalize(i)
	if i < 0 || i >= len(l.controls) {
		return nil
	}
	return l.controls[i]
}

// Push appends c.
func (l *List) Push(c Control, opts ...UpdateOption) {
	if c == nil {
		return
	}
	l.adopt(c)
	l.controls = append(l.controls, c)
	settleAttached(c)
	l.updateValueAndValidity(resolveUpdate(opts))
}

// Insert places c at index i. Negative indices count from the end and
// out-of-range indices are clamped.
func (l *List) Insert(i int, c Control, opts ...UpdateOption) {
	if c == nil {
		return
	}
	i = min(max(l.normalize(i), 0), len(l.controls))
	l.adopt(c)
	l.controls = slices.Insert(l.controls, i, c)
	settleAttached(c)
	l.updateValueAndValidity(resolveUpdate(opts))
}

// RemoveAt detaches the child at i. Out-of-range indices change nothing.
func (l *List) RemoveAt(i int, opts ...UpdateOption) {
	i = l.normalize(i)
	if i < 0 || i >= len(l.controls) {
		return
	}
	l.controls[i].node().setParent(nil)
	l.controls = slices.Delete(l.controls, i, i+1)
	l.updateValueAndValidity(resolveUpdate(opts))
}

// SetControl replaces the child at i. Out-of-range indices change nothing.
func (l *List) SetControl(i int, c Control, opts ...UpdateOption) {
	i = l.normalize(i)
	if c == nil || i < 0 || i >= len(l.controls) {
		return
	}
	if old := l.controls[i]; old != c {
		old.node().setParent(nil)
		l.adopt(c)
		l.controls[i] = c
		settleAttached(c)
	}
	l.updateValueAndValidity(resolveUpdate(opts))
}

// Move relocates the child at from so it ends up at index to.
func (l *List) Move(from, to int, opts ...UpdateOption) {
	from, to = l.normalize(from), l.normalize(to)
	n := len(l.controls)
	if from < 0 || from >= n || to < 0 || to >= n {
		return
	}
	if from != to {
		c := l.controls[from]
		l.controls = slices.Delete(l.controls, from, from+1)
		l.controls = slices.Insert(l.controls, to, c)
	}
	l.updateValueAndValidity(resolveUpdate(opts))
}

// Clear removes every child.
func (l *List) Clear(opts ...UpdateOption) {
	if len(l.controls) == 0 {
		return
	}
	for _, c := range l.controls {
		c.node().setParent(nil)
	}
	l.controls = l.controls[:0:0]
	l.updateValueAndValidity(resolveUpdate(opts))
}

func (l *List) Len() int { return len(l.controls) }

// Controls returns the children in index order.
func (l *List) Controls() []Control { return slices.Clone(l.controls) }

func (l *List) Value() any {
	out := make([]any, 0, len(l.controls))
	for _, c := range l.controls {
		if c.Enabled() {
			out = append(out, c.Value())
		}
	}
	return out
}

func (l *List) RawValue() any {
	out := make([]any, 0, len(l.controls))
	for _, c := range l.controls {
		out = append(out, c.RawValue())
	}
	return out
}

func (l *List) children() []Control { return l.controls }

func (l *List) syncPending(u updateConfig) bool { return l.syncChildren(u) }

// checkSet requires a slice long enough to cover every enabled child and no
// longer than the list.
func (l *List) checkSet(v any, path string) error {
	s, ok := v.([]any)
	if !ok {
		return shapeErrorf(path, "expected []any, got %T", v)
	}
	if len(s) > len(l.controls) {
		return shapeErrorf(joinPath(path, len(l.controls)), "no control at index %d", len(l.controls))
	}
	for i, c := range l.controls {
		if i >= len(s) {
			if c.Enabled() {
				return shapeErrorf(joinPath(path, i), "missing value for enabled control at index %d", i)
			}
			continue
		}
		if err := c.checkSet(s[i], joinPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) applySet(v any, u updateConfig) {
	for i, val := range v.([]any) {
		l.controls[i].applySet(val, u.self())
	}
	l.updateValueAndValidity(u)
}

// indexed turns the []any or map[int]any accepted by patch and reset into
// an index lookup.
func indexed(v any, path string) (map[int]any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case map[int]any:
		return t, nil
	case []any:
		m := make(map[int]any, len(t))
		for i, val := range t {
			m[i] = val
		}
		return m, nil
	}
	return nil, shapeErrorf(path, "expected []any or map[int]any, got %T", v)
}

func (l *List) checkPatch(v any, path string) error {
	m, err := indexed(v, path)
	if err != nil {
		return err
	}
	for i, c := range l.controls {
		if val, ok := m[i]; ok {
			if err := c.checkPatch(val, joinPath(path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *List) applyPatch(v any, u updateConfig) {
	if v == nil {
		return
	}
	m, _ := indexed(v, "")
	for i, c := range l.controls {
		if val, ok := m[i]; ok {
			c.applyPatch(val, u.self())
		}
	}
	l.updateValueAndValidity(u)
}

func (l *List) checkReset(v any, path string) error {
	m, err := indexed(v, path)
	if err != nil {
		return err
	}
	for i, c := range l.controls {
		if err := c.checkReset(m[i], joinPath(path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) applyReset(v any, u updateConfig) {
	m, _ := indexed(v, "")
	for i, c := range l.controls {
		c.applyReset(m[i], u.self())
	}
	l.updatePristine(u)
	l.updateTouched(u)
	l.updateValueAndValidity(u)
}
