package form

import (
	"slices"
	"sort"
)

// Entry is a named child of a Group.
type Entry struct {
	Name    string
	Control Control
}

// Group is a composite control with named children kept in declared order.
//
// Its value is a map[string]any holding only the enabled children. The
// declared names are therefore a superset of the keys in Value; RawValue
// holds every child.
type Group struct {
	base

	names    []string
	controls map[string]Control
}

// NewGroup creates a group from entries in order. Entries with a nil control
// are skipped, and the first entry wins when a name repeats.
func NewGroup(entries []Entry, opts ...Option) *Group {
	g := &Group{controls: make(map[string]Control, len(entries))}
	g.setup(g, opts)
	for _, e := range entries {
		g.register(e.Name, e.Control)
	}
	g.updateValueAndValidity(updateConfig{onlySelf: true, silent: true})
	return g
}

func (g *Group) register(name string, c Control) bool {
	if c == nil {
		return false
	}
	if _, ok := g.controls[name]; ok {
		return false
	}
	g.names = append(g.names, name)
	g.controls[name] = c
	c.node().setParent(weakRef(g))
	settleAttached(c)
	return true
}

// AddControl appends a child unless the name is already taken.
func (g *Group) AddControl(name string, c Control, opts ...UpdateOption) {
	if !g.register(name, c) {
		return
	}
	g.updateValueAndValidity(resolveUpdate(opts))
}

// SetControl replaces the child registered under name, keeping its position,
// or appends c when the name is new. A nil c removes the child.
func (g *Group) SetControl(name string, c Control, opts ...UpdateOption) {
	if c == nil {
		g.RemoveControl(name, opts...)
		return
	}
	if old, ok := g.controls[name]; ok {
		if old == c {
			return
		}
		old.node().setParent(nil)
		g.controls[name] = c
		c.node().setParent(weakRef(g))
		settleAttached(c)
	} else {
		g.register(name, c)
	}
	g.updateValueAndValidity(resolveUpdate(opts))
}

// RemoveControl detaches the named child. Unknown names are ignored.
func (g *Group) RemoveControl(name string, opts ...UpdateOption) {
	c, ok := g.controls[name]
	if !ok {
		return
	}
	c.node().setParent(nil)
	delete(g.controls, name)
	g.names = slices.DeleteFunc(g.names, func(n string) bool { return n == name })
	g.updateValueAndValidity(resolveUpdate(opts))
}

// Contains reports whether name is registered and enabled.
func (g *Group) Contains(name string) bool {
	c, ok := g.controls[name]
	return ok && c.Enabled()
}

// Control returns the named child, or nil.
func (g *Group) Control(name string) Control {
	return g.controls[name]
}

// Names returns the child names in declared order.
func (g *Group) Names() []string {
	return slices.Clone(g.names)
}

func (g *Group) Len() int { return len(g.names) }

func (g *Group) Value() any {
	out := make(map[string]any, len(g.names))
	for _, name := range g.names {
		if c := g.controls[name]; c.Enabled() {
			out[name] = c.Value()
		}
	}
	return out
}

func (g *Group) RawValue() any {
	out := make(map[string]any, len(g.names))
	for _, name := range g.names {
		out[name] = g.controls[name].RawValue()
	}
	return out
}

func (g *Group) children() []Control {
	kids := make([]Control, 0, len(g.names))
	for _, name := range g.names {
		kids = append(kids, g.controls[name])
	}
	return kids
}

func (g *Group) syncPending(u updateConfig) bool { return g.syncChildren(u) }

func asMap(v any, path string) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, shapeErrorf(path, "expected map[string]any, got %T", v)
	}
	return m, nil
}

// checkSet requires a value for every enabled child and rejects unknown keys.
// Values for disabled children are optional.
func (g *Group) checkSet(v any, path string) error {
	m, err := asMap(v, path)
	if err != nil {
		return err
	}
	unknown := make([]string, 0)
	for key := range m {
		if _, ok := g.controls[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return shapeErrorf(joinPath(path, unknown[0]), "no control named %q", unknown[0])
	}
	for _, name := range g.names {
		c := g.controls[name]
		val, ok := m[name]
		if !ok {
			if c.Enabled() {
				return shapeErrorf(joinPath(path, name), "missing value for enabled control %q", name)
			}
			continue
		}
		if err := c.checkSet(val, joinPath(path, name)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) applySet(v any, u updateConfig) {
	m := v.(map[string]any)
	for _, name := range g.names {
		if val, ok := m[name]; ok {
			g.controls[name].applySet(val, u.self())
		}
	}
	g.updateValueAndValidity(u)
}

func (g *Group) checkPatch(v any, path string) error {
	if v == nil {
		return nil
	}
	m, err := asMap(v, path)
	if err != nil {
		return err
	}
	for _, name := range g.names {
		if val, ok := m[name]; ok {
			if err := g.controls[name].checkPatch(val, joinPath(path, name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Group) applyPatch(v any, u updateConfig) {
	if v == nil {
		return
	}
	m := v.(map[string]any)
	for _, name := range g.names {
		if val, ok := m[name]; ok {
			g.controls[name].applyPatch(val, u.self())
		}
	}
	g.updateValueAndValidity(u)
}

func (g *Group) checkReset(v any, path string) error {
	if v == nil {
		return nil
	}
	m, err := asMap(v, path)
	if err != nil {
		return err
	}
	for _, name := range g.names {
		if err := g.controls[name].checkReset(m[name], joinPath(path, name)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Group) applyReset(v any, u updateConfig) {
	m, _ := v.(map[string]any)
	for _, name := range g.names {
		g.controls[name].applyReset(m[name], u.self())
	}
	g.updatePristine(u)
	g.updateTouched(u)
	g.updateValueAndValidity(u)
}
