package form

// Disable sets the control's disabled flag. The control and its descendants
// drop their errors and any async work in flight, emit value and status
// events bottom-up, and the ancestors recompute without it.
func (b *base) Disable(opts ...UpdateOption) {
	u := resolveUpdate(opts)
	b.disabled = true
	b.quiesce(u)
	b.updateAncestors(u)
}

func (b *base) quiesce(u updateConfig) {
	for _, c := range b.self.children() {
		c.node().quiesce(u)
	}
	b.generation.Add(1)
	b.asyncRunning = false
	b.errors = nil
	b.status = StatusValid
	if !u.silent {
		b.emit(ValueChangeEvent{Control: b.self, Value: b.self.Value()})
		b.emit(StatusChangeEvent{Control: b.self, Status: b.Status()})
	}
}

// Enable clears the control's disabled flag. Descendants keep their own
// flags, so the subset that was enabled before Disable comes back; pass
// IncludeDescendants to clear every flag in the subtree. A composite whose
// children are all disabled on their own enables them as well, since it
// would otherwise stay disabled.
func (b *base) Enable(opts ...UpdateOption) {
	u := resolveUpdate(opts)
	b.disabled = false
	if u.includeDescendants || b.selfDisabled() {
		for _, c := range b.self.children() {
			c.node().enableSubtree()
		}
	}
	b.revalidateSubtree(u)
	b.updateAncestors(u)
}

func (b *base) enableSubtree() {
	b.disabled = false
	for _, c := range b.self.children() {
		c.node().enableSubtree()
	}
}

func (b *base) MarkAsTouched(opts ...UpdateOption) {
	b.markAsTouched(resolveUpdate(opts))
}

func (b *base) markAsTouched(u updateConfig) {
	b.setTouched(true, u)
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().markAsTouched(u)
		}
	}
}

// MarkAllAsTouched marks the control and every descendant touched.
func (b *base) MarkAllAsTouched(opts ...UpdateOption) {
	u := resolveUpdate(opts)
	b.markSubtreeTouched(u)
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().markAsTouched(u)
		}
	}
}

func (b *base) markSubtreeTouched(u updateConfig) {
	for _, c := range b.self.children() {
		c.node().markSubtreeTouched(u)
	}
	b.setTouched(true, u)
}

func (b *base) MarkAsUntouched(opts ...UpdateOption) {
	b.markAsUntouched(resolveUpdate(opts))
}

func (b *base) markAsUntouched(u updateConfig) {
	b.setTouched(false, u)
	for _, c := range b.self.children() {
		c.node().markAsUntouched(u.self())
	}
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().updateTouched(u)
		}
	}
}

// updateTouched recomputes a composite's flag from its enabled children.
func (b *base) updateTouched(u updateConfig) {
	b.setTouched(b.anyEnabledChild(Control.Touched), u)
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().updateTouched(u)
		}
	}
}

func (b *base) setTouched(touched bool, u updateConfig) {
	if b.touched == touched {
		return
	}
	b.touched = touched
	if !u.silent {
		b.emit(TouchedChangeEvent{Control: b.self, Touched: touched})
	}
}

func (b *base) MarkAsDirty(opts ...UpdateOption) {
	b.markAsDirty(resolveUpdate(opts))
}

func (b *base) markAsDirty(u updateConfig) {
	b.setDirty(true, u)
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().markAsDirty(u)
		}
	}
}

func (b *base) MarkAsPristine(opts ...UpdateOption) {
	b.markAsPristine(resolveUpdate(opts))
}

func (b *base) markAsPristine(u updateConfig) {
	b.setDirty(false, u)
	for _, c := range b.self.children() {
		c.node().markAsPristine(u.self())
	}
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().updatePristine(u)
		}
	}
}

// updatePristine recomputes a composite's flag from its enabled children.
func (b *base) updatePristine(u updateConfig) {
	b.setDirty(b.anyEnabledChild(Control.Dirty), u)
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().updatePristine(u)
		}
	}
}

func (b *base) setDirty(dirty bool, u updateConfig) {
	if b.dirty == dirty {
		return
	}
	b.dirty = dirty
	if !u.silent {
		b.emit(PristineChangeEvent{Control: b.self, Pristine: !dirty})
	}
}

// MarkAsPending sets the status to pending by hand, on the control and,
// unless OnlySelf is given, its ancestors. The next pass replaces it.
func (b *base) MarkAsPending(opts ...UpdateOption) {
	b.markAsPending(resolveUpdate(opts))
}

func (b *base) markAsPending(u updateConfig) {
	b.status = StatusPending
	if !u.silent {
		b.emit(StatusChangeEvent{Control: b.self, Status: b.Status()})
	}
	if !u.onlySelf {
		if p := b.Parent(); p != nil {
			p.node().markAsPending(u)
		}
	}
}
