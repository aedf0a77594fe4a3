package form

// Event is emitted by a control when its value, status or interaction state
// changes. Events of one pass are delivered child before parent.
type Event interface {
	// Source returns the control that emitted the event.
	Source() Control
}

// ValueChangeEvent carries the value of a control after a pass.
type ValueChangeEvent struct {
	Control Control
	Value   any
}

func (e ValueChangeEvent) Source() Control { return e.Control }

// StatusChangeEvent carries the status of a control after a pass.
type StatusChangeEvent struct {
	Control Control
	Status  Status
}

func (e StatusChangeEvent) Source() Control { return e.Control }

// PristineChangeEvent is emitted when a control's pristine flag flips.
type PristineChangeEvent struct {
	Control  Control
	Pristine bool
}

func (e PristineChangeEvent) Source() Control { return e.Control }

// TouchedChangeEvent is emitted when a control's touched flag flips.
type TouchedChangeEvent struct {
	Control Control
	Touched bool
}

func (e TouchedChangeEvent) Source() Control { return e.Control }

// ResetEvent is emitted by the control Reset was called on.
type ResetEvent struct {
	Control Control
}

func (e ResetEvent) Source() Control { return e.Control }

type listener struct {
	id int
	fn func(Event)
}

// listenerSet keeps listeners in registration order.
type listenerSet struct {
	entries []listener
	nextID  int
}

func (s *listenerSet) add(fn func(Event)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.entries = append(s.entries, listener{id: id, fn: fn})
	return func() {
		for i, l := range s.entries {
			if l.id == id {
				s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
				return
			}
		}
	}
}

func (s *listenerSet) emit(e Event) {
	if len(s.entries) == 0 {
		return
	}
	snapshot := append([]listener(nil), s.entries...)
	for _, l := range snapshot {
		l.fn(e)
	}
}
