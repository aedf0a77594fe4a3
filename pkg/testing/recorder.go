package testing

import (
	"fmt"

	"github.com/go-drift/forms/pkg/form"
)

// Recorder collects the events emitted by a set of controls in the order
// they arrive.
type Recorder struct {
	events []form.Event
	stops  []func()
}

// Record starts recording events from every control in controls.
func Record(controls ...form.Control) *Recorder {
	r := &Recorder{}
	for _, c := range controls {
		if c == nil {
			continue
		}
		r.stops = append(r.stops, c.Listen(func(e form.Event) {
			r.events = append(r.events, e)
		}))
	}
	return r
}

// Events returns the recorded events.
func (r *Recorder) Events() []form.Event {
	return append([]form.Event(nil), r.events...)
}

// Lines describes each recorded event on one line, such as
// "status profile.name INVALID". The root is written as ".".
func (r *Recorder) Lines() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, Describe(e))
	}
	return out
}

// Filter returns the lines whose event kind is kind ("value", "status",
// "pristine", "touched" or "reset").
func (r *Recorder) Filter(kind string) []string {
	var out []string
	for _, e := range r.events {
		if eventKind(e) == kind {
			out = append(out, Describe(e))
		}
	}
	return out
}

// Clear forgets the events recorded so far.
func (r *Recorder) Clear() { r.events = nil }

// Stop unsubscribes from every control.
func (r *Recorder) Stop() {
	for _, stop := range r.stops {
		stop()
	}
	r.stops = nil
}

// Describe formats an event the way Lines does.
func Describe(e form.Event) string {
	path := form.Path(e.Source())
	if path == "" {
		path = "."
	}
	switch ev := e.(type) {
	case form.ValueChangeEvent:
		return fmt.Sprintf("value %s %v", path, ev.Value)
	case form.StatusChangeEvent:
		return fmt.Sprintf("status %s %s", path, ev.Status)
	case form.PristineChangeEvent:
		return fmt.Sprintf("pristine %s %t", path, ev.Pristine)
	case form.TouchedChangeEvent:
		return fmt.Sprintf("touched %s %t", path, ev.Touched)
	case form.ResetEvent:
		return "reset " + path
	}
	return fmt.Sprintf("%T %s", e, path)
}

func eventKind(e form.Event) string {
	switch e.(type) {
	case form.ValueChangeEvent:
		return "value"
	case form.StatusChangeEvent:
		return "status"
	case form.PristineChangeEvent:
		return "pristine"
	case form.TouchedChangeEvent:
		return "touched"
	case form.ResetEvent:
		return "reset"
	}
	return ""
}
