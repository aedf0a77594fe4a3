// Package form models user-input forms as a tree of controls.
//
// A tree is built from three kinds of node, all implementing [Control]:
//
//   - [Field] holds a single value of type T.
//   - [Group] holds named children; its value is a map[string]any.
//   - [List] holds an ordered, resizable set of children; its value is a []any.
//
// # Values
//
// Composite values are computed from the children every time they are read.
// Disabled children are left out entirely, so a group's value only has keys
// for its enabled children and a list's value skips disabled entries:
//
//	g := form.NewGroup([]form.Entry{
//	    {Name: "a", Control: form.NewField("x")},
//	    {Name: "b", Control: form.NewField(0)},
//	})
//	g.Control("b").Disable()
//	g.Value() // map[string]any{"a": "x"}
//
// RawValue includes disabled children.
//
// SetValue requires the full shape of the enabled subtree and fails with an
// error matching [ErrShapeMismatch] without changing anything when a key is
// missing, unknown, or of the wrong type. PatchValue only touches what it is
// given and ignores unknown keys and indices.
//
// # Validation
//
// Every value change runs a validation pass: the control's synchronous
// validators run and their error maps are merged in order, the status is
// derived from the control's own errors and its enabled children, and the
// pass repeats on each ancestor up to the root. Value and status events are
// emitted on every node of the path, child before parent.
//
// When a pass leaves the control VALID or PENDING and async validators are
// registered, the control becomes PENDING and the validators' tasks run on
// their own goroutines. Their merged result is handed back through a
// [dispatch.Dispatcher] and applied only if no newer pass has started on
// that control in the meantime. A task that returns an error or panics makes
// the control INVALID under [AsyncFailedKey] and is reported to the
// handler in package errors.
//
// Trees are not safe for concurrent use. Give the root a dispatcher with
// [WithDispatcher] that runs callbacks on the goroutine owning the tree,
// for example a [dispatch.Queue] drained by an event loop.
//
// # Interaction state
//
// Dirty and touched move up to the ancestors; pristine and untouched move
// down to the descendants, after which ancestors recompute from their
// enabled children. [Field.Input] and [Field.Blur] model a bound input and
// honor the field's [UpdateOn] setting.
package form
