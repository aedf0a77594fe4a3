// Package testing provides helpers for testing code built on form trees.
//
// # Async Validators
//
// AsyncStub hands out tasks that block until the test settles them, so the
// order in which async results arrive is under the test's control:
//
//	func TestUsername(t *testing.T) {
//	    q := dispatch.NewQueue()
//	    stub := ftesting.NewAsyncStub()
//	    f := form.NewField("bob",
//	        form.WithAsyncValidators(stub.Validator()),
//	        form.WithDispatcher(q))
//
//	    stub.Last().Resolve(form.ValidationErrors{"taken": true})
//	    require.NoError(t, form.WaitSettled(ctx, q, f))
//	    assert.True(t, f.HasError("taken"))
//	}
//
// # Events
//
// Record subscribes to controls and keeps their events in arrival order;
// Lines renders them as short strings for comparison:
//
//	rec := ftesting.Record(name, root)
//	name.Set("x")
//	// rec.Lines(): "value name x", "status name VALID", "value . map[name:x]", ...
//
// # Snapshot Testing
//
// Capture the state of a whole tree and compare it with a golden file:
//
//	snap := ftesting.Capture(root)
//	snap.MatchesFile(t, "testdata/signup.snapshot.json")
//
// Update snapshots with:
//
//	FORMS_UPDATE_SNAPSHOTS=1 go test ./...
package testing
