package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFallsBackToImmediate(t *testing.T) {
	Register(nil)
	ran := false
	assert.True(t, Dispatch(func() { ran = true }))
	assert.True(t, ran, "immediate dispatcher runs the callback inline")
	assert.False(t, Dispatch(nil))
}

func TestRegister(t *testing.T) {
	q := NewQueue()
	Register(q)
	defer Register(nil)

	ran := false
	require.True(t, Dispatch(func() { ran = true }))
	assert.False(t, ran, "queued callback must wait for a drain")
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 1, q.RunPending())
	assert.True(t, ran)
}

func TestFunc(t *testing.T) {
	var calls int
	d := Func(func(cb func()) {
		calls++
		cb()
	})
	ran := false
	d.Dispatch(func() { ran = true })
	assert.Equal(t, 1, calls)
	assert.True(t, ran)
}

func TestQueue_RunPendingOrder(t *testing.T) {
	q := NewQueue()
	var order []int
	for i := range 3 {
		q.Dispatch(func() { order = append(order, i) })
	}
	q.Dispatch(nil)
	assert.Equal(t, 3, q.RunPending())
	assert.Equal(t, []int{0, 1, 2}, order)
	assert.Equal(t, 0, q.RunPending())
}

func TestQueue_RunPendingIncludesNested(t *testing.T) {
	q := NewQueue()
	var order []string
	q.Dispatch(func() {
		order = append(order, "outer")
		q.Dispatch(func() { order = append(order, "inner") })
	})
	assert.Equal(t, 2, q.RunPending())
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestQueue_RunNextWaitsForWorker(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		q.Dispatch(func() {})
	}()

	require.NoError(t, q.RunNext(ctx))
	wg.Wait()
}

func TestQueue_RunNextHonoursContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.RunNext(ctx), context.DeadlineExceeded)
}

func TestQueue_Run(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	count := 0
	q.Dispatch(func() { count++ })
	q.Dispatch(func() {
		count++
		cancel()
	})

	err := q.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, count)
}
