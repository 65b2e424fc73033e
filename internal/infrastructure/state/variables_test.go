package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/variables"
)

func TestVariableStoreInitialize(t *testing.T) {
	vs := NewVariableStore(nil)
	vs.Initialize(map[string]variables.Value{
		"sides": variables.Number(3),
		"label": variables.Text("triangle"),
	})

	v, ok := vs.Get("sides")
	require.True(t, ok)
	assert.Equal(t, variables.Number(3), v)

	// Re-initializing must not clobber a live value.
	vs.Set("sides", variables.Number(5))
	vs.Initialize(map[string]variables.Value{
		"sides": variables.Number(3),
		"extra": variables.Bool(true),
	})

	v, ok = vs.Get("sides")
	require.True(t, ok)
	assert.Equal(t, variables.Number(5), v)

	_, ok = vs.Get("extra")
	assert.True(t, ok, "new names from a later Initialize should be added")
}

func TestVariableStoreGetMissing(t *testing.T) {
	vs := NewVariableStore(nil)
	v, ok := vs.Get("nope")
	assert.False(t, ok)
	assert.True(t, v.IsZero())
}

func TestVariableStoreObserve(t *testing.T) {
	vs := NewVariableStore(nil)

	var got []variables.Value
	current, sub := vs.Observe("angle", variables.Number(90), func(v variables.Value) {
		got = append(got, v)
	})
	defer sub.Cancel()

	// Initial read returns the default without firing the callback.
	assert.Equal(t, variables.Number(90), current)
	assert.Empty(t, got)

	// The default was stored, so a plain Get now sees it.
	stored, ok := vs.Get("angle")
	require.True(t, ok)
	assert.Equal(t, variables.Number(90), stored)

	changed := vs.Set("angle", variables.Number(45))
	assert.True(t, changed)
	require.Len(t, got, 1)
	assert.Equal(t, variables.Number(45), got[0])
}

func TestVariableStoreSetEqualValueIsNoOp(t *testing.T) {
	vs := NewVariableStore(nil)

	fired := 0
	_, sub := vs.Observe("speed", variables.Number(10), func(variables.Value) { fired++ })
	defer sub.Cancel()

	assert.False(t, vs.Set("speed", variables.Number(10)))
	assert.Equal(t, 0, fired, "equal writes must not notify")

	assert.True(t, vs.Set("speed", variables.Number(11)))
	assert.Equal(t, 1, fired)

	// Same value again after a real change: still suppressed.
	assert.False(t, vs.Set("speed", variables.Number(11)))
	assert.Equal(t, 1, fired)
}

func TestVariableStoreMultipleObservers(t *testing.T) {
	vs := NewVariableStore(nil)

	a, b := 0, 0
	_, subA := vs.Observe("x", variables.Number(0), func(variables.Value) { a++ })
	_, subB := vs.Observe("x", variables.Number(0), func(variables.Value) { b++ })

	vs.Set("x", variables.Number(1))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	subA.Cancel()
	vs.Set("x", variables.Number(2))
	assert.Equal(t, 1, a, "cancelled observer must not fire")
	assert.Equal(t, 2, b)

	subB.Cancel()
	assert.Equal(t, 0, vs.SubscriberCount("x"))
}

func TestVariableStoreCancelTwice(t *testing.T) {
	vs := NewVariableStore(nil)
	_, sub := vs.Observe("x", variables.Number(0), func(variables.Value) {})
	sub.Cancel()
	sub.Cancel() // must not panic
	assert.Equal(t, 0, vs.SubscriberCount("x"))
}

func TestVariableStoreObserverMayWriteBack(t *testing.T) {
	vs := NewVariableStore(nil)

	// An observer writing a different variable must not deadlock.
	_, sub := vs.Observe("a", variables.Number(0), func(v variables.Value) {
		vs.Set("b", v)
	})
	defer sub.Cancel()

	vs.Set("a", variables.Number(7))
	b, ok := vs.Get("b")
	require.True(t, ok)
	assert.Equal(t, variables.Number(7), b)
}

func TestVariableStoreSnapshot(t *testing.T) {
	vs := NewVariableStore(nil)
	vs.Set("one", variables.Number(1))
	vs.Set("two", variables.Text("2"))

	snap := vs.Snapshot()
	assert.Len(t, snap, 2)

	// Mutating the snapshot must not affect the store.
	snap["one"] = variables.Number(99)
	v, _ := vs.Get("one")
	assert.Equal(t, variables.Number(1), v)
}

func TestVariableStoreConcurrentAccess(t *testing.T) {
	vs := NewVariableStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				vs.Set("counter", variables.Number(float64(n*100+j)))
				vs.Get("counter")
			}
		}(i)
	}
	wg.Wait()

	_, ok := vs.Get("counter")
	assert.True(t, ok)
}
