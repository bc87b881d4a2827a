package ecs_test

import (
	"testing"

	"github.com/plus3/gecs/ecs"
	"github.com/stretchr/testify/assert"
)

type damageEvent struct {
	Amount int
}

func TestEventQueuePushAndFlushAll(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("combat")
	defer arch.Destroy()
	a := arch.Spawn("a")
	b := arch.Spawn("b")

	queue := ecs.NewEventQueue[damageEvent]()
	assert.True(t, queue.IsEmpty())

	queue.Push(a, damageEvent{Amount: 3})
	queue.Push(b, damageEvent{Amount: 5})
	queue.Push(a, damageEvent{Amount: 7})
	assert.Equal(t, 3, queue.Len())

	// Queued events hold dependents on their targets.
	lt := mustRaw(t, a.Lifetime)
	assert.Equal(t, 2, lt.DependencyCount())

	totals := map[uint32]int{}
	for target, event := range queue.FlushAll() {
		totals[target.Slot] += event.Amount
	}
	assert.Equal(t, map[uint32]int{a.Slot: 10, b.Slot: 5}, totals)
	assert.True(t, queue.IsEmpty())
	assert.Equal(t, 0, lt.DependencyCount())

	arch.Despawn(a)
	arch.Despawn(b)
	trap.requireNoErrors(t)
}

func TestEventQueueFlushIn(t *testing.T) {
	trap := installLogTrap(t)

	archA := ecs.NewArchetype[any]("A")
	archB := ecs.NewArchetype[any]("B")
	defer archA.Destroy()
	defer archB.Destroy()

	a := archA.Spawn("a")
	b := archB.Spawn("b")

	queue := ecs.NewEventQueue[damageEvent]()
	queue.Push(a, damageEvent{Amount: 1})
	queue.Push(b, damageEvent{Amount: 2})

	var got []int
	for _, event := range queue.FlushIn(archA.ID()) {
		got = append(got, event.Amount)
	}
	assert.Equal(t, []int{1}, got)
	assert.Equal(t, 1, queue.Len())

	for _, event := range queue.FlushIn(archB.ID()) {
		got = append(got, event.Amount)
	}
	assert.Equal(t, []int{1, 2}, got)
	assert.True(t, queue.IsEmpty())

	archA.Despawn(a)
	archB.Despawn(b)
	trap.requireNoErrors(t)
}

func TestEventQueuePushDuringFlush(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("chain")
	defer arch.Destroy()
	a := arch.Spawn("a")
	b := arch.Spawn("b")

	queue := ecs.NewEventQueue[damageEvent]()
	queue.Push(a, damageEvent{Amount: 1})
	queue.MaybeRecursivelyDispatched()

	// The flush snapshot is taken up front, so handlers may queue
	// follow-ups for the next pass.
	for range queue.FlushAll() {
		queue.Push(b, damageEvent{Amount: 2})
	}
	assert.Equal(t, 1, queue.Len())
	assert.True(t, queue.MaybeRecursivelyDispatched())
	assert.False(t, queue.MaybeRecursivelyDispatched())

	count := 0
	for range queue.FlushAll() {
		count++
	}
	assert.Equal(t, 1, count)

	arch.Despawn(a)
	arch.Despawn(b)
	trap.requireNoErrors(t)
}

func TestDestroyQueueDrivesCleanup(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("world")
	defer arch.Destroy()

	positions := ecs.NewStorage[position]()
	var queue *ecs.DestroyQueue = ecs.NewEventQueue[ecs.EntityDestroyEvent]()

	a := arch.Spawn("a")
	b := arch.Spawn("b")
	positions.Add(a, position{X: 1})
	positions.Add(b, position{X: 2})

	queue.Push(a, ecs.EntityDestroyEvent{})
	for target := range queue.FlushAll() {
		positions.TryRemove(target)
		arch.Despawn(target)
	}

	assert.Equal(t, 1, arch.Len())
	assert.Equal(t, 1, positions.Len())
	assert.False(t, positions.Has(a))
	assert.True(t, positions.Has(b))

	positions.Remove(b)
	arch.Despawn(b)
	trap.requireNoErrors(t)
}
