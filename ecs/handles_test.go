package ecs_test

import (
	"testing"

	"github.com/plus3/gecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestEntityKeyPacksArchetypeAndSlot(t *testing.T) {
	installLogTrap(t)

	arch := ecs.NewArchetype[any]("keys")
	defer arch.Destroy()

	entity := arch.Spawn("subject")
	key := entity.Key()
	assert.Equal(t, uint64(entity.Archetype.ID)<<32|uint64(entity.Slot), key)

	arch.Despawn(entity)
}

func TestArchetypeMapHoldsDependency(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("indexed")
	id := arch.ID()
	lt := mustRaw(t, id.Lifetime)

	m := ecs.NewArchetypeMap[string]()
	m.Put(id, "first")
	assert.Equal(t, 1, lt.DependencyCount())

	// Replacing the value must not leak the previous entry's dependency.
	m.Put(id, "second")
	assert.Equal(t, 1, lt.DependencyCount())

	got, ok := m.Get(id)
	assert.True(t, ok)
	assert.Equal(t, "second", got)

	value, deleted := m.Delete(id)
	assert.True(t, deleted)
	assert.Equal(t, "second", value)
	assert.Equal(t, 0, lt.DependencyCount())
	assert.Equal(t, 0, m.Len())

	arch.Destroy()
	trap.requireNoErrors(t)
}

func TestArchetypeMapIteratesInInsertionOrder(t *testing.T) {
	trap := installLogTrap(t)

	archA := ecs.NewArchetype[any]("A")
	archB := ecs.NewArchetype[any]("B")
	archC := ecs.NewArchetype[any]("C")
	defer archA.Destroy()
	defer archB.Destroy()
	defer archC.Destroy()

	m := ecs.NewArchetypeMap[int]()
	m.Put(archB.ID(), 2)
	m.Put(archA.ID(), 1)
	m.Put(archC.ID(), 3)

	var order []int
	for _, v := range m.All() {
		order = append(order, v)
	}
	assert.Equal(t, []int{2, 1, 3}, order)

	m.Clear()
	assert.Equal(t, 0, m.Len())
	trap.requireNoErrors(t)
}

func TestEntityMapAccounting(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("tracked")
	defer arch.Destroy()

	a := arch.Spawn("a")
	b := arch.Spawn("b")
	lt := mustRaw(t, a.Lifetime)

	m := ecs.NewEntityMap[int]()
	m.Put(a, 10)
	m.Put(b, 20)
	assert.Equal(t, 1, lt.DependencyCount())
	assert.Equal(t, 2, m.Len())

	got, ok := m.Get(a)
	assert.True(t, ok)
	assert.Equal(t, 10, got)

	m.Clear()
	assert.Equal(t, 0, lt.DependencyCount())

	arch.Despawn(a)
	arch.Despawn(b)
	trap.requireNoErrors(t)
}
