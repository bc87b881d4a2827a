package ecs_test

import (
	"log/slog"
	"testing"

	"github.com/plus3/gecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotReuseScenario(t *testing.T) {
	trap := installLogTrap(t)

	arch1 := ecs.NewArchetype[any]("Archetype 1")
	arch2 := ecs.NewArchetype[any]("Archetype 2")
	defer arch1.Destroy()
	defer arch2.Destroy()

	assert.NotEqual(t, arch1.ID(), arch2.ID())

	entity1 := arch1.Spawn("Entity 1")
	entity2 := arch1.Spawn("Entity 2")
	entity3 := arch2.Spawn("Entity 3")
	entity4 := arch2.Spawn("Entity 4")

	assert.Equal(t, uint32(0), entity1.Slot)
	assert.Equal(t, uint32(1), entity2.Slot)
	assert.Equal(t, uint32(0), entity3.Slot)
	assert.Equal(t, uint32(1), entity4.Slot)

	arch1.Despawn(entity1)

	entity5 := arch1.Spawn("Entity 5")
	assert.Equal(t, uint32(0), entity5.Slot)

	entity6 := arch1.Spawn("Entity 6")
	assert.Equal(t, uint32(2), entity6.Slot)

	assert.False(t, mustRaw(t, entity1.Lifetime).IsAlive())
	assert.True(t, mustRaw(t, entity2.Lifetime).IsAlive())
	assert.True(t, mustRaw(t, entity3.Lifetime).IsAlive())
	assert.True(t, mustRaw(t, entity4.Lifetime).IsAlive())
	assert.True(t, mustRaw(t, entity5.Lifetime).IsAlive())
	assert.True(t, mustRaw(t, entity6.Lifetime).IsAlive())

	arch2.Despawn(entity3)
	assert.False(t, mustRaw(t, entity3.Lifetime).IsAlive())

	entity7 := arch2.Spawn("Entity 7")
	assert.Equal(t, uint32(0), entity7.Slot)

	trap.requireNoErrors(t)
}

func mustRaw(t *testing.T, lt ecs.DebugLifetime) ecs.Lifetime {
	t.Helper()
	raw, ok := lt.Raw()
	require.True(t, ok, "test requires a lifetime-checked build")
	return raw
}

func TestCrossArchetypeDespawnIsLoggedNoOp(t *testing.T) {
	trap := installLogTrap(t)

	archA := ecs.NewArchetype[any]("A")
	archB := ecs.NewArchetype[any]("B")
	defer archA.Destroy()
	defer archB.Destroy()

	stranger := archA.Spawn("stranger")
	archB.Despawn(stranger)

	assert.Equal(t, 1, trap.count(slog.LevelError))
	assert.True(t, stranger.IsPossiblyAlive())
	assert.Equal(t, 1, archA.Len())
	assert.Equal(t, 0, archB.Len())

	trap.reset()
	archA.Despawn(stranger)
	trap.requireNoErrors(t)
}

func TestDoubleDespawnIsLoggedNoOp(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("twice")
	defer arch.Destroy()

	entity := arch.Spawn("victim")
	arch.Despawn(entity)
	trap.reset()

	arch.Despawn(entity)
	assert.Equal(t, 1, trap.count(slog.LevelError))
	assert.Equal(t, 0, arch.Len())
}

func TestEntitiesIteration(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("iter")
	defer arch.Destroy()

	a := arch.Spawn("a")
	b := arch.Spawn("b")
	c := arch.Spawn("c")
	arch.Despawn(b)

	var slots []uint32
	for entity := range arch.Entities() {
		slots = append(slots, entity.Slot)
		assert.Equal(t, arch.ID(), entity.Archetype)
	}
	assert.Equal(t, []uint32{a.Slot, c.Slot}, slots)

	trap.requireNoErrors(t)
}

func TestArchetypeDestroyCondemnsHandles(t *testing.T) {
	trap := installLogTrap(t)

	arch := ecs.NewArchetype[any]("doomed")
	entity := arch.Spawn("inhabitant")
	id := arch.ID()

	arch.Destroy()

	assert.True(t, id.IsCondemned())
	assert.True(t, entity.IsCondemned())
	trap.requireNoErrors(t)

	arch.Destroy()
	assert.Equal(t, 1, trap.count(slog.LevelError))
}

func TestRetagAliasesSameArchetype(t *testing.T) {
	trap := installLogTrap(t)

	type markerA struct{}
	type markerB struct{}

	tagged := ecs.NewArchetype[markerA]("retagged")
	defer tagged.Destroy()

	retagged := ecs.Retag[markerB](tagged)
	assert.Equal(t, tagged.ID(), retagged.ID())

	entity := retagged.Spawn("via retag")
	assert.Equal(t, 1, tagged.Len())

	tagged.Despawn(entity)
	assert.Equal(t, 0, retagged.Len())

	trap.requireNoErrors(t)
}
