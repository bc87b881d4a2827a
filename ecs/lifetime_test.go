package ecs_test

import (
	"log/slog"
	"testing"

	"github.com/plus3/gecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifetimeAliveUntilDestroyed(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("probe")
	assert.True(t, lt.IsAlive())
	assert.False(t, lt.IsCondemned())
	assert.Equal(t, "probe", lt.Name())

	lt.Destroy()
	assert.False(t, lt.IsAlive())
	assert.True(t, lt.IsCondemned())

	trap.requireNoErrors(t)
}

func TestLifetimeGenerationalUniqueness(t *testing.T) {
	trap := installLogTrap(t)

	// Two lifetimes obtained without an intervening destroy never compare
	// equal, regardless of slot placement.
	a := ecs.NewLifetime("a")
	b := ecs.NewLifetime("b")
	assert.NotEqual(t, a, b)

	// Destroying a lifetime and reusing its slot must not resurrect the old
	// handle: the pool is LIFO, so the next allocation tends to land on the
	// slot just released.
	a.Destroy()
	c := ecs.NewLifetime("c")
	assert.False(t, a.IsAlive())
	assert.True(t, c.IsAlive())
	assert.NotEqual(t, a, c)

	b.Destroy()
	c.Destroy()
	trap.requireNoErrors(t)
}

func TestLifetimeDoubleDestroyIsLoggedNotFatal(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("twice")
	lt.Destroy()
	lt.Destroy()

	assert.Equal(t, 1, trap.count(slog.LevelError))
}

func TestLifetimeDeadName(t *testing.T) {
	installLogTrap(t)

	lt := ecs.NewLifetime("ghost")
	lt.Destroy()

	// The most recently destroyed generation keeps its name readable for
	// diagnostics.
	assert.Equal(t, "ghost", lt.Name())
}

func TestZeroLifetimeIsCondemned(t *testing.T) {
	var zero ecs.Lifetime
	assert.False(t, zero.IsAlive())
	assert.True(t, zero.IsCondemned())
	assert.Equal(t, 0, zero.DependencyCount())
}

func TestDependencyCounting(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("counted")
	require.True(t, lt.TryIncDep())
	require.True(t, lt.TryIncDep())
	assert.Equal(t, 2, lt.DependencyCount())

	lt.DecDep()
	lt.DecDep()
	assert.Equal(t, 0, lt.DependencyCount())

	lt.Destroy()
	trap.requireNoErrors(t)
}

func TestDecDepUnderflowPanics(t *testing.T) {
	installLogTrap(t)

	lt := ecs.NewLifetime("underflow")
	defer lt.Destroy()

	assert.Panics(t, func() { lt.DecDep() })
}

func TestIncDepAfterDeathIsLoggedNoOp(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("late")
	lt.Destroy()
	trap.reset()

	assert.False(t, lt.TryIncDep())
	lt.IncDep()
	assert.Equal(t, 1, trap.count(slog.LevelError))

	// The failed increment must not disturb the fresh occupant of the slot.
	assert.Equal(t, 0, lt.DependencyCount())
}

func TestDestroyWithOutstandingDependenciesLogs(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("held")
	lt.IncDep()
	lt.Destroy()

	assert.Equal(t, 1, trap.count(slog.LevelError))
}
