package ecs_test

import (
	"log/slog"
	"testing"

	"github.com/plus3/gecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestDependentAccounting(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("shared")

	const n = 8
	deps := make([]*ecs.Dependent[ecs.Lifetime], n)
	for i := range deps {
		deps[i] = ecs.NewDependent(lt)
	}
	assert.Equal(t, n, lt.DependencyCount())

	for _, dep := range deps {
		assert.Equal(t, lt, dep.Get())
		dep.Release()
	}
	assert.Equal(t, 0, lt.DependencyCount())

	lt.Destroy()
	trap.requireNoErrors(t)
}

func TestDependentClone(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("cloned")
	dep := ecs.NewDependent(lt)
	clone := dep.Clone()
	assert.Equal(t, 2, lt.DependencyCount())

	dep.Release()
	clone.Release()
	assert.Equal(t, 0, lt.DependencyCount())

	lt.Destroy()
	trap.requireNoErrors(t)
}

func TestDependentDoubleReleaseIsLogged(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewLifetime("released")
	dep := ecs.NewDependent(lt)
	dep.Release()
	dep.Release()

	assert.Equal(t, 1, trap.count(slog.LevelError))
	assert.Equal(t, 0, lt.DependencyCount())
	lt.Destroy()
}

func TestReleasingMoreThanConstructedPanics(t *testing.T) {
	installLogTrap(t)

	lt := ecs.NewLifetime("overdrawn")
	defer lt.Destroy()

	dep := ecs.NewDependent(lt)
	dep.Release()

	// Going below zero through the raw counter is a programming error.
	assert.Panics(t, func() { lt.DecDep() })
}

func TestOwnedDestroysItsHandle(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewDebugLifetime("owned")
	owned := ecs.NewOwned(lt)
	assert.True(t, owned.Get().IsPossiblyAlive())

	owned.Destroy()
	assert.True(t, lt.IsCondemned())

	// A second destroy of the wrapper is absorbed.
	owned.Destroy()
	trap.requireNoErrors(t)
}

func TestOwnedDefuseHandsOffOwnership(t *testing.T) {
	trap := installLogTrap(t)

	lt := ecs.NewDebugLifetime("defused")
	owned := ecs.NewOwned(lt)
	handed := owned.Defuse()

	owned.Destroy()
	assert.True(t, handed.IsPossiblyAlive())

	handed.Destroy()
	trap.requireNoErrors(t)
}
