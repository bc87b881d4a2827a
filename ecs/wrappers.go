package ecs

import (
	"runtime"
	"sync/atomic"
)

// LifetimeHolder is any handle that carries a (debug) lifetime: Lifetime and
// DebugLifetime themselves, plus ArchetypeID and Entity.
type LifetimeHolder interface {
	AsDebugLifetime() DebugLifetime
}

// DestroyableHolder is a LifetimeHolder that additionally owns the authority
// to destroy its lifetime.
type DestroyableHolder interface {
	LifetimeHolder
	Destroy()
}

// Dependent records that some structure holds a reference to a live handle,
// without owning its destruction. Construction increments the handle's
// dependency counter and Release decrements it, so "why is this still
// alive" questions have an answer in the destroy-time accounting.
//
// Go has no destructors, so release is explicit. A GC cleanup logs
// dependents that were collected without Release; that is a diagnostic for
// leaked references, not a substitute for releasing them.
type Dependent[L LifetimeHolder] struct {
	handle   L
	released *atomic.Bool
}

// NewDependent registers a dependency on the handle's lifetime.
func NewDependent[L LifetimeHolder](handle L) *Dependent[L] {
	lt := handle.AsDebugLifetime()
	lt.IncDep()

	d := &Dependent[L]{handle: handle, released: &atomic.Bool{}}
	if LifetimeChecksEnabled {
		released := d.released
		runtime.AddCleanup(d, func(lt DebugLifetime) {
			if !released.Load() {
				logSink().Error("a Dependent was garbage collected without being released",
					"lifetime", lt.Name())
			}
		}, lt)
	}
	return d
}

// Get returns the referenced handle.
func (d *Dependent[L]) Get() L {
	return d.handle
}

// Clone registers an additional dependency on the same handle.
func (d *Dependent[L]) Clone() *Dependent[L] {
	return NewDependent(d.handle)
}

// Release drops the dependency and returns the handle. Releasing twice is a
// logged no-op.
func (d *Dependent[L]) Release() L {
	if d.released.Swap(true) {
		logSink().Error("released an already-released Dependent",
			"lifetime", d.handle.AsDebugLifetime().Name())
		return d.handle
	}
	d.handle.AsDebugLifetime().DecDep()
	return d.handle
}

// Owned is the authoritative counterpart to Dependent: it owns destruction
// of the wrapped handle. Destroy must be called exactly once unless the
// handle is handed off with Defuse.
type Owned[L DestroyableHolder] struct {
	handle  L
	defused bool
}

// NewOwned takes ownership of the handle.
func NewOwned[L DestroyableHolder](handle L) *Owned[L] {
	return &Owned[L]{handle: handle}
}

// Get returns the owned handle without affecting ownership.
func (o *Owned[L]) Get() L {
	return o.handle
}

// Defuse relinquishes ownership and returns the handle; a later Destroy on
// the wrapper becomes a no-op.
func (o *Owned[L]) Defuse() L {
	o.defused = true
	return o.handle
}

// Destroy destroys the owned handle unless ownership was defused.
func (o *Owned[L]) Destroy() {
	if o.defused {
		return
	}
	o.defused = true
	o.handle.Destroy()
}
