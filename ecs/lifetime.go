package ecs

import (
	"fmt"
	"math"
	"sync"
)

// slotData is the shared record behind one or more Lifetime handles. The
// generation only ever increases; a handle is alive exactly while its
// captured generation matches the slot's current one.
type slotData struct {
	mu       sync.Mutex
	gen      uint64
	deps     int
	currName string
	deadName string
}

// Lifetime is a generation-counted liveness handle. Two Lifetimes are equal
// (==) iff they reference the same slot and the same generation. The zero
// Lifetime is permanently condemned.
type Lifetime struct {
	slot *slotData
	gen  uint64
}

// NewLifetime allocates (or reuses) a slot and returns a live handle named
// for diagnostics. The name shows up in every misuse report involving the
// handle, so spend a few characters on it.
func NewLifetime(name string) Lifetime {
	slot := acquireSlot()
	slot.mu.Lock()
	slot.currName = name
	gen := slot.gen
	slot.mu.Unlock()

	return Lifetime{slot: slot, gen: gen}
}

// IsAlive reports whether the handle's captured generation is still the
// slot's current generation.
func (l Lifetime) IsAlive() bool {
	if l.slot == nil {
		return false
	}
	l.slot.mu.Lock()
	defer l.slot.mu.Unlock()
	return l.gen == l.slot.gen
}

// IsCondemned reports whether the lifetime has been destroyed.
func (l Lifetime) IsCondemned() bool {
	return !l.IsAlive()
}

// TryIncDep increments the dependency counter, reporting false if the
// lifetime is already dead.
func (l Lifetime) TryIncDep() bool {
	if l.slot == nil {
		return false
	}
	l.slot.mu.Lock()
	defer l.slot.mu.Unlock()

	if l.gen != l.slot.gen {
		return false
	}
	if l.slot.deps == math.MaxInt {
		panic(fmt.Sprintf("marked too many dependencies on lifetime %q", l.slot.currName))
	}
	l.slot.deps++
	return true
}

// IncDep increments the dependency counter. Incrementing a dead lifetime is
// a logged no-op rather than an error return: many call sites cannot avoid
// racing a despawn and should not have to branch on it.
func (l Lifetime) IncDep() {
	if !l.TryIncDep() {
		logSink().Error("incremented the dependency counter of a dead lifetime",
			"lifetime", l.String())
	}
}

// DecDep decrements the dependency counter. Decrementing below zero is a
// programming error and panics. Decrements on a dead lifetime are ignored to
// reduce spam; the destroy path already reported the mismatch once.
func (l Lifetime) DecDep() {
	if l.slot == nil {
		return
	}
	l.slot.mu.Lock()
	defer l.slot.mu.Unlock()

	if l.gen != l.slot.gen {
		return
	}
	if l.slot.deps == 0 {
		panic(fmt.Sprintf(
			"decremented dependency counter of lifetime %q more times than it was incremented",
			l.slot.currName))
	}
	l.slot.deps--
}

// TryDestroy condemns the lifetime, reporting false if it was already dead.
// Outstanding dependencies at destruction time are a consistency violation
// that is logged, not fatal: the dependents' accounting is a diagnostic aid,
// not the authority over destruction.
func (l Lifetime) TryDestroy() bool {
	if l.slot == nil {
		return false
	}
	l.slot.mu.Lock()

	if l.gen != l.slot.gen {
		l.slot.mu.Unlock()
		return false
	}

	if l.slot.deps > 0 {
		logSink().Error("destroyed a lifetime with outstanding dependencies",
			"lifetime", l.slot.currName,
			"dependencies", l.slot.deps)
	}

	l.slot.gen++
	l.slot.deps = 0
	l.slot.deadName = l.slot.currName
	l.slot.currName = ""

	// A slot whose generation hits the ceiling can never be told apart from
	// a recycled one, so it is leaked instead of pooled.
	if l.slot.gen == math.MaxUint64 {
		l.slot.mu.Unlock()
		logSink().Error("a lifetime slot exhausted its generation space and is being leaked",
			"lifetime", l.String())
		return true
	}

	l.slot.mu.Unlock()
	releaseSlot(l.slot)
	return true
}

// Destroy condemns the lifetime, logging if it was already destroyed.
// Double destroy is tolerated as a recoverable bug class.
func (l Lifetime) Destroy() {
	if !l.TryDestroy() {
		logSink().Error("destroyed an already-dead lifetime", "lifetime", l.String())
	}
}

// DependencyCount returns the number of outstanding dependents, or zero if
// the lifetime is dead.
func (l Lifetime) DependencyCount() int {
	if l.slot == nil {
		return 0
	}
	l.slot.mu.Lock()
	defer l.slot.mu.Unlock()
	if l.gen != l.slot.gen {
		return 0
	}
	return l.slot.deps
}

// Name returns the handle's diagnostic name. The name of the most recently
// destroyed generation remains readable; anything older is gone.
func (l Lifetime) Name() string {
	if l.slot == nil {
		return "<name unavailable>"
	}
	l.slot.mu.Lock()
	defer l.slot.mu.Unlock()
	return l.nameLocked()
}

func (l Lifetime) nameLocked() string {
	switch {
	case l.gen == l.slot.gen:
		if l.slot.currName == "" {
			return "<name unspecified>"
		}
		return l.slot.currName
	case l.gen == l.slot.gen-1:
		if l.slot.deadName == "" {
			return "<name unspecified>"
		}
		return l.slot.deadName
	default:
		return "<name unavailable>"
	}
}

func (l Lifetime) String() string {
	if l.slot == nil {
		return "Lifetime(<nil>)"
	}
	l.slot.mu.Lock()
	name := l.nameLocked()
	alive := l.gen == l.slot.gen
	l.slot.mu.Unlock()
	return fmt.Sprintf("Lifetime(%s, alive=%t)", name, alive)
}

// AsDebugLifetime implements LifetimeHolder.
func (l Lifetime) AsDebugLifetime() DebugLifetime {
	return DebugLifetimeOf(l)
}
