//go:build ecs_unchecked

package ecs

// LifetimeChecksEnabled reports whether DebugLifetime carries a real
// Lifetime. This build compiles the wrapper down to a zero-sized
// always-alive stub, trading liveness diagnostics for zero overhead.
const LifetimeChecksEnabled = false

// DebugLifetime is a zero-sized stand-in for the tracked variant. The
// public API is identical; every check reports "alive" and every mutation
// is a no-op.
type DebugLifetime struct{}

// NewDebugLifetime returns the stub. No slot is allocated.
func NewDebugLifetime(name string) DebugLifetime {
	_ = name
	return DebugLifetime{}
}

// DebugLifetimeOf discards the lifetime and returns the stub.
func DebugLifetimeOf(lt Lifetime) DebugLifetime {
	_ = lt
	return DebugLifetime{}
}

// IsPossiblyAlive always reports true in unchecked builds.
func (d DebugLifetime) IsPossiblyAlive() bool { return true }

// IsCondemned always reports false in unchecked builds.
func (d DebugLifetime) IsCondemned() bool { return false }

// IncDep is a no-op in unchecked builds.
func (d DebugLifetime) IncDep() {}

// DecDep is a no-op in unchecked builds.
func (d DebugLifetime) DecDep() {}

// Destroy is a no-op in unchecked builds.
func (d DebugLifetime) Destroy() {}

// Name is unavailable in unchecked builds.
func (d DebugLifetime) Name() string { return "<name unavailable>" }

// Raw reports false: no lifetime exists in unchecked builds.
func (d DebugLifetime) Raw() (Lifetime, bool) {
	return Lifetime{}, false
}

func (d DebugLifetime) String() string { return "Lifetime(<unchecked>)" }

// AsDebugLifetime implements LifetimeHolder.
func (d DebugLifetime) AsDebugLifetime() DebugLifetime {
	return d
}
