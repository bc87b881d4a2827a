//go:build !ecs_unchecked

package ecs

// LifetimeChecksEnabled reports whether DebugLifetime carries a real
// Lifetime. Builds tagged `ecs_unchecked` compile the wrapper down to a
// zero-sized always-alive stub with the identical method set.
const LifetimeChecksEnabled = true

// DebugLifetime wraps a Lifetime for handles whose liveness tracking exists
// purely as a debugging aid. All checks degrade to log-and-continue; callers
// that need a hard answer should go through Raw.
type DebugLifetime struct {
	lt Lifetime
}

// NewDebugLifetime allocates a fresh tracked lifetime.
func NewDebugLifetime(name string) DebugLifetime {
	return DebugLifetime{lt: NewLifetime(name)}
}

// DebugLifetimeOf wraps an existing lifetime.
func DebugLifetimeOf(lt Lifetime) DebugLifetime {
	return DebugLifetime{lt: lt}
}

// IsPossiblyAlive reports whether the lifetime is alive. Unchecked builds
// always report true, hence "possibly".
func (d DebugLifetime) IsPossiblyAlive() bool {
	return d.lt.IsAlive()
}

// IsCondemned reports whether the lifetime is known to be dead.
func (d DebugLifetime) IsCondemned() bool {
	return !d.IsPossiblyAlive()
}

// IncDep forwards to Lifetime.IncDep.
func (d DebugLifetime) IncDep() {
	d.lt.IncDep()
}

// DecDep forwards to Lifetime.DecDep.
func (d DebugLifetime) DecDep() {
	d.lt.DecDep()
}

// Destroy forwards to Lifetime.Destroy.
func (d DebugLifetime) Destroy() {
	d.lt.Destroy()
}

// Name returns the diagnostic name of the underlying lifetime.
func (d DebugLifetime) Name() string {
	return d.lt.Name()
}

// Raw returns the underlying Lifetime. The second return is false in
// unchecked builds, where no lifetime exists.
func (d DebugLifetime) Raw() (Lifetime, bool) {
	return d.lt, true
}

func (d DebugLifetime) String() string {
	return d.lt.String()
}

// AsDebugLifetime implements LifetimeHolder.
func (d DebugLifetime) AsDebugLifetime() DebugLifetime {
	return d
}
