package ecs

import "iter"

// Archetype owns slot allocation for a named group of entities sharing a
// component shape. The type parameter M is a compile-time marker tying the
// archetype to the bundle its rows decompose into; it never affects the
// runtime representation, which is why Retag can re-tag without copying.
//
// An archetype knows nothing about which component storages hold data for
// its entities: despawning only condemns the entity's lifetime and frees the
// slot, component cleanup is the caller's responsibility.
type Archetype[M any] struct {
	s *archetypeState
}

// archetypeState is shared between all marker re-taggings of one archetype.
type archetypeState struct {
	id        uint32
	lifetime  *Owned[DebugLifetime]
	slots     FreeList[*Owned[DebugLifetime]]
	destroyed bool
}

// NewArchetype allocates a fresh collision-checked archetype ID and a fresh
// lifetime.
func NewArchetype[M any](name string) Archetype[M] {
	return Archetype[M]{s: &archetypeState{
		id:       allocArchetypeID(),
		lifetime: NewOwned(NewDebugLifetime(name)),
	}}
}

// Retag reinterprets the archetype under a different marker type without
// copying any state. Both values alias the same archetype.
func Retag[N, M any](a Archetype[M]) Archetype[N] {
	return Archetype[N]{s: a.s}
}

// ID returns the archetype's handle.
func (a Archetype[M]) ID() ArchetypeID {
	return ArchetypeID{Lifetime: a.s.lifetime.Get(), ID: a.s.id}
}

// Name returns the archetype's diagnostic name.
func (a Archetype[M]) Name() string {
	return a.s.lifetime.Get().Name()
}

// Len returns the number of live entities.
func (a Archetype[M]) Len() int {
	return a.s.slots.Len()
}

// Cap returns the slot table size, including freed slots.
func (a Archetype[M]) Cap() int {
	return a.s.slots.Cap()
}

// Spawn allocates a per-entity lifetime and the lowest free slot, growing
// the slot table if none is free.
func (a Archetype[M]) Spawn(name string) Entity {
	lifetime := NewDebugLifetime(name)
	slot := a.s.slots.Alloc(NewOwned(lifetime))

	return Entity{
		Lifetime:  lifetime,
		Archetype: a.ID(),
		Slot:      slot,
	}
}

// Despawn condemns the entity's lifetime and returns its slot to the free
// set. Cross-archetype handles and already-dead entities are logged no-ops;
// neither may corrupt state.
func (a Archetype[M]) Despawn(entity Entity) {
	if entity.Archetype.ID != a.s.id {
		logSink().Error("despawned an entity from a non-owning archetype",
			"entity", entity.String(),
			"archetype", a.ID().String())
		return
	}

	if entity.Lifetime.IsCondemned() {
		logSink().Error("despawned an already-dead entity",
			"entity", entity.String(),
			"archetype", a.ID().String())
		return
	}

	owned, ok := a.s.slots.Get(entity.Slot)
	if !ok {
		logSink().Error("despawned an entity whose slot is already free",
			"entity", entity.String(),
			"archetype", a.ID().String())
		return
	}

	owned.Destroy()
	a.s.slots.Dealloc(entity.Slot)
}

// Entities iterates over the currently live entities in slot order.
func (a Archetype[M]) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		id := a.ID()
		for slot, owned := range a.s.slots.All() {
			entity := Entity{
				Lifetime:  owned.Get(),
				Archetype: id,
				Slot:      slot,
			}
			if !yield(entity) {
				return
			}
		}
	}
}

// Destroy condemns every remaining entity lifetime and the archetype's own
// lifetime, then returns the raw ID to the shared pool for reissue. Double
// destroy is a logged no-op.
func (a Archetype[M]) Destroy() {
	if a.s.destroyed {
		logSink().Error("destroyed an already-destroyed archetype",
			"archetype", a.ID().String())
		return
	}
	a.s.destroyed = true

	for slot, owned := range a.s.slots.All() {
		owned.Destroy()
		a.s.slots.Dealloc(slot)
	}

	a.s.lifetime.Destroy()
	deallocArchetypeID(a.s.id)
}
