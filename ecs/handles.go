package ecs

import (
	"fmt"
	"iter"

	"github.com/kamstrup/intmap"
)

// ArchetypeID identifies a logical grouping of entities sharing a component
// shape. The raw ID is random and collision-checked rather than sequential,
// so a stale ID is loud instead of silently aliasing a live archetype; the
// lifetime, not the raw ID, is what call sites must compare for identity.
type ArchetypeID struct {
	Lifetime DebugLifetime
	ID       uint32
}

// IsPossiblyAlive reports whether the archetype's lifetime is alive.
func (a ArchetypeID) IsPossiblyAlive() bool {
	return a.Lifetime.IsPossiblyAlive()
}

// IsCondemned reports whether the archetype has been destroyed.
func (a ArchetypeID) IsCondemned() bool {
	return a.Lifetime.IsCondemned()
}

// AsDebugLifetime implements LifetimeHolder.
func (a ArchetypeID) AsDebugLifetime() DebugLifetime {
	return a.Lifetime
}

func (a ArchetypeID) String() string {
	return fmt.Sprintf("ArchetypeID(0x%X, %s)", a.ID, a.Lifetime.Name())
}

// Entity identifies one member of an archetype. Entities are never valid
// outside their declared archetype; crossing-archetype use is a logged
// error, never corruption.
type Entity struct {
	Lifetime  DebugLifetime
	Archetype ArchetypeID
	Slot      uint32
}

// Key packs the archetype ID and slot into a single integer suitable for
// int-keyed maps.
func (e Entity) Key() uint64 {
	return uint64(e.Archetype.ID)<<32 | uint64(e.Slot)
}

// IsPossiblyAlive reports whether the entity's lifetime is alive.
func (e Entity) IsPossiblyAlive() bool {
	return e.Lifetime.IsPossiblyAlive()
}

// IsCondemned reports whether the entity has been despawned.
func (e Entity) IsCondemned() bool {
	return e.Lifetime.IsCondemned()
}

// AsDebugLifetime implements LifetimeHolder.
func (e Entity) AsDebugLifetime() DebugLifetime {
	return e.Lifetime
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%s, archetype=0x%X, slot=%d)", e.Lifetime.Name(), e.Archetype.ID, e.Slot)
}

// ArchetypeMap is an int-keyed map from archetypes to values. Each entry
// holds a Dependent on its archetype so that long-lived indexes participate
// in the dependency accounting. Iteration order is insertion order.
type ArchetypeMap[V any] struct {
	m    *intmap.Map[uint32, mapEntry[ArchetypeID, V]]
	keys []uint32
}

type mapEntry[L LifetimeHolder, V any] struct {
	dep   *Dependent[L]
	value V
}

// NewArchetypeMap creates an empty ArchetypeMap.
func NewArchetypeMap[V any]() *ArchetypeMap[V] {
	return &ArchetypeMap[V]{m: intmap.New[uint32, mapEntry[ArchetypeID, V]](8)}
}

// Put stores a value for the archetype, replacing any existing entry.
func (am *ArchetypeMap[V]) Put(arch ArchetypeID, value V) {
	if prev, ok := am.m.Get(arch.ID); ok {
		prev.dep.Release()
	} else {
		am.keys = append(am.keys, arch.ID)
	}
	am.m.Put(arch.ID, mapEntry[ArchetypeID, V]{dep: NewDependent(arch), value: value})
}

// Get returns the value stored for the archetype.
func (am *ArchetypeMap[V]) Get(arch ArchetypeID) (V, bool) {
	entry, ok := am.m.Get(arch.ID)
	return entry.value, ok
}

// Delete removes the archetype's entry, releasing its dependency.
func (am *ArchetypeMap[V]) Delete(arch ArchetypeID) (V, bool) {
	entry, ok := am.m.Get(arch.ID)
	if !ok {
		var zero V
		return zero, false
	}
	entry.dep.Release()
	am.m.Del(arch.ID)
	am.keys = deleteKey(am.keys, arch.ID)
	return entry.value, true
}

// Len returns the number of entries.
func (am *ArchetypeMap[V]) Len() int {
	return len(am.keys)
}

// All iterates over the entries in insertion order. The yielded ArchetypeID
// is the one captured when the entry was stored.
func (am *ArchetypeMap[V]) All() iter.Seq2[ArchetypeID, V] {
	return func(yield func(ArchetypeID, V) bool) {
		for _, key := range am.keys {
			entry, ok := am.m.Get(key)
			if !ok {
				continue
			}
			if !yield(entry.dep.Get(), entry.value) {
				return
			}
		}
	}
}

// Clear removes every entry, releasing all dependencies.
func (am *ArchetypeMap[V]) Clear() {
	for _, key := range am.keys {
		if entry, ok := am.m.Get(key); ok {
			entry.dep.Release()
		}
	}
	am.m.Clear()
	am.keys = am.keys[:0]
}

// EntityMap is an int-keyed map from entities to values, with the same
// dependency accounting as ArchetypeMap.
type EntityMap[V any] struct {
	m    *intmap.Map[uint64, mapEntry[Entity, V]]
	keys []uint64
}

// NewEntityMap creates an empty EntityMap.
func NewEntityMap[V any]() *EntityMap[V] {
	return &EntityMap[V]{m: intmap.New[uint64, mapEntry[Entity, V]](16)}
}

// Put stores a value for the entity, replacing any existing entry.
func (em *EntityMap[V]) Put(entity Entity, value V) {
	if prev, ok := em.m.Get(entity.Key()); ok {
		prev.dep.Release()
	} else {
		em.keys = append(em.keys, entity.Key())
	}
	em.m.Put(entity.Key(), mapEntry[Entity, V]{dep: NewDependent(entity), value: value})
}

// Get returns the value stored for the entity.
func (em *EntityMap[V]) Get(entity Entity) (V, bool) {
	entry, ok := em.m.Get(entity.Key())
	return entry.value, ok
}

// Delete removes the entity's entry, releasing its dependency.
func (em *EntityMap[V]) Delete(entity Entity) (V, bool) {
	entry, ok := em.m.Get(entity.Key())
	if !ok {
		var zero V
		return zero, false
	}
	entry.dep.Release()
	em.m.Del(entity.Key())
	em.keys = deleteKey(em.keys, entity.Key())
	return entry.value, true
}

// Len returns the number of entries.
func (em *EntityMap[V]) Len() int {
	return len(em.keys)
}

// All iterates over the entries in insertion order.
func (em *EntityMap[V]) All() iter.Seq2[Entity, V] {
	return func(yield func(Entity, V) bool) {
		for _, key := range em.keys {
			entry, ok := em.m.Get(key)
			if !ok {
				continue
			}
			if !yield(entry.dep.Get(), entry.value) {
				return
			}
		}
	}
}

// Clear removes every entry, releasing all dependencies.
func (em *EntityMap[V]) Clear() {
	for _, key := range em.keys {
		if entry, ok := em.m.Get(key); ok {
			entry.dep.Release()
		}
	}
	em.m.Clear()
	em.keys = em.keys[:0]
}

func deleteKey[K comparable](keys []K, key K) []K {
	for i, k := range keys {
		if k == key {
			return append(keys[:i], keys[i+1:]...)
		}
	}
	return keys
}
