package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

// runBlockSize is the number of slots carved out per storage run block.
// Blocks are allocated individually, so component addresses stay stable for
// as long as the component is present.
const runBlockSize = 64

// Storage owns every component value of type T, mapped from archetype to a
// per-archetype run. An entity never owns its components, it only indexes
// them.
type Storage[T any] struct {
	runs    *intmap.Map[uint32, *StorageRun[T]]
	runKeys []uint32
}

// NewStorage creates an empty storage for components of type T.
func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{runs: intmap.New[uint32, *StorageRun[T]](8)}
}

// GetRun returns the archetype's run or nil. Requesting the run of a
// condemned archetype is logged but still answered, which permits draining
// components from a dying archetype.
func (s *Storage[T]) GetRun(archetype ArchetypeID) *StorageRun[T] {
	if archetype.IsCondemned() {
		logSink().Error("acquired the storage run of a dead archetype",
			"component", typeName[T](),
			"archetype", archetype.String())
	}
	run, _ := s.runs.Get(archetype.ID)
	return run
}

// GetOrCreateRun returns the archetype's run, creating an empty one on
// first access.
func (s *Storage[T]) GetOrCreateRun(archetype ArchetypeID) *StorageRun[T] {
	if archetype.IsCondemned() {
		logSink().Error("acquired the storage run of a dead archetype",
			"component", typeName[T](),
			"archetype", archetype.String())
	}

	run, ok := s.runs.Get(archetype.ID)
	if !ok {
		run = newStorageRun[T](archetype)
		s.runs.Put(archetype.ID, run)
		s.runKeys = append(s.runKeys, archetype.ID)
	}
	return run
}

// Insert stores the value for the entity, replacing any existing component
// unconditionally and returning it.
func (s *Storage[T]) Insert(entity Entity, value T) (prev T, replaced bool) {
	prev, replaced, _ = s.GetOrCreateRun(entity.Archetype).insert(entity, value)
	return prev, replaced
}

// InsertPtr stores the value for the entity like Insert, returning a pointer
// to the stored component instead of the previous value.
func (s *Storage[T]) InsertPtr(entity Entity, value T) *T {
	_, _, ptr := s.GetOrCreateRun(entity.Archetype).insert(entity, value)
	return ptr
}

// Add stores the value for the entity and returns a pointer to the stored
// component. Unlike Insert it warns when a component already existed: Add
// implies "this is new", and a silent replacement is likely a misuse.
func (s *Storage[T]) Add(entity Entity, value T) *T {
	run := s.GetOrCreateRun(entity.Archetype)

	if LifetimeChecksEnabled && run.Has(entity) {
		logSink().Warn("added a component to an entity that already had it; use Insert to replace silently",
			"component", typeName[T](),
			"entity", entity.String())
	}

	_, _, ptr := run.insert(entity, value)
	return ptr
}

// TryRemove removes and returns the entity's component if present. When the
// removal empties the run, the run is dropped from the storage.
func (s *Storage[T]) TryRemove(entity Entity) (T, bool) {
	if entity.IsCondemned() {
		logSink().Error("removed a component from an already-dead entity; remove components before despawning",
			"component", typeName[T](),
			"entity", entity.String())
	}

	run, ok := s.runs.Get(entity.Archetype.ID)
	if !ok {
		var zero T
		return zero, false
	}

	value, removed := run.remove(entity.Slot)
	if removed && run.Len() == 0 {
		s.runs.Del(entity.Archetype.ID)
		s.runKeys = deleteKey(s.runKeys, entity.Archetype.ID)
	}
	return value, removed
}

// TryRemoveMany removes the component from each entity, ignoring entities
// that do not have one.
func (s *Storage[T]) TryRemoveMany(entities iter.Seq[Entity]) {
	for entity := range entities {
		s.TryRemove(entity)
	}
}

// Remove removes the entity's component, warning when there was nothing to
// remove. Use TryRemove to branch instead.
func (s *Storage[T]) Remove(entity Entity) {
	if _, removed := s.TryRemove(entity); !removed && LifetimeChecksEnabled {
		logSink().Warn("removed a component from an entity that did not have it; use TryRemove to ignore",
			"component", typeName[T](),
			"entity", entity.String())
	}
}

// Get returns a pointer to the entity's component, or nil. Fetching through
// a condemned entity is logged but the (possibly stale) value is still
// returned; callers needing strict safety must check liveness first.
func (s *Storage[T]) Get(entity Entity) *T {
	if entity.IsCondemned() {
		logSink().Error("fetched a component of a dead entity",
			"component", typeName[T](),
			"entity", entity.String())
	}

	run, ok := s.runs.Get(entity.Archetype.ID)
	if !ok {
		return nil
	}
	return run.GetBySlot(entity.Slot)
}

// Has reports whether the entity has a component in this storage.
func (s *Storage[T]) Has(entity Entity) bool {
	run, ok := s.runs.Get(entity.Archetype.ID)
	return ok && run.GetBySlot(entity.Slot) != nil
}

// MustGet returns a pointer to the entity's component, panicking with the
// component type and entity when it is absent. This is the "I assert this
// exists" path; use Get to branch.
func (s *Storage[T]) MustGet(entity Entity) *T {
	value := s.Get(entity)
	if value == nil {
		panic(fmt.Sprintf("no component of type %s for %s", typeName[T](), entity))
	}
	return value
}

// Len returns the total number of stored components across all runs.
func (s *Storage[T]) Len() int {
	total := 0
	for _, key := range s.runKeys {
		if run, ok := s.runs.Get(key); ok {
			total += run.Len()
		}
	}
	return total
}

// Runs iterates over the storage's runs.
func (s *Storage[T]) Runs() iter.Seq[*StorageRun[T]] {
	return func(yield func(*StorageRun[T]) bool) {
		for _, key := range s.runKeys {
			run, ok := s.runs.Get(key)
			if !ok {
				continue
			}
			if !yield(run) {
				return
			}
		}
	}
}

// QueryIn iterates over the components stored for one archetype, yielding
// the reconstructed entity handle and a pointer to its component.
func (s *Storage[T]) QueryIn(archetype ArchetypeID) iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		run := s.GetRun(archetype)
		if run == nil {
			return
		}
		for entity, ptr := range run.All() {
			if !yield(entity, ptr) {
				return
			}
		}
	}
}

// Clear drops every run, releasing all slot dependencies.
func (s *Storage[T]) Clear() {
	for _, key := range s.runKeys {
		if run, ok := s.runs.Get(key); ok {
			run.clear()
		}
	}
	s.runs.Clear()
	s.runKeys = s.runKeys[:0]
}

// storageSlot is one position in a run: Empty, or Full with the value and a
// Dependent on the owning entity's lifetime. The dependent is what makes
// "component survived its entity" observable as a dependency-count mismatch
// instead of a silent use-after-free.
type storageSlot[T any] struct {
	lifetime *Dependent[DebugLifetime]
	value    T
	full     bool
}

// StorageRun is the dense per-archetype slot array backing a Storage,
// indexed by entity slot.
type StorageRun[T any] struct {
	archetype ArchetypeID
	blocks    []*[runBlockSize]storageSlot[T]
	length    uint32 // one past the highest occupied slot
	occupied  int
}

func newStorageRun[T any](archetype ArchetypeID) *StorageRun[T] {
	return &StorageRun[T]{archetype: archetype}
}

// Archetype returns the archetype this run stores components for.
func (r *StorageRun[T]) Archetype() ArchetypeID {
	return r.archetype
}

// Len returns the number of occupied slots.
func (r *StorageRun[T]) Len() int {
	return r.occupied
}

// MaxSlot returns one past the highest occupied slot index.
func (r *StorageRun[T]) MaxSlot() uint32 {
	return r.length
}

func (r *StorageRun[T]) slotAt(idx uint32) *storageSlot[T] {
	block := int(idx / runBlockSize)
	if block >= len(r.blocks) || r.blocks[block] == nil {
		return nil
	}
	return &r.blocks[block][idx%runBlockSize]
}

func (r *StorageRun[T]) ensureSlot(idx uint32) *storageSlot[T] {
	block := int(idx / runBlockSize)
	for block >= len(r.blocks) {
		r.blocks = append(r.blocks, nil)
	}
	if r.blocks[block] == nil {
		r.blocks[block] = new([runBlockSize]storageSlot[T])
	}
	return &r.blocks[block][idx%runBlockSize]
}

func (r *StorageRun[T]) insert(entity Entity, value T) (prev T, replaced bool, ptr *T) {
	if entity.Archetype.ID != r.archetype.ID {
		logSink().Error("inserted an entity from a different archetype into a storage run",
			"component", typeName[T](),
			"entity", entity.String(),
			"run", r.archetype.String())
	}
	if entity.Lifetime.IsCondemned() {
		logSink().Error("attached a component to a dead entity",
			"component", typeName[T](),
			"entity", entity.String())
	}

	slot := r.ensureSlot(entity.Slot)
	if slot.full {
		prev = slot.value
		replaced = true
		slot.lifetime.Release()
	} else {
		r.occupied++
	}

	slot.lifetime = NewDependent(entity.Lifetime)
	slot.value = value
	slot.full = true

	if entity.Slot+1 > r.length {
		r.length = entity.Slot + 1
	}
	return prev, replaced, &slot.value
}

func (r *StorageRun[T]) remove(slotIdx uint32) (T, bool) {
	slot := r.slotAt(slotIdx)
	if slot == nil || !slot.full {
		var zero T
		return zero, false
	}

	slot.lifetime.Release()
	value := slot.value
	*slot = storageSlot[T]{}
	r.occupied--

	// Trim trailing empties so add/remove churn at growing slot indices
	// doesn't leave the run permanently long.
	for r.length > 0 {
		tail := r.slotAt(r.length - 1)
		if tail != nil && tail.full {
			break
		}
		r.length--
	}
	liveBlocks := int((r.length + runBlockSize - 1) / runBlockSize)
	r.blocks = r.blocks[:liveBlocks]

	return value, true
}

func (r *StorageRun[T]) clear() {
	for idx := uint32(0); idx < r.length; idx++ {
		if slot := r.slotAt(idx); slot != nil && slot.full {
			slot.lifetime.Release()
			*slot = storageSlot[T]{}
		}
	}
	r.blocks = nil
	r.length = 0
	r.occupied = 0
}

// GetBySlot returns a pointer to the component at the slot index, or nil.
// A stored lifetime that is already condemned means the component outlived
// its entity; that is logged, and the stale value is still returned.
func (r *StorageRun[T]) GetBySlot(slotIdx uint32) *T {
	slot := r.slotAt(slotIdx)
	if slot == nil || !slot.full {
		return nil
	}
	if slot.lifetime.Get().IsCondemned() {
		logSink().Error("storage slot belongs to a dead entity",
			"component", typeName[T](),
			"slot", slotIdx,
			"entity", slot.lifetime.Get().Name())
	}
	return &slot.value
}

// Get returns a pointer to the entity's component, validating that the
// entity belongs to this run's archetype.
func (r *StorageRun[T]) Get(entity Entity) *T {
	if entity.Archetype.ID != r.archetype.ID {
		logSink().Error("fetched an entity from a different archetype out of a storage run",
			"component", typeName[T](),
			"entity", entity.String(),
			"run", r.archetype.String())
	}
	if entity.IsCondemned() {
		logSink().Error("fetched a component of a dead entity",
			"component", typeName[T](),
			"entity", entity.String())
	}
	return r.GetBySlot(entity.Slot)
}

// Has reports whether the entity has a component in this run.
func (r *StorageRun[T]) Has(entity Entity) bool {
	slot := r.slotAt(entity.Slot)
	return slot != nil && slot.full
}

// All iterates over occupied slots in ascending order, yielding the
// reconstructed entity handle and a pointer to the component.
func (r *StorageRun[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for idx := uint32(0); idx < r.length; idx++ {
			slot := r.slotAt(idx)
			if slot == nil || !slot.full {
				continue
			}
			entity := Entity{
				Lifetime:  slot.lifetime.Get(),
				Archetype: r.archetype,
				Slot:      idx,
			}
			if !yield(entity, &slot.value) {
				return
			}
		}
	}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
