package ecs

import "iter"

// EntityDestroyEvent marks an entity for component cleanup and despawn.
type EntityDestroyEvent struct{}

// DestroyQueue collects entities awaiting destruction. Despawning does not
// touch component storages, so a destroy queue (or equivalent caller logic)
// is how components get cleaned up before the entity dies.
type DestroyQueue = EventQueue[EntityDestroyEvent]

// EventQueue buffers per-entity events grouped by archetype. Queued events
// hold dependents on both the archetype and the entity, so an event that
// outlives its target shows up in the dependency accounting.
type EventQueue[E any] struct {
	runs                       *ArchetypeMap[*eventRun[E]]
	total                      int
	maybeRecursivelyDispatched bool
}

type eventRun[E any] struct {
	events []queuedEvent[E]
}

type queuedEvent[E any] struct {
	slot     uint32
	lifetime *Dependent[DebugLifetime]
	event    E
}

// NewEventQueue creates an empty queue.
func NewEventQueue[E any]() *EventQueue[E] {
	return &EventQueue[E]{runs: NewArchetypeMap[*eventRun[E]]()}
}

// Push queues an event for the target entity.
func (q *EventQueue[E]) Push(target Entity, event E) {
	run, ok := q.runs.Get(target.Archetype)
	if !ok {
		q.maybeRecursivelyDispatched = true
		run = &eventRun[E]{}
		q.runs.Put(target.Archetype, run)
	}

	run.events = append(run.events, queuedEvent[E]{
		slot:     target.Slot,
		lifetime: NewDependent(target.Lifetime),
		event:    event,
	})
	q.total++
}

// FlushAll drains every queued event, yielding the reconstructed entity
// handle and its event. The queue is emptied before iteration begins, so
// handlers may push follow-up events while iterating.
func (q *EventQueue[E]) FlushAll() iter.Seq2[Entity, E] {
	var drained []flushedEvent[E]
	for archetype, run := range q.runs.All() {
		drained = appendFlushed(drained, archetype, run)
	}
	q.runs.Clear()
	q.total = 0

	return iterFlushed(drained)
}

// FlushIn drains only the events queued for one archetype.
func (q *EventQueue[E]) FlushIn(archetype ArchetypeID) iter.Seq2[Entity, E] {
	var drained []flushedEvent[E]
	if run, ok := q.runs.Delete(archetype); ok {
		drained = appendFlushed(drained, archetype, run)
		q.total -= len(run.events)
	}

	return iterFlushed(drained)
}

// MaybeRecursivelyDispatched reports (and resets) whether a push touched a
// new archetype since the last call. Dispatch loops use it to decide
// whether another flush pass is needed.
func (q *EventQueue[E]) MaybeRecursivelyDispatched() bool {
	was := q.maybeRecursivelyDispatched
	q.maybeRecursivelyDispatched = false
	return was
}

// Len returns the total number of queued events.
func (q *EventQueue[E]) Len() int {
	return q.total
}

// IsEmpty reports whether no events are queued.
func (q *EventQueue[E]) IsEmpty() bool {
	return q.total == 0
}

type flushedEvent[E any] struct {
	entity Entity
	event  E
}

func appendFlushed[E any](drained []flushedEvent[E], archetype ArchetypeID, run *eventRun[E]) []flushedEvent[E] {
	for _, queued := range run.events {
		drained = append(drained, flushedEvent[E]{
			entity: Entity{
				Lifetime:  queued.lifetime.Release(),
				Archetype: archetype,
				Slot:      queued.slot,
			},
			event: queued.event,
		})
	}
	return drained
}

func iterFlushed[E any](drained []flushedEvent[E]) iter.Seq2[Entity, E] {
	return func(yield func(Entity, E) bool) {
		for _, f := range drained {
			if !yield(f.entity, f.event) {
				return
			}
		}
	}
}
