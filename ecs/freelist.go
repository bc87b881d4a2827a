package ecs

import (
	"iter"
	"math"
	"math/bits"
)

// bitSet is a plain word-packed set of uint32 indices. first() returns the
// lowest member, which is what gives slot allocation its
// lowest-free-index-first behavior.
type bitSet struct {
	words []uint64
}

func (b *bitSet) add(i uint32) {
	word := int(i / 64)
	for word >= len(b.words) {
		b.words = append(b.words, 0)
	}
	b.words[word] |= 1 << (i % 64)
}

func (b *bitSet) remove(i uint32) {
	word := int(i / 64)
	if word < len(b.words) {
		b.words[word] &^= 1 << (i % 64)
	}
}

func (b *bitSet) has(i uint32) bool {
	word := int(i / 64)
	return word < len(b.words) && b.words[word]&(1<<(i%64)) != 0
}

func (b *bitSet) first() (uint32, bool) {
	for w, word := range b.words {
		if word != 0 {
			return uint32(w*64 + bits.TrailingZeros64(word)), true
		}
	}
	return 0, false
}

func (b *bitSet) count() int {
	n := 0
	for _, word := range b.words {
		n += bits.OnesCount64(word)
	}
	return n
}

// FreeList hands out dense uint32 slots, preferring the lowest freed slot
// before growing. Freed values are zeroed so the list never pins them.
type FreeList[T any] struct {
	slots []T
	free  bitSet
	freed int
}

// Alloc stores the value in some previously freed slot, else grows. It
// panics once slot indices are exhausted; resource exhaustion here is an
// explicit hard failure, not wraparound.
func (f *FreeList[T]) Alloc(value T) uint32 {
	if slot, ok := f.free.first(); ok {
		f.free.remove(slot)
		f.freed--
		f.slots[slot] = value
		return slot
	}

	if len(f.slots) >= math.MaxUint32 {
		panic("free list slot indices exhausted")
	}
	slot := uint32(len(f.slots))
	f.slots = append(f.slots, value)
	return slot
}

// Dealloc frees the slot and returns the value it held.
func (f *FreeList[T]) Dealloc(slot uint32) T {
	value := f.slots[slot]
	var zero T
	f.slots[slot] = zero
	f.free.add(slot)
	f.freed++
	return value
}

// Get returns the value at the slot; ok is false for freed or out-of-range
// slots.
func (f *FreeList[T]) Get(slot uint32) (T, bool) {
	if int(slot) >= len(f.slots) || f.free.has(slot) {
		var zero T
		return zero, false
	}
	return f.slots[slot], true
}

// Len returns the number of occupied slots.
func (f *FreeList[T]) Len() int {
	return len(f.slots) - f.freed
}

// Cap returns the total number of slots, occupied or freed.
func (f *FreeList[T]) Cap() int {
	return len(f.slots)
}

// All iterates over occupied slots in ascending order.
func (f *FreeList[T]) All() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		for i := range f.slots {
			slot := uint32(i)
			if f.free.has(slot) {
				continue
			}
			if !yield(slot, f.slots[i]) {
				return
			}
		}
	}
}
