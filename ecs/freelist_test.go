package ecs_test

import (
	"testing"

	"github.com/plus3/gecs/ecs"
	"github.com/stretchr/testify/assert"
)

func TestFreeListReusesLowestFreedSlot(t *testing.T) {
	var list ecs.FreeList[string]

	assert.Equal(t, uint32(0), list.Alloc("a"))
	assert.Equal(t, uint32(1), list.Alloc("b"))
	assert.Equal(t, uint32(2), list.Alloc("c"))
	assert.Equal(t, 3, list.Len())

	assert.Equal(t, "b", list.Dealloc(1))
	assert.Equal(t, 2, list.Len())

	// Freed slots are handed out again before the list grows.
	assert.Equal(t, uint32(1), list.Alloc("b2"))
	assert.Equal(t, uint32(3), list.Alloc("d"))

	value, ok := list.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "b2", value)

	_, ok = list.Get(99)
	assert.False(t, ok)
}

func TestFreeListGetFreedSlot(t *testing.T) {
	var list ecs.FreeList[int]
	list.Alloc(7)
	list.Dealloc(0)

	_, ok := list.Get(0)
	assert.False(t, ok)
	assert.Equal(t, 0, list.Len())
	assert.Equal(t, 1, list.Cap())
}

func TestFreeListAllSkipsFreed(t *testing.T) {
	var list ecs.FreeList[int]
	for i := 0; i < 5; i++ {
		list.Alloc(i * 10)
	}
	list.Dealloc(1)
	list.Dealloc(3)

	var slots []uint32
	var values []int
	for slot, value := range list.All() {
		slots = append(slots, slot)
		values = append(values, value)
	}

	assert.Equal(t, []uint32{0, 2, 4}, slots)
	assert.Equal(t, []int{0, 20, 40}, values)
}
