package ecs

import "sync"

// poolBlockSize is the number of lifetime slots carved out per allocation.
// Slots are handed out individually but allocated in blocks so that churny
// workloads don't hit the allocator once per lifetime.
const poolBlockSize = 1024

// slotPool is a global free list of lifetime slots. Slots returned here keep
// their bumped generation, which is what makes reuse safe: a stale handle
// compares its captured generation against the slot's current one.
var slotPool struct {
	mu     sync.Mutex
	free   []*slotData
	blocks int
}

func acquireSlot() *slotData {
	slotPool.mu.Lock()
	defer slotPool.mu.Unlock()

	if len(slotPool.free) == 0 {
		block := make([]slotData, poolBlockSize)
		for i := range block {
			block[i].gen = 1
			slotPool.free = append(slotPool.free, &block[i])
		}
		slotPool.blocks++
	}

	slot := slotPool.free[len(slotPool.free)-1]
	slotPool.free = slotPool.free[:len(slotPool.free)-1]
	return slot
}

func releaseSlot(slot *slotData) {
	slotPool.mu.Lock()
	defer slotPool.mu.Unlock()
	slotPool.free = append(slotPool.free, slot)
}

// PoolStats describes the current state of the lifetime slot pool.
type PoolStats struct {
	FreeSlots       int
	AllocatedBlocks int
}

// LifetimePoolStats returns a snapshot of the lifetime slot pool, intended
// for debug overlays and leak hunting.
func LifetimePoolStats() PoolStats {
	slotPool.mu.Lock()
	defer slotPool.mu.Unlock()
	return PoolStats{
		FreeSlots:       len(slotPool.free),
		AllocatedBlocks: slotPool.blocks,
	}
}
