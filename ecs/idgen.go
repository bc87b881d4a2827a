package ecs

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/kamstrup/intmap"
)

// randIDGen issues random nonzero uint32 IDs, collision-checked against the
// currently live set. Below half capacity a random probe succeeds almost
// immediately, so the naive loop beats any cleverer structure both on memory
// and on bug surface.
type randIDGen struct {
	live *intmap.Map[uint32, struct{}]
	size int
}

func (g *randIDGen) alloc() uint32 {
	if g.live == nil {
		g.live = intmap.New[uint32, struct{}](64)
	}
	if g.size >= math.MaxUint32/2 {
		panic("allocated too many archetype IDs")
	}

	for {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, taken := g.live.Get(id); taken {
			continue
		}
		g.live.Put(id, struct{}{})
		g.size++
		return id
	}
}

func (g *randIDGen) dealloc(id uint32) {
	if g.live == nil {
		return
	}
	if _, ok := g.live.Get(id); !ok {
		logSink().Error("deallocated an archetype ID that was not live", "id", id)
		return
	}
	g.live.Del(id)
	g.size--
}

// archIDs is the shared pool of archetype IDs. Destroying an archetype
// returns its raw ID for reissue; this is safe because identity checks go
// through the lifetime generation, never the raw ID alone.
var archIDs struct {
	mu  sync.Mutex
	gen randIDGen
}

func allocArchetypeID() uint32 {
	archIDs.mu.Lock()
	defer archIDs.mu.Unlock()
	return archIDs.gen.alloc()
}

func deallocArchetypeID(id uint32) {
	archIDs.mu.Lock()
	defer archIDs.mu.Unlock()
	archIDs.gen.dealloc(id)
}
