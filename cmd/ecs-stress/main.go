package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/plus3/gecs/ecs"
)

type position struct {
	X, Y float32
}

type velocity struct {
	DX, DY float32
}

type health struct {
	Current, Max int
}

type world struct {
	archetypes []ecs.Archetype[any]
	entities   []ecs.Entity
	positions  *ecs.Storage[position]
	velocities *ecs.Storage[velocity]
	healths    *ecs.Storage[health]
	doomed     *ecs.DestroyQueue
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	archetypeCount := flag.Int("archetypes", 8, "The number of archetypes to spread entities over.")
	entityCount := flag.Int("entities", 10000, "The initial number of entities to create.")
	churn := flag.Int("churn", 100, "Entities despawned and respawned per update.")
	profileMode := flag.String("profile", "", "Enable profiling: cpu or mem.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	case "":
	default:
		log.Fatalf("unknown profile mode %q", *profileMode)
	}

	log.Println("Starting stress test...")

	w := &world{
		positions:  ecs.NewStorage[position](),
		velocities: ecs.NewStorage[velocity](),
		healths:    ecs.NewStorage[health](),
		doomed:     ecs.NewEventQueue[ecs.EntityDestroyEvent](),
	}
	for i := 0; i < *archetypeCount; i++ {
		w.archetypes = append(w.archetypes, ecs.NewArchetype[any](fmt.Sprintf("stress-%d", i)))
	}

	log.Printf("Populating %d archetypes with %d entities...\n", *archetypeCount, *entityCount)
	for i := 0; i < *entityCount; i++ {
		w.spawnRandom()
	}
	log.Println("Population complete.")

	report := NewReport(*duration, *archetypeCount, *entityCount, *churn, *gcPauseMetrics)
	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running churn loop for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			updateStart := time.Now()
			w.update(*churn)
			report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))
			totalUpdates++

			if totalUpdates%100 == 0 {
				w.audit()
			}
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.FinalEntities = len(w.entities)
	report.UpdateTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Churn loop finished.")
	w.teardown()

	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}

func (w *world) spawnRandom() {
	arch := w.archetypes[rand.IntN(len(w.archetypes))]
	entity := arch.Spawn("stress entity")

	if rand.IntN(2) == 0 {
		w.positions.Add(entity, position{X: rand.Float32(), Y: rand.Float32()})
	}
	if rand.IntN(2) == 0 {
		w.velocities.Add(entity, velocity{DX: rand.Float32(), DY: rand.Float32()})
	}
	if rand.IntN(2) == 0 {
		w.healths.Add(entity, health{Current: rand.IntN(100), Max: 100})
	}

	w.entities = append(w.entities, entity)
}

// update performs one simulated frame: walk every position run, queue a
// batch of entities for destruction, drain the queue, and respawn
// replacements.
func (w *world) update(churn int) {
	for _, arch := range w.archetypes {
		for _, pos := range w.positions.QueryIn(arch.ID()) {
			pos.X += 0.001
		}
	}

	for i := 0; i < churn && len(w.entities) > 0; i++ {
		idx := rand.IntN(len(w.entities))
		w.doomed.Push(w.entities[idx], ecs.EntityDestroyEvent{})
		w.entities[idx] = w.entities[len(w.entities)-1]
		w.entities = w.entities[:len(w.entities)-1]
	}

	for target := range w.doomed.FlushAll() {
		w.positions.TryRemove(target)
		w.velocities.TryRemove(target)
		w.healths.TryRemove(target)
		w.archetypeFor(target).Despawn(target)
	}

	for i := 0; i < churn; i++ {
		w.spawnRandom()
	}
}

// audit verifies that every tracked entity is still alive and every
// archetype's count matches what we think we have.
func (w *world) audit() {
	for _, entity := range w.entities {
		if entity.IsCondemned() {
			log.Fatalf("audit failed: tracked entity %s is dead", entity)
		}
	}

	total := 0
	for _, arch := range w.archetypes {
		total += arch.Len()
	}
	if total != len(w.entities) {
		log.Fatalf("audit failed: archetypes hold %d entities, tracker holds %d", total, len(w.entities))
	}
}

func (w *world) archetypeFor(entity ecs.Entity) ecs.Archetype[any] {
	for _, arch := range w.archetypes {
		if arch.ID().ID == entity.Archetype.ID {
			return arch
		}
	}
	panic(fmt.Sprintf("entity %s belongs to no known archetype", entity))
}

func (w *world) teardown() {
	w.positions.Clear()
	w.velocities.Clear()
	w.healths.Clear()
	for _, entity := range w.entities {
		w.archetypeFor(entity).Despawn(entity)
	}
	for _, arch := range w.archetypes {
		arch.Destroy()
	}
}
