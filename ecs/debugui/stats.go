package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/gecs/ecs"
)

// StatsWindow shows entity totals, lifetime pool usage, and a frame time
// graph.
type StatsWindow struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

func NewStatsWindow(historyFrames int) StatsWindow {
	return StatsWindow{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

func (sw *StatsWindow) Render(archetypes []archetypeHandle, storages []storageHandle, deltaTime float32) {
	if !imgui.BeginV("Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	sw.frameHistory[sw.frameIndex] = deltaTime * 1000.0
	sw.frameIndex = (sw.frameIndex + 1) % sw.historyFrames

	totalEntities := 0
	for _, arch := range archetypes {
		totalEntities += arch.length()
	}
	totalComponents := 0
	for _, storage := range storages {
		totalComponents += storage.length()
	}

	imgui.Text(fmt.Sprintf("Total Entities: %d", totalEntities))
	imgui.Text(fmt.Sprintf("Archetypes: %d", len(archetypes)))
	imgui.Text(fmt.Sprintf("Components: %d across %d storages", totalComponents, len(storages)))

	pool := ecs.LifetimePoolStats()
	imgui.Text(fmt.Sprintf("Lifetime Pool: %d free slots in %d blocks", pool.FreeSlots, pool.AllocatedBlocks))

	var avgFrameTime float32
	for _, ft := range sw.frameHistory {
		avgFrameTime += ft
	}
	avgFrameTime /= float32(sw.historyFrames)

	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &sw.frameHistory[0], int32(len(sw.frameHistory)))

	if imgui.TreeNodeStr("Storage Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("StorageStatsTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Component")
			imgui.TableSetupColumn("Count")
			imgui.TableHeadersRow()

			for _, storage := range storages {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(storage.component.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", storage.length()))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	imgui.End()
}

// FrameTimer measures wall-clock frame deltas for the stats graph.
type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{lastFrameTime: time.Now()}
}

func (ft *FrameTimer) DeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
