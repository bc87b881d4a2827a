package ebiten_test

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/gecs/ecs"
	"github.com/plus3/gecs/ecs/debugui"
	debugui_ebiten "github.com/plus3/gecs/ecs/debugui/ebiten"
)

type enemyMarker struct{}

type position struct {
	X, Y float32
}

// Game implements ebiten.Game and renders the inspector over the game
// content each frame.
type Game struct {
	inspector *debugui.Inspector
	timer     *debugui.FrameTimer
	backend   debugui_ebiten.ImguiBackend
}

func (g *Game) Update() error {
	g.backend.BeginFrame()
	g.inspector.Render(g.timer.DeltaTime())
	g.backend.EndFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Draw game content to screen
	// ...

	// Draw ImGui overlay on top
	g.backend.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.backend.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func Example() {
	// Create Ebiten window and ImGui backend
	imguiBackend := ebitenbackend.NewEbitenBackend()
	imguiBackend.CreateWindow("Inspector Example", 1280, 720)
	imgui.CurrentIO().SetIniFilename("") // Disable imgui.ini

	// Set up some world state to look at
	enemies := ecs.NewArchetype[enemyMarker]("enemies")
	positions := ecs.NewStorage[position]()

	goblin := enemies.Spawn("goblin")
	positions.Add(goblin, position{X: 10, Y: 20})

	// Register it with the inspector
	inspector := debugui.NewInspector()
	debugui.RegisterArchetype(inspector, enemies)
	debugui.RegisterStorage(inspector, positions)

	game := &Game{
		inspector: inspector,
		timer:     debugui.NewFrameTimer(),
		backend:   debugui_ebiten.ImguiBackend{EbitenBackend: imguiBackend},
	}

	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
}
