// Package debugui provides an immediate-mode Dear ImGui inspector for
// archetypes, entities, and component storages. Register the archetypes and
// storages you want visible, then call Render once per frame between the
// backend's BeginFrame and EndFrame.
package debugui

import (
	"iter"
	"reflect"

	"github.com/plus3/gecs/ecs"
)

// Inspector renders debug windows over a set of registered archetypes and
// storages. Registration is explicit because archetypes and storages are
// free-standing values with no central registry to discover them from.
type Inspector struct {
	archetypes []archetypeHandle
	storages   []storageHandle

	browser   EntityBrowserWindow
	viewer    ArchetypeViewerWindow
	inspector ComponentInspectorWindow
	stats     StatsWindow
}

// archetypeHandle erases the marker type of a registered archetype.
type archetypeHandle struct {
	name     string
	id       func() ecs.ArchetypeID
	length   func() int
	capacity func() int
	entities func() iter.Seq[ecs.Entity]
}

// storageHandle erases the component type of a registered storage. value
// returns an addressable reflect.Value of the stored component, so the
// component inspector can edit fields in place.
type storageHandle struct {
	component reflect.Type
	length    func() int
	has       func(ecs.Entity) bool
	value     func(ecs.Entity) (reflect.Value, bool)
	countIn   func(ecs.ArchetypeID) int
}

// NewInspector creates an inspector with no registered state.
func NewInspector() *Inspector {
	return &Inspector{
		browser:   NewEntityBrowserWindow(100),
		viewer:    NewArchetypeViewerWindow(),
		inspector: NewComponentInspectorWindow(),
		stats:     NewStatsWindow(120),
	}
}

// RegisterArchetype makes the archetype's entities visible to the inspector.
func RegisterArchetype[M any](ins *Inspector, arch ecs.Archetype[M]) {
	ins.archetypes = append(ins.archetypes, archetypeHandle{
		name:     arch.Name(),
		id:       arch.ID,
		length:   arch.Len,
		capacity: arch.Cap,
		entities: arch.Entities,
	})
}

// RegisterStorage makes the storage's components visible to the inspector.
func RegisterStorage[T any](ins *Inspector, storage *ecs.Storage[T]) {
	ins.storages = append(ins.storages, storageHandle{
		component: reflect.TypeFor[T](),
		length:    storage.Len,
		has:       storage.Has,
		value: func(entity ecs.Entity) (reflect.Value, bool) {
			if !storage.Has(entity) {
				return reflect.Value{}, false
			}
			return reflect.ValueOf(storage.Get(entity)).Elem(), true
		},
		countIn: func(id ecs.ArchetypeID) int {
			run := storage.GetRun(id)
			if run == nil {
				return 0
			}
			return run.Len()
		},
	})
}

// Render draws all inspector windows. deltaTime is the previous frame's
// duration in seconds, fed to the stats window's frame time graph.
func (ins *Inspector) Render(deltaTime float32) {
	if selected := ins.viewer.Render(ins.archetypes, ins.storages); selected != nil {
		ins.browser.FilterByArchetype(*selected)
	}
	ins.browser.Render(ins.archetypes, ins.storages)
	ins.inspector.Render(ins.browser.SelectedEntity(), ins.storages)
	ins.stats.Render(ins.archetypes, ins.storages, deltaTime)
}
