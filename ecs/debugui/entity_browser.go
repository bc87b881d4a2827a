package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/gecs/ecs"
)

type entityRow struct {
	Entity         ecs.Entity
	Name           string
	ArchetypeName  string
	ComponentTypes []string
}

// EntityBrowserWindow lists entities across all registered archetypes with
// text filtering and paging. The selected entity feeds the component
// inspector.
type EntityBrowserWindow struct {
	rows               []entityRow
	selected           *ecs.Entity
	filterText         string
	filterArchetypeID  *uint32
	maxEntitiesPerPage int
	currentPage        int
	sortColumn         int
	sortAscending      bool
}

func NewEntityBrowserWindow(maxEntitiesPerPage int) EntityBrowserWindow {
	return EntityBrowserWindow{
		maxEntitiesPerPage: maxEntitiesPerPage,
		sortAscending:      true,
	}
}

// SelectedEntity returns the currently selected entity, or nil.
func (eb *EntityBrowserWindow) SelectedEntity() *ecs.Entity {
	if eb.selected != nil && eb.selected.IsCondemned() {
		eb.selected = nil
	}
	return eb.selected
}

// FilterByArchetype restricts the browser to one archetype until the filter
// is cleared.
func (eb *EntityBrowserWindow) FilterByArchetype(id uint32) {
	eb.filterArchetypeID = &id
	eb.currentPage = 0
}

func (eb *EntityBrowserWindow) Render(archetypes []archetypeHandle, storages []storageHandle) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildRows(archetypes, storages)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterArchetypeID = nil
		eb.currentPage = 0
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Archetype")
		imgui.TableSetupColumn("Slot")
		imgui.TableSetupColumn("Components")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			eb.sortRows()
			sortSpecs.SetSpecsDirty(false)
		}

		filtered := eb.filteredRows()

		startIdx := eb.currentPage * eb.maxEntitiesPerPage
		endIdx := startIdx + eb.maxEntitiesPerPage
		if startIdx > len(filtered) {
			startIdx = 0
			eb.currentPage = 0
		}
		if endIdx > len(filtered) {
			endIdx = len(filtered)
		}

		for i := startIdx; i < endIdx; i++ {
			row := filtered[i]
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.selected != nil && *eb.selected == row.Entity
			label := fmt.Sprintf("%s##%d", row.Name, row.Entity.Key())
			if imgui.SelectableBoolV(label, isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				entityCopy := row.Entity
				eb.selected = &entityCopy
			}

			imgui.TableNextColumn()
			imgui.Text(row.ArchetypeName)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Entity.Slot))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.ComponentTypes, ", "))
		}

		imgui.EndTable()
	}

	filtered := eb.filteredRows()

	if len(filtered) > eb.maxEntitiesPerPage {
		totalPages := (len(filtered) + eb.maxEntitiesPerPage - 1) / eb.maxEntitiesPerPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func (eb *EntityBrowserWindow) rebuildRows(archetypes []archetypeHandle, storages []storageHandle) {
	eb.rows = eb.rows[:0]

	for _, arch := range archetypes {
		for entity := range arch.entities() {
			var componentTypes []string
			for _, storage := range storages {
				if storage.has(entity) {
					componentTypes = append(componentTypes, storage.component.String())
				}
			}

			eb.rows = append(eb.rows, entityRow{
				Entity:         entity,
				Name:           entity.Lifetime.Name(),
				ArchetypeName:  arch.name,
				ComponentTypes: componentTypes,
			})
		}
	}

	eb.sortRows()
}

func (eb *EntityBrowserWindow) sortRows() {
	sort.SliceStable(eb.rows, func(i, j int) bool {
		a, b := eb.rows[i], eb.rows[j]
		var less bool

		switch eb.sortColumn {
		case 0:
			less = a.Name < b.Name
		case 1:
			less = a.ArchetypeName < b.ArchetypeName
		case 2:
			less = a.Entity.Slot < b.Entity.Slot
		case 3:
			less = len(a.ComponentTypes) < len(b.ComponentTypes)
		default:
			less = a.Name < b.Name
		}

		if !eb.sortAscending {
			return !less
		}
		return less
	})
}

func (eb *EntityBrowserWindow) filteredRows() []entityRow {
	if eb.filterText == "" && eb.filterArchetypeID == nil {
		return eb.rows
	}

	filtered := make([]entityRow, 0, len(eb.rows))
	filterLower := strings.ToLower(eb.filterText)

	for _, row := range eb.rows {
		if eb.filterArchetypeID != nil && row.Entity.Archetype.ID != *eb.filterArchetypeID {
			continue
		}

		if eb.filterText != "" {
			nameStr := strings.ToLower(row.Name)
			archStr := strings.ToLower(row.ArchetypeName)
			componentsStr := strings.ToLower(strings.Join(row.ComponentTypes, " "))

			if !strings.Contains(nameStr, filterLower) &&
				!strings.Contains(archStr, filterLower) &&
				!strings.Contains(componentsStr, filterLower) {
				continue
			}
		}

		filtered = append(filtered, row)
	}

	return filtered
}
