package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
)

type archetypeRow struct {
	ID             uint32
	Name           string
	EntityCount    int
	SlotCapacity   int
	ComponentCount int
}

// ArchetypeViewerWindow lists registered archetypes in a sortable table.
// Clicking a row filters the entity browser to that archetype.
type ArchetypeViewerWindow struct {
	rows          []archetypeRow
	selectedID    *uint32
	sortColumn    int
	sortAscending bool
}

func NewArchetypeViewerWindow() ArchetypeViewerWindow {
	return ArchetypeViewerWindow{
		sortColumn:    2,
		sortAscending: false,
	}
}

func (av *ArchetypeViewerWindow) Render(archetypes []archetypeHandle, storages []storageHandle) *uint32 {
	if !imgui.BeginV("Archetype Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return nil
	}

	av.rebuildRows(archetypes, storages)

	maxEntityCount := 0
	for _, row := range av.rows {
		if row.EntityCount > maxEntityCount {
			maxEntityCount = row.EntityCount
		}
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ArchetypeTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Archetype ID")
		imgui.TableSetupColumn("Name")
		imgui.TableSetupColumn("Entities")
		imgui.TableSetupColumn("Slot Capacity")
		imgui.TableSetupColumn("Component Kinds")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			av.sortColumn = int(spec.ColumnIndex())
			av.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			av.sortRows()
			sortSpecs.SetSpecsDirty(false)
		}

		var clickedID *uint32

		for _, row := range av.rows {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := av.selectedID != nil && *av.selectedID == row.ID
			if imgui.SelectableBoolV(fmt.Sprintf("0x%X", row.ID), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				idCopy := row.ID
				clickedID = &idCopy
				av.selectedID = &idCopy
			}

			imgui.TableNextColumn()
			imgui.Text(row.Name)

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(row.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.SlotCapacity))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.ComponentCount))
		}

		imgui.EndTable()

		imgui.End()
		return clickedID
	}

	imgui.End()
	return nil
}

func (av *ArchetypeViewerWindow) rebuildRows(archetypes []archetypeHandle, storages []storageHandle) {
	av.rows = av.rows[:0]

	for _, arch := range archetypes {
		id := arch.id()

		componentKinds := 0
		for _, storage := range storages {
			if storage.countIn(id) > 0 {
				componentKinds++
			}
		}

		av.rows = append(av.rows, archetypeRow{
			ID:             id.ID,
			Name:           arch.name,
			EntityCount:    arch.length(),
			SlotCapacity:   arch.capacity(),
			ComponentCount: componentKinds,
		})
	}

	av.sortRows()
}

func (av *ArchetypeViewerWindow) sortRows() {
	sort.SliceStable(av.rows, func(i, j int) bool {
		a, b := av.rows[i], av.rows[j]
		var less bool

		switch av.sortColumn {
		case 0:
			less = a.ID < b.ID
		case 1:
			less = strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case 2:
			less = a.EntityCount < b.EntityCount
		case 3:
			less = a.SlotCapacity < b.SlotCapacity
		case 4:
			less = a.ComponentCount < b.ComponentCount
		default:
			less = a.EntityCount < b.EntityCount
		}

		if !av.sortAscending {
			return !less
		}
		return less
	})
}
