package debugui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// SystemViewer lists registered systems with their requirement and the size
// of their entity set.
type SystemViewer struct {
	selected      string
	sortColumn    int
	sortAscending bool
	maxListed     int
}

func NewSystemViewer() *SystemViewer {
	return &SystemViewer{
		sortColumn:    3,
		sortAscending: false,
		maxListed:     64,
	}
}

func (sv *SystemViewer) Render(w *ecs.World) {
	if !imgui.BeginV("System Viewer", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	rows := w.CollectStats().Systems
	sortSystemRows(rows, sv.sortColumn, sv.sortAscending)

	maxEntityCount := 0
	for _, row := range rows {
		maxEntityCount = max(maxEntityCount, row.EntityCount)
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable
	if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Requirement")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Entities")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			sv.sortColumn = int(spec.ColumnIndex())
			sv.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSystemRows(rows, sv.sortColumn, sv.sortAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, row := range rows {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(row.Name, sv.selected == row.Name, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				sv.selected = row.Name
			}

			imgui.TableNextColumn()
			if row.Bound {
				imgui.Text(row.Requirement.String())
			} else {
				imgui.Text("unset")
			}

			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.Components, ", "))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(row.EntityCount))

			if maxEntityCount > 0 {
				barWidth := float32(row.EntityCount) / float32(maxEntityCount) * 80.0
				imgui.SameLine()
				drawList := imgui.WindowDrawList()
				pos := imgui.CursorScreenPos()
				color := imgui.ColorU32Vec4(imgui.NewVec4(0.2, 0.6, 0.8, 0.6))
				drawList.AddRectFilled(pos, imgui.NewVec2(pos.X+barWidth, pos.Y+10), color)
			}
		}

		imgui.EndTable()
	}

	if sv.selected == "" {
		return
	}
	entities := systemEntities(w, sv.selected)
	imgui.Separator()
	imgui.Text(fmt.Sprintf("%s: %d entities", sv.selected, len(entities)))
	for i, e := range entities {
		if i == sv.maxListed {
			imgui.BulletText(fmt.Sprintf("... %d more", len(entities)-sv.maxListed))
			break
		}
		imgui.BulletText(strconv.Itoa(int(e)))
	}
}

// systemEntities returns the entity set of the named system, or nil.
func systemEntities(w *ecs.World, name string) []ecs.Entity {
	for _, info := range w.Systems().Systems() {
		if info.Name == name {
			return info.System.Entities().Slice()
		}
	}
	return nil
}

func sortSystemRows(rows []ecs.SystemStatus, column int, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var less bool

		switch column {
		case 0:
			less = a.Name < b.Name
		case 1:
			less = a.Requirement.String() < b.Requirement.String()
		case 2:
			less = len(a.Components) < len(b.Components)
		default:
			less = a.EntityCount < b.EntityCount
		}

		if !ascending {
			return !less
		}
		return less
	})
}
