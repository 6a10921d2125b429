package debugui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/sigecs/ecs"
)

// EntityRow is one line of the entity browser.
type EntityRow struct {
	ID         ecs.Entity
	Signature  ecs.Signature
	Components []string
}

// EntityBrowser lists live entities with their signatures and lets the user
// pick one for the component inspector.
type EntityBrowser struct {
	rows          []EntityRow
	selected      ecs.Entity
	hasSelection  bool
	filterText    string
	perPage       int
	currentPage   int
	sortColumn    int
	sortAscending bool
}

func NewEntityBrowser(perPage int) *EntityBrowser {
	return &EntityBrowser{
		perPage:       max(perPage, 1),
		sortAscending: true,
	}
}

// Selected returns the selected entity, if any.
func (eb *EntityBrowser) Selected() (ecs.Entity, bool) {
	return eb.selected, eb.hasSelection
}

// Select makes e the selected entity.
func (eb *EntityBrowser) Select(e ecs.Entity) {
	eb.selected = e
	eb.hasSelection = true
}

func (eb *EntityBrowser) Render(w *ecs.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rows = collectEntityRows(w, eb.rows)
	if eb.hasSelection && !w.Alive(eb.selected) {
		eb.hasSelection = false
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.currentPage = 0
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	filtered := filterEntityRows(eb.rows, eb.filterText)

	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Signature")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortSpecs.SetSpecsDirty(false)
		}
		sortEntityRows(filtered, eb.sortColumn, eb.sortAscending)

		start, end := pageBounds(len(filtered), eb.currentPage, eb.perPage)
		for _, row := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.hasSelection && eb.selected == row.ID
			if imgui.SelectableBoolV(strconv.Itoa(int(row.ID)), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(row.ID)
			}

			imgui.TableNextColumn()
			imgui.Text(row.Signature.String())

			imgui.TableNextColumn()
			imgui.Text(strings.Join(row.Components, ", "))

			imgui.TableNextColumn()
			imgui.Text(strconv.Itoa(len(row.Components)))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.perPage {
		totalPages := (len(filtered) + eb.perPage - 1) / eb.perPage
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
		eb.currentPage = 0
		imgui.Text(fmt.Sprintf("Total: %d / %d entities", len(filtered), w.MaxEntities()))
	}

	imgui.End()
}

// collectEntityRows rebuilds the row list for every live entity, reusing dst.
func collectEntityRows(w *ecs.World, dst []EntityRow) []EntityRow {
	dst = dst[:0]
	components := w.Components()
	for e := range w.Entities() {
		sig, err := w.Signature(e)
		if err != nil {
			continue
		}
		ids := sig.IDs()
		names := make([]string, len(ids))
		for i, id := range ids {
			names[i] = components.Name(id)
		}
		dst = append(dst, EntityRow{ID: e, Signature: sig, Components: names})
	}
	return dst
}

// filterEntityRows keeps rows whose id or component names contain filter,
// ignoring case.
func filterEntityRows(rows []EntityRow, filter string) []EntityRow {
	if filter == "" {
		return rows
	}

	needle := strings.ToLower(filter)
	filtered := make([]EntityRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strconv.Itoa(int(row.ID)), needle) ||
			strings.Contains(strings.ToLower(strings.Join(row.Components, " ")), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func sortEntityRows(rows []EntityRow, column int, ascending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		var less bool

		switch column {
		case 1:
			less = a.Signature.String() < b.Signature.String()
		case 2:
			less = strings.Join(a.Components, ",") < strings.Join(b.Components, ",")
		case 3:
			less = len(a.Components) < len(b.Components)
		default:
			less = a.ID < b.ID
		}

		if !ascending {
			return !less
		}
		return less
	})
}

func pageBounds(n, page, perPage int) (int, int) {
	start := min(page*perPage, n)
	return start, min(start+perPage, n)
}
