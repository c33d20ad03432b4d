package debugui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/plus3/wayfarer/waypoint"
)

type routed struct {
	ecs.EntityId
	*waypoint.Route
	*geometry.Position
	Velocity *geometry.Velocity `ecs:"optional"`
}

// RouteRow is one follower as shown by the route inspector.
type RouteRow struct {
	Entity    ecs.EntityId
	Tag       string
	Position  geometry.Point
	Target    geometry.Point
	Index     int
	Waypoints int
	Remaining int
	Loop      bool
	Speed     float64
}

// RouteInspector lists route followers with their progress.
type RouteInspector struct {
	maxRows int
	rows    []RouteRow
	total   int
}

func NewRouteInspector(maxRows int) RouteInspector {
	return RouteInspector{maxRows: maxRows}
}

// Collect refreshes the inspector's rows from storage, ordered by entity id and capped
// at the inspector's row limit.
func (ri *RouteInspector) Collect(storage *ecs.Storage) []RouteRow {
	ri.rows = ri.rows[:0]
	for id, f := range ecs.NewView[routed](storage).Iter() {
		row := RouteRow{
			Entity:    id,
			Tag:       f.Tag,
			Position:  f.Position.Point(),
			Index:     f.Index,
			Waypoints: len(f.Waypoints),
			Remaining: f.Remaining(),
			Loop:      f.Loop,
		}
		if target, ok := f.Target(); ok {
			row.Target = target
		}
		if f.Velocity != nil {
			row.Speed = f.Velocity.Speed()
		}
		ri.rows = append(ri.rows, row)
	}

	slices.SortFunc(ri.rows, func(a, b RouteRow) int {
		return cmp.Compare(a.Entity, b.Entity)
	})
	ri.total = len(ri.rows)
	if ri.maxRows > 0 && len(ri.rows) > ri.maxRows {
		ri.rows = ri.rows[:ri.maxRows]
	}
	return ri.rows
}

func (ri *RouteInspector) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Routes", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	rows := ri.Collect(storage)
	imgui.Text(fmt.Sprintf("Followers: %d (showing %d)", ri.total, len(rows)))
	imgui.Separator()

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("RouteTable", 6, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity")
		imgui.TableSetupColumn("Tag")
		imgui.TableSetupColumn("Position")
		imgui.TableSetupColumn("Target")
		imgui.TableSetupColumn("Progress")
		imgui.TableSetupColumn("Speed")
		imgui.TableHeadersRow()

		for _, row := range rows {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Entity))
			imgui.TableNextColumn()
			imgui.Text(row.Tag)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("(%d, %d)", row.Position.X, row.Position.Y))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("(%d, %d)", row.Target.X, row.Target.Y))
			imgui.TableNextColumn()
			progress := fmt.Sprintf("%d/%d (%d left)", row.Index, row.Waypoints, row.Remaining)
			if row.Loop {
				progress += " loop"
			}
			imgui.Text(progress)
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%.1f", row.Speed))
		}

		imgui.EndTable()
	}

	imgui.End()
}
