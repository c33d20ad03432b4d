// Package motion integrates free movement and keeps entities inside their bounds.
package motion

import (
	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/plus3/wayfarer/waypoint"
)

// MoveSystem moves every entity by its velocity. Entities following a route are left
// to the waypoint processor.
type MoveSystem struct {
	Movers ecs.Query[struct {
		*geometry.Position
		*geometry.Velocity
		Route *waypoint.Route `ecs:"optional"`
	}]
}

func (s *MoveSystem) Execute(frame *ecs.UpdateFrame) {
	if frame.DeltaTime == 0 {
		return
	}
	for m := range s.Movers.Values() {
		if m.Route != nil {
			continue
		}
		scale := m.Velocity.Multiplier * frame.DeltaTime
		m.Position.Translate(float64(m.Velocity.X)*scale, float64(m.Velocity.Y)*scale)
	}
}

// BoundsSystem clamps positions into each entity's Bounds. Register it after the
// systems that move entities. Entities following a route are not clamped until the
// route is detached.
type BoundsSystem struct {
	Bounded ecs.Query[struct {
		*geometry.Position
		*geometry.Bounds
		Route *waypoint.Route `ecs:"optional"`
	}]
}

func (s *BoundsSystem) Execute(*ecs.UpdateFrame) {
	for b := range s.Bounded.Values() {
		if b.Route != nil {
			continue
		}
		b.Position.Set(b.Bounds.Clamp(b.Position.Point()))
	}
}
