// Package probe lets tools and tests watch a component of an entity every frame
// without writing a dedicated system.
package probe

import (
	"reflect"

	"github.com/plus3/wayfarer/ecs"
)

// Probe asks for Inspect to be called each frame with the entity's Target component.
// Inspect receives a pointer to the live component, or nothing at all on frames where
// the entity lacks it.
type Probe struct {
	Target  reflect.Type
	Inspect func(id ecs.EntityId, component any)
}

// For returns a Probe on component type T with a typed callback.
func For[T any](inspect func(id ecs.EntityId, component *T)) Probe {
	return Probe{
		Target: reflect.TypeFor[T](),
		Inspect: func(id ecs.EntityId, component any) {
			inspect(id, component.(*T))
		},
	}
}

// System runs every attached Probe.
type System struct {
	Probes ecs.Query[struct {
		ecs.EntityId
		*Probe
	}]
}

func (s *System) Execute(frame *ecs.UpdateFrame) {
	for p := range s.Probes.Values() {
		if p.Probe.Inspect == nil || p.Probe.Target == nil {
			continue
		}
		component := frame.Storage.GetComponent(p.EntityId, p.Probe.Target)
		if component == nil {
			continue
		}
		p.Probe.Inspect(p.EntityId, component)
	}
}
