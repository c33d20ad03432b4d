// Package scenario reads route-following setups from JSON and spawns them into a store.
//
//	{
//	  "followers": [
//	    {
//	      "tag": "guard",
//	      "position": [0, 0],
//	      "velocity": {"speed": [100, 0], "multiplier": 1},
//	      "route": {"waypoints": [[50, 0], [50, 50]], "tolerance": 1, "loop": true},
//	      "bounds": {"min": [0, 0], "max": [640, 480]}
//	    }
//	  ]
//	}
package scenario

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"

	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/plus3/wayfarer/waypoint"
)

var ErrInvalidScenario = eris.New("invalid scenario")

type Scenario struct {
	Followers []Follower `json:"followers"`
}

type Follower struct {
	Tag      string   `json:"tag"`
	Position [2]int   `json:"position"`
	Velocity Velocity `json:"velocity"`
	Route    *Route   `json:"route,omitempty"`
	Bounds   *Bounds  `json:"bounds,omitempty"`
}

type Velocity struct {
	Speed [2]int `json:"speed"`
	// Multiplier defaults to 1 when omitted.
	Multiplier *float64 `json:"multiplier,omitempty"`
}

type Route struct {
	Waypoints [][2]int `json:"waypoints"`
	// Tolerance defaults to waypoint.DefaultTolerance when omitted.
	Tolerance *float64 `json:"tolerance,omitempty"`
	Loop      bool     `json:"loop"`
}

type Bounds struct {
	Min [2]int `json:"min"`
	Max [2]int `json:"max"`
}

// Decode reads and validates a scenario.
func Decode(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, eris.Wrap(err, "decode scenario")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open scenario %s", path)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "load scenario %s", path)
	}
	return s, nil
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s *Scenario) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return eris.Wrap(err, "encode scenario")
	}
	return nil
}

// Validate rejects negative tolerances and multipliers and inverted bounds.
func (s *Scenario) Validate() error {
	for i, f := range s.Followers {
		if m := f.Velocity.Multiplier; m != nil && *m < 0 {
			return eris.Wrapf(ErrInvalidScenario, "follower %d (%q): negative multiplier %v", i, f.Tag, *m)
		}
		if f.Route != nil && f.Route.Tolerance != nil && *f.Route.Tolerance < 0 {
			return eris.Wrapf(ErrInvalidScenario, "follower %d (%q): negative tolerance %v", i, f.Tag, *f.Route.Tolerance)
		}
		if b := f.Bounds; b != nil && (b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]) {
			return eris.Wrapf(ErrInvalidScenario, "follower %d (%q): bounds min %v exceeds max %v", i, f.Tag, b.Min, b.Max)
		}
	}
	return nil
}

// Components returns the components for one follower, ready for Storage.Spawn.
func (f Follower) Components() []any {
	multiplier := 1.0
	if f.Velocity.Multiplier != nil {
		multiplier = *f.Velocity.Multiplier
	}

	components := []any{
		geometry.Position{X: f.Position[0], Y: f.Position[1]},
		geometry.Velocity{X: f.Velocity.Speed[0], Y: f.Velocity.Speed[1], Multiplier: multiplier},
	}

	if f.Route != nil {
		route := waypoint.NewRoute()
		for _, wp := range f.Route.Waypoints {
			route.Waypoints = append(route.Waypoints, geometry.Pt(wp[0], wp[1]))
		}
		if f.Route.Tolerance != nil {
			route.Tolerance = *f.Route.Tolerance
		}
		route.Loop = f.Route.Loop
		route.Tag = f.Tag
		components = append(components, route)
	}

	if f.Bounds != nil {
		components = append(components, geometry.Bounds{
			MinX: f.Bounds.Min[0], MinY: f.Bounds.Min[1],
			MaxX: f.Bounds.Max[0], MaxY: f.Bounds.Max[1],
		})
	}

	return components
}

// Spawn creates one entity per follower and returns their ids in file order.
func (s *Scenario) Spawn(storage *ecs.Storage) []ecs.EntityId {
	ids := make([]ecs.EntityId, 0, len(s.Followers))
	for _, f := range s.Followers {
		ids = append(ids, storage.Spawn(f.Components()...))
	}
	return ids
}

// RegisterComponents registers every component type a scenario can spawn.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[geometry.Position](registry)
	ecs.RegisterComponent[geometry.Velocity](registry)
	ecs.RegisterComponent[geometry.Bounds](registry)
	ecs.RegisterComponent[waypoint.Route](registry)
}
