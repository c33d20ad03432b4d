// Package waypoint steers entities along ordered routes of target points.
//
// An entity follows a route when it carries a Route, a geometry.Position and a
// geometry.Velocity. Each frame the Processor re-aims the velocity at the current
// waypoint, moves the entity at the velocity's speed, and advances through the route.
// A looping route starts over from its first waypoint; any other route is detached
// from the entity when its last waypoint is reached, and registered observers are
// told about it.
package waypoint

import "github.com/plus3/wayfarer/geometry"

// DefaultTolerance is the arrival radius in pixels used by NewRoute.
const DefaultTolerance = 2.0

// Route is the route-following state of one entity.
type Route struct {
	Waypoints []geometry.Point
	// Tolerance is the distance at or under which a waypoint counts as reached.
	Tolerance float64
	Loop      bool
	// Index is the waypoint currently steered toward.
	Index int
	// Tag is passed through to observers so callers can tell routes apart.
	Tag string
}

// NewRoute returns a non-looping route over points with the default tolerance.
func NewRoute(points ...geometry.Point) Route {
	return Route{
		Waypoints: points,
		Tolerance: DefaultTolerance,
	}
}

// Looping returns a copy of r that starts over after its last waypoint.
func (r Route) Looping() Route {
	r.Loop = true
	return r
}

// Target returns the waypoint currently steered toward.
func (r *Route) Target() (geometry.Point, bool) {
	if r.Index < 0 || r.Index >= len(r.Waypoints) {
		return geometry.Point{}, false
	}
	return r.Waypoints[r.Index], true
}

// Remaining returns the number of waypoints not yet reached on this lap.
func (r *Route) Remaining() int {
	return max(len(r.Waypoints)-r.Index, 0)
}
