// Package geometry holds the integer world-space components shared by the movement
// systems.
package geometry

import "math"

// Point is a world-space coordinate in pixels.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q as floats.
func (p Point) Sub(q Point) (dx, dy float64) {
	return float64(p.X - q.X), float64(p.Y - q.Y)
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.Sub(q))
}

// Position is an entity's location in world space.
type Position struct {
	X, Y int
}

// Point returns the position as a Point.
func (p Position) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Set moves the position onto pt.
func (p *Position) Set(pt Point) {
	p.X, p.Y = pt.X, pt.Y
}

// Translate moves the position by (dx, dy). The result is truncated toward zero, so
// sub-pixel remainders are dropped rather than carried into the next frame.
func (p *Position) Translate(dx, dy float64) {
	p.X = int(float64(p.X) + dx)
	p.Y = int(float64(p.Y) + dy)
}

// Velocity is a base speed vector in pixels per second and a scalar multiplier applied
// on top of it. A zero Multiplier stops the entity; use NewVelocity for the default of 1.
type Velocity struct {
	X, Y       int
	Multiplier float64
}

// NewVelocity returns a velocity with the default multiplier of 1.
func NewVelocity(x, y int) Velocity {
	return Velocity{X: x, Y: y, Multiplier: 1}
}

// Speed is the effective speed magnitude, hypot(X, Y) * Multiplier.
func (v Velocity) Speed() float64 {
	return math.Hypot(float64(v.X), float64(v.Y)) * v.Multiplier
}

// Aim points the base vector along the unit direction (ux, uy) with magnitude speed,
// truncating each axis toward zero.
func (v *Velocity) Aim(ux, uy, speed float64) {
	v.X = int(ux * speed)
	v.Y = int(uy * speed)
}

// Bounds is an inclusive rectangle positions are clamped into.
type Bounds struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Clamp returns pt moved to the nearest point inside b.
func (b Bounds) Clamp(pt Point) Point {
	return Point{
		X: min(max(pt.X, b.MinX), b.MaxX),
		Y: min(max(pt.Y, b.MinY), b.MaxY),
	}
}

// Contains reports whether pt lies inside b.
func (b Bounds) Contains(pt Point) bool {
	return pt.X >= b.MinX && pt.X <= b.MaxX && pt.Y >= b.MinY && pt.Y <= b.MaxY
}
