package main

import (
	"math"
	"math/rand/v2"

	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/plus3/wayfarer/waypoint"
)

const (
	worldSize = 2000
	minSpeed  = 40
	maxSpeed  = 240
	// One in driftEvery entities moves freely inside bounds instead of following a route.
	driftEvery = 10
)

var worldBounds = geometry.Bounds{MaxX: worldSize, MaxY: worldSize}

func registerComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[geometry.Position](registry)
	ecs.RegisterComponent[geometry.Velocity](registry)
	ecs.RegisterComponent[geometry.Bounds](registry)
	ecs.RegisterComponent[waypoint.Route](registry)
}

func randomPoint(rng *rand.Rand) geometry.Point {
	return geometry.Pt(rng.IntN(worldSize), rng.IntN(worldSize))
}

func randomVelocity(rng *rand.Rand) geometry.Velocity {
	angle := rng.Float64() * 2 * math.Pi
	speed := minSpeed + rng.Float64()*(maxSpeed-minSpeed)
	return geometry.NewVelocity(int(math.Cos(angle)*speed), int(math.Sin(angle)*speed))
}

// spawnFollowers populates storage with n entities and returns how many carry a route.
func spawnFollowers(storage *ecs.Storage, rng *rand.Rand, n int, loopRatio float64) int {
	routes := 0
	for i := range n {
		start := randomPoint(rng)
		pos := geometry.Position{X: start.X, Y: start.Y}
		vel := randomVelocity(rng)

		if i%driftEvery == driftEvery-1 {
			storage.Spawn(pos, vel, worldBounds)
			continue
		}

		points := make([]geometry.Point, 2+rng.IntN(5))
		for j := range points {
			points[j] = randomPoint(rng)
		}
		route := waypoint.NewRoute(points...)
		route.Loop = rng.Float64() < loopRatio

		storage.Spawn(pos, vel, route)
		routes++
	}
	return routes
}
