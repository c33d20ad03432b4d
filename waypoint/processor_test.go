package waypoint_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/plus3/wayfarer/waypoint"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage() *ecs.Storage {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[geometry.Position](registry)
	ecs.RegisterComponent[geometry.Velocity](registry)
	ecs.RegisterComponent[waypoint.Route](registry)
	return ecs.NewStorage(registry)
}

type recorder struct {
	events []waypoint.Finished
}

func (r *recorder) RouteFinished(ev waypoint.Finished) {
	r.events = append(r.events, ev)
}

func position(t *testing.T, storage *ecs.Storage, id ecs.EntityId) geometry.Position {
	t.Helper()
	pos := ecs.ReadComponent[geometry.Position](storage, id)
	require.NotNil(t, pos)
	return *pos
}

func route(t *testing.T, storage *ecs.Storage, id ecs.EntityId) *waypoint.Route {
	t.Helper()
	r := ecs.ReadComponent[waypoint.Route](storage, id)
	require.NotNil(t, r)
	return r
}

func TestReachesTargetAndDetaches(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	proc := waypoint.NewProcessor(storage, waypoint.WithObserver(rec))

	r := waypoint.NewRoute(geometry.Pt(50, 0))
	r.Tolerance = 1.0
	r.Tag = "scout"
	id := storage.Spawn(geometry.Position{X: 0, Y: 0}, geometry.NewVelocity(100, 0), r)

	proc.Process(0.5)

	assert.Equal(t, geometry.Position{X: 50, Y: 0}, position(t, storage, id))
	assert.False(t, ecs.Has[waypoint.Route](storage, id))
	assert.Equal(t, []waypoint.Finished{{Entity: id, Tag: "scout"}}, rec.events)
}

func TestVelocityReaimedTowardTarget(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)

	r := waypoint.NewRoute(geometry.Pt(0, 100)).Looping()
	r.Tolerance = 1.0
	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(100, 0), r)

	proc.Process(0.1)

	vel := ecs.ReadComponent[geometry.Velocity](storage, id)
	require.NotNil(t, vel)
	assert.Greater(t, vel.Y, 0)
	assert.InDelta(t, 100, math.Hypot(float64(vel.X), float64(vel.Y)), 1)
	assert.Equal(t, geometry.Position{X: 0, Y: 10}, position(t, storage, id))
	assert.True(t, ecs.Has[waypoint.Route](storage, id))
}

func TestStraightLineConvergesOnTarget(t *testing.T) {
	for _, tol := range []float64{0, 0.5, 1, 2} {
		storage := newStorage()
		proc := waypoint.NewProcessor(storage)

		r := waypoint.NewRoute(geometry.Pt(90, 0))
		r.Tolerance = tol
		id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(40, 0), r)

		for i := 0; i < 10 && ecs.Has[waypoint.Route](storage, id); i++ {
			proc.Process(0.5)
		}

		assert.Equal(t, geometry.Position{X: 90, Y: 0}, position(t, storage, id), "tolerance %v", tol)
		assert.False(t, ecs.Has[waypoint.Route](storage, id), "tolerance %v", tol)
	}
}

func TestArrivalWithinToleranceDoesNotMove(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)

	r := waypoint.NewRoute(geometry.Pt(50, 0), geometry.Pt(100, 0))
	id := storage.Spawn(geometry.Position{X: 49, Y: 0}, geometry.NewVelocity(100, 0), r)

	proc.Process(0.5)

	assert.Equal(t, geometry.Position{X: 49, Y: 0}, position(t, storage, id))
	assert.Equal(t, 1, route(t, storage, id).Index)

	proc.Process(0.1)

	assert.Equal(t, geometry.Position{X: 59, Y: 0}, position(t, storage, id))
	assert.Equal(t, 1, route(t, storage, id).Index)
}

func TestArrivalOnLastWaypointFinishesWithoutMoving(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	proc := waypoint.NewProcessor(storage, waypoint.WithObserver(rec))

	id := storage.Spawn(geometry.Position{X: 9, Y: 10}, geometry.NewVelocity(100, 0),
		waypoint.NewRoute(geometry.Pt(10, 10)))

	proc.Process(1)

	assert.Equal(t, geometry.Position{X: 9, Y: 10}, position(t, storage, id))
	assert.False(t, ecs.Has[waypoint.Route](storage, id))
	assert.Len(t, rec.events, 1)
}

func TestLoopWrapsToStart(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	proc := waypoint.NewProcessor(storage, waypoint.WithObserver(rec))

	r := waypoint.NewRoute(geometry.Pt(10, 0), geometry.Pt(20, 0)).Looping()
	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(100, 0), r)

	proc.Process(1)
	assert.Equal(t, 1, route(t, storage, id).Index)

	proc.Process(1)
	assert.Equal(t, geometry.Position{X: 20, Y: 0}, position(t, storage, id))
	assert.Equal(t, 0, route(t, storage, id).Index)

	proc.Process(0.05)
	assert.Equal(t, geometry.Position{X: 15, Y: 0}, position(t, storage, id))
	assert.Equal(t, 0, route(t, storage, id).Index)
	assert.Empty(t, rec.events)
}

func TestLoopOnSinglePointNeverDetaches(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	proc := waypoint.NewProcessor(storage, waypoint.WithObserver(rec))

	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(100, 0),
		waypoint.NewRoute(geometry.Pt(10, 0)).Looping())

	for i := 0; i < 5; i++ {
		proc.Process(1)
	}

	assert.Equal(t, geometry.Position{X: 10, Y: 0}, position(t, storage, id))
	assert.Equal(t, 0, route(t, storage, id).Index)
	assert.Empty(t, rec.events)
}

func TestFinishNotifiesExactlyOnce(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	proc := waypoint.NewProcessor(storage)
	proc.Observe(rec)

	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(100, 0),
		waypoint.NewRoute(geometry.Pt(100, 0), geometry.Pt(100, 100)))

	for i := 0; i < 12; i++ {
		proc.Process(0.25)
	}

	assert.Equal(t, geometry.Position{X: 100, Y: 100}, position(t, storage, id))
	assert.Len(t, rec.events, 1)
	assert.False(t, ecs.Has[waypoint.Route](storage, id))
	assert.True(t, storage.Alive(id))
}

func TestMultipleObservers(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	ch := waypoint.NewChannel(1)
	var calls int
	proc := waypoint.NewProcessor(storage,
		waypoint.WithObserver(rec),
		waypoint.WithObserver(ch),
		waypoint.WithObserver(waypoint.ObserverFunc(func(waypoint.Finished) { calls++ })),
	)

	storage.Spawn(geometry.Position{}, geometry.NewVelocity(10, 0), waypoint.NewRoute(geometry.Pt(1, 0)))
	storage.Spawn(geometry.Position{}, geometry.NewVelocity(10, 0), waypoint.NewRoute(geometry.Pt(0, 1)))

	proc.Process(1)

	assert.Len(t, rec.events, 2)
	assert.Equal(t, 2, calls)
	assert.Len(t, ch.C, 1)
	assert.Equal(t, 1, ch.Dropped())
}

func TestZeroSpeedDoesNotMove(t *testing.T) {
	tests := []struct {
		name string
		vel  geometry.Velocity
	}{
		{"zero vector", geometry.NewVelocity(0, 0)},
		{"zero multiplier", geometry.Velocity{X: 100, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := newStorage()
			proc := waypoint.NewProcessor(storage)
			id := storage.Spawn(geometry.Position{X: 3, Y: 4}, tt.vel, waypoint.NewRoute(geometry.Pt(50, 50)))

			for _, dt := range []float64{0, 0.016, 1, 1000} {
				assert.NotPanics(t, func() { proc.Process(dt) })
			}

			assert.Equal(t, geometry.Position{X: 3, Y: 4}, position(t, storage, id))
			assert.Equal(t, tt.vel, *ecs.ReadComponent[geometry.Velocity](storage, id))
			assert.Equal(t, 0, route(t, storage, id).Index)
		})
	}
}

func TestZeroDeltaOnlyReaims(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)
	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(50, 0), waypoint.NewRoute(geometry.Pt(30, 40)))

	proc.Process(0)

	assert.Equal(t, geometry.Position{}, position(t, storage, id))
	assert.Equal(t, geometry.Velocity{X: 30, Y: 40, Multiplier: 1}, *ecs.ReadComponent[geometry.Velocity](storage, id))

	proc.Process(0.1)
	assert.Equal(t, geometry.Position{X: 3, Y: 4}, position(t, storage, id))
}

func TestOverlargeDeltaSnaps(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)
	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(1, 0),
		waypoint.NewRoute(geometry.Pt(-300, 400), geometry.Pt(0, 0)))

	proc.Process(1e6)

	assert.Equal(t, geometry.Position{X: -300, Y: 400}, position(t, storage, id))
	assert.Equal(t, 1, route(t, storage, id).Index)
}

func TestMultiplierScalesStep(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)
	vel := geometry.Velocity{X: 10, Y: 0, Multiplier: 3}
	id := storage.Spawn(geometry.Position{}, vel, waypoint.NewRoute(geometry.Pt(100, 0)))

	proc.Process(1)

	assert.Equal(t, geometry.Position{X: 30, Y: 0}, position(t, storage, id))
	got := ecs.ReadComponent[geometry.Velocity](storage, id)
	assert.Equal(t, 30, got.X)
	assert.Equal(t, 3.0, got.Multiplier)
}

func TestSubPixelStepsAreDropped(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)
	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(30, 0), waypoint.NewRoute(geometry.Pt(100, 0)))

	for i := 0; i < 10; i++ {
		proc.Process(1.0 / 60.0)
	}

	assert.Equal(t, geometry.Position{}, position(t, storage, id))
}

func TestSkipsIncompleteFollowers(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)

	noVelocity := storage.Spawn(geometry.Position{}, waypoint.NewRoute(geometry.Pt(10, 0)))
	noPosition := storage.Spawn(geometry.NewVelocity(10, 0), waypoint.NewRoute(geometry.Pt(10, 0)))
	empty := storage.Spawn(geometry.Position{X: 1}, geometry.NewVelocity(10, 0), waypoint.NewRoute())

	proc.Process(1)

	assert.Equal(t, geometry.Position{}, position(t, storage, noVelocity))
	assert.Equal(t, 0, route(t, storage, noVelocity).Index)
	assert.Equal(t, 0, route(t, storage, noPosition).Index)
	assert.Equal(t, geometry.Position{X: 1}, position(t, storage, empty))
	assert.True(t, ecs.Has[waypoint.Route](storage, empty))
}

func TestOutOfRangeIndexResolvedBeforeMoving(t *testing.T) {
	storage := newStorage()
	rec := &recorder{}
	proc := waypoint.NewProcessor(storage, waypoint.WithObserver(rec))

	done := waypoint.NewRoute(geometry.Pt(10, 0))
	done.Index = 3
	finished := storage.Spawn(geometry.Position{}, geometry.NewVelocity(10, 0), done)

	wrapped := waypoint.NewRoute(geometry.Pt(10, 0), geometry.Pt(20, 0)).Looping()
	wrapped.Index = 2
	looping := storage.Spawn(geometry.Position{}, geometry.NewVelocity(5, 0), wrapped)

	proc.Process(1)

	assert.Equal(t, geometry.Position{}, position(t, storage, finished))
	assert.False(t, ecs.Has[waypoint.Route](storage, finished))
	assert.Equal(t, []waypoint.Finished{{Entity: finished}}, rec.events)

	assert.Equal(t, geometry.Position{X: 5}, position(t, storage, looping))
	assert.Equal(t, 0, route(t, storage, looping).Index)
}

func TestDiagonalStepTruncates(t *testing.T) {
	storage := newStorage()
	proc := waypoint.NewProcessor(storage)
	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(10, 0), waypoint.NewRoute(geometry.Pt(100, 100)))

	proc.Process(1)

	// 10 px along the diagonal is (7.07, 7.07); both axes truncate.
	assert.Equal(t, geometry.Position{X: 7, Y: 7}, position(t, storage, id))
	vel := ecs.ReadComponent[geometry.Velocity](storage, id)
	assert.Equal(t, 7, vel.X)
	assert.Equal(t, 7, vel.Y)
}

func TestSchedulerDefersDetachUntilFlush(t *testing.T) {
	storage := newStorage()
	var seenDuringFrame bool
	proc := waypoint.NewProcessor(storage, waypoint.WithObserver(waypoint.ObserverFunc(func(ev waypoint.Finished) {
		seenDuringFrame = ecs.Has[waypoint.Route](storage, ev.Entity)
	})))

	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(proc)

	id := storage.Spawn(geometry.Position{}, geometry.NewVelocity(100, 0), waypoint.NewRoute(geometry.Pt(5, 0)))

	scheduler.Once(1)

	assert.True(t, seenDuringFrame)
	assert.False(t, ecs.Has[waypoint.Route](storage, id))
	assert.Equal(t, geometry.Position{X: 5}, position(t, storage, id))
}

func TestLogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	storage := newStorage()
	proc := waypoint.NewProcessor(storage, waypoint.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))

	loop := waypoint.NewRoute(geometry.Pt(1, 0)).Looping()
	loop.Tag = "patrol"
	storage.Spawn(geometry.Position{}, geometry.NewVelocity(10, 0), loop)
	once := waypoint.NewRoute(geometry.Pt(0, 1))
	once.Tag = "courier"
	storage.Spawn(geometry.Position{}, geometry.NewVelocity(10, 0), once)

	proc.Process(1)

	out := buf.String()
	assert.Contains(t, out, `"tag":"patrol","message":"route looped"`)
	assert.Contains(t, out, `"tag":"courier","message":"route finished"`)
}
