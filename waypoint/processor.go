package waypoint

import (
	"math"

	"github.com/plus3/wayfarer/ecs"
	"github.com/plus3/wayfarer/geometry"
	"github.com/rs/zerolog"
)

type follower struct {
	ecs.EntityId
	*Route
	*geometry.Position
	*geometry.Velocity
}

// Processor advances every route follower by one frame. It is an ecs.System and can be
// registered on a Scheduler, or driven directly with Process.
//
// Entities that lack a Position or Velocity, and routes with no waypoints, are
// skipped. A follower at zero distance from its target or with zero speed is left
// untouched. None of these are errors.
type Processor struct {
	Followers ecs.Query[follower]

	observers []Observer
	logger    zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithObserver registers obs for route completions.
func WithObserver(obs Observer) Option {
	return func(p *Processor) {
		p.observers = append(p.observers, obs)
	}
}

// WithLogger sets the logger for route lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor returns a processor bound to storage. Registering it on a Scheduler
// rebinds it to the scheduler's store.
func NewProcessor(storage *ecs.Storage, opts ...Option) *Processor {
	p := &Processor{logger: zerolog.Nop()}
	p.Followers.Init(storage)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Observe registers obs for route completions.
func (p *Processor) Observe(obs Observer) {
	p.observers = append(p.observers, obs)
}

// Process runs one frame of dt seconds against the bound store and applies the
// resulting route detachments before returning.
func (p *Processor) Process(dt float64) {
	cmds := ecs.NewCommands()
	p.Followers.Execute()
	p.step(dt, cmds)
	if err := cmds.Flush(p.storage()); err != nil {
		p.logger.Warn().Err(err).Msg("route detachment failed")
	}
}

// Execute implements ecs.System. Detachments are queued on the frame's commands.
func (p *Processor) Execute(frame *ecs.UpdateFrame) {
	p.step(frame.DeltaTime, frame.Commands)
}

func (p *Processor) storage() *ecs.Storage {
	return p.Followers.Storage()
}

func (p *Processor) step(dt float64, cmds *ecs.Commands) {
	for f := range p.Followers.Values() {
		p.advance(f, dt, cmds)
	}
}

func (p *Processor) advance(f follower, dt float64, cmds *ecs.Commands) {
	route := f.Route
	if len(route.Waypoints) == 0 {
		return
	}
	if !p.settle(f, cmds) {
		return
	}

	target := route.Waypoints[route.Index]
	dx, dy := target.Sub(f.Position.Point())
	dist := math.Hypot(dx, dy)

	// Arrival is checked before moving: an entity already within tolerance only
	// advances its target this frame.
	if dist <= route.Tolerance {
		route.Index++
		p.settle(f, cmds)
		return
	}

	speed := f.Velocity.Speed()
	if dist == 0 || speed == 0 {
		return
	}

	ux, uy := dx/dist, dy/dist
	f.Velocity.Aim(ux, uy, speed)

	move := speed * dt
	if move >= dist {
		f.Position.Set(target)
		route.Index++
		p.settle(f, cmds)
		return
	}
	f.Position.Translate(ux*move, uy*move)
}

// settle resolves an out-of-range index. It wraps looping routes and finishes the
// others, returning false when the route has finished.
func (p *Processor) settle(f follower, cmds *ecs.Commands) bool {
	route := f.Route
	if route.Index < 0 {
		route.Index = 0
	}
	if route.Index < len(route.Waypoints) {
		return true
	}

	if route.Loop {
		route.Index = 0
		p.logger.Debug().Uint64("entity", uint64(f.EntityId)).Str("tag", route.Tag).Msg("route looped")
		return true
	}

	p.finish(f, cmds)
	return false
}

func (p *Processor) finish(f follower, cmds *ecs.Commands) {
	ev := Finished{Entity: f.EntityId, Tag: f.Route.Tag}
	p.logger.Debug().Uint64("entity", uint64(ev.Entity)).Str("tag", ev.Tag).Msg("route finished")

	for _, obs := range p.observers {
		obs.RouteFinished(ev)
	}
	ecs.Remove[Route](cmds, f.EntityId)
}
