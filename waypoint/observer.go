package waypoint

import "github.com/plus3/wayfarer/ecs"

// Finished describes a non-looping route that has just been completed.
type Finished struct {
	Entity ecs.EntityId
	Tag    string
}

// Observer is told when an entity completes a non-looping route. It is called
// synchronously from the processing pass, once per completion, while the route is
// still attached; the route is detached when the pass's commands are flushed.
// Observers must not change the store's layout directly; use the frame's Commands.
type Observer interface {
	RouteFinished(Finished)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Finished)

func (f ObserverFunc) RouteFinished(ev Finished) {
	f(ev)
}

// Channel is an Observer that forwards completions to a buffered channel. When the
// buffer is full the event is dropped and counted rather than blocking the frame.
type Channel struct {
	C       chan Finished
	dropped int
}

// NewChannel returns a Channel observer with the given buffer size.
func NewChannel(size int) *Channel {
	return &Channel{C: make(chan Finished, size)}
}

func (c *Channel) RouteFinished(ev Finished) {
	select {
	case c.C <- ev:
	default:
		c.dropped++
	}
}

// Dropped returns how many events did not fit in the buffer.
func (c *Channel) Dropped() int {
	return c.dropped
}
