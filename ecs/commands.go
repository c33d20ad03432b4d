package ecs

import (
	"errors"
	"reflect"
)

// Commands buffers structural changes made while systems iterate, and applies them
// when flushed at the end of the frame.
type Commands struct {
	spawns  [][]any
	deletes []EntityId
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// NewCommands returns an empty buffer.
func NewCommands() *Commands {
	return &Commands{}
}

// Defer queues fn to run after every other queued command.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity deletion.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{entity: entity, component: component})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{entity: entity, compType: compType})
}

// Remove queues removal of the entity's T component.
func Remove[T any](c *Commands, entity EntityId) {
	c.RemoveComponent(entity, reflect.TypeFor[T]())
}

// Pending returns the number of queued commands.
func (c *Commands) Pending() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies the buffer to storage in the order deletes, removes, adds, spawns,
// defers, then resets it. Commands aimed at an entity deleted in the same flush are
// dropped. Every command is attempted; the failures are returned joined.
func (c *Commands) Flush(storage *Storage) error {
	var errs []error
	deleted := make(map[EntityId]struct{}, len(c.deletes))

	for _, id := range c.deletes {
		if _, ok := deleted[id]; ok {
			continue
		}
		deleted[id] = struct{}{}
		if err := storage.Delete(id); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.removes {
		if _, ok := deleted[cmd.entity]; ok {
			continue
		}
		if err := storage.RemoveComponent(cmd.entity, cmd.compType); err != nil {
			errs = append(errs, err)
		}
	}

	for _, cmd := range c.adds {
		if _, ok := deleted[cmd.entity]; ok {
			continue
		}
		if err := storage.AddComponent(cmd.entity, cmd.component); err != nil {
			errs = append(errs, err)
		}
	}

	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]

	return errors.Join(errs...)
}
