package ecs

// EntityId is a stable handle to an entity. It does not change when components are
// added to or removed from the entity, and is never reused by the same Storage.
// The zero value never refers to a live entity.
type EntityId uint64

// entityLocation is where an entity's components currently live.
type entityLocation struct {
	archetype uint32
	row       uint32
}
