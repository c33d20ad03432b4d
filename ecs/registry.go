package ecs

import "reflect"

// ComponentRegistry records which component types a Storage may hold and how to
// build a column for each of them. Every Storage owns exactly one registry, so
// independent worlds never share component state.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent makes T usable as a component. Registering the same type twice
// is harmless.
func RegisterComponent[T any](r *ComponentRegistry) {
	r.factories[reflect.TypeFor[T]()] = func() iComponentStorage {
		return &blockStorage[T]{}
	}
}

func (r *ComponentRegistry) newColumn(t reflect.Type) iComponentStorage {
	factory, ok := r.factories[t]
	if !ok {
		panic("component type " + t.String() + " not registered")
	}
	return factory()
}
