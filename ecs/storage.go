package ecs

import (
	"reflect"
	"sort"
	"unsafe"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// Storage is an entity/component store. Entities live in archetypes keyed by their
// exact set of component types; adding or removing a component moves the entity to
// another archetype while its EntityId stays the same.
//
// Storage is not safe for concurrent use. Structural changes made while iterating a
// View are undefined; queue them on a Commands buffer instead.
type Storage struct {
	archetypes map[uint32]*Archetype
	registry   *ComponentRegistry
	locations  *intmap.Map[EntityId, entityLocation]
	singletons map[reflect.Type]*singletonEntry
	lastId     EntityId
}

// NewStorage creates an empty store for the component types in registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		registry:   registry,
		locations:  intmap.New[EntityId, entityLocation](256),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry the store was created with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Spawn creates a new entity with the provided components. Components may be passed
// by value or by pointer; the store keeps its own copy.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	archetype := s.archetypeFor(types)

	s.lastId++
	id := s.lastId
	row := archetype.spawn(id, components)
	s.locations.Put(id, entityLocation{archetype: archetype.id, row: row})
	return id
}

// Alive reports whether id refers to an entity in this store.
func (s *Storage) Alive(id EntityId) bool {
	return s.locations.Has(id)
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return s.locations.Len()
}

// Delete removes the entity and all of its components.
func (s *Storage) Delete(id EntityId) error {
	loc, ok := s.locations.Get(id)
	if !ok {
		return eris.Wrapf(ErrEntityNotFound, "delete entity %d", id)
	}
	s.archetypes[loc.archetype].delete(loc.row)
	s.locations.Del(id)
	return nil
}

// AddComponent attaches component to the entity, moving it to the matching archetype.
func (s *Storage) AddComponent(id EntityId, component any) error {
	loc, ok := s.locations.Get(id)
	if !ok {
		return eris.Wrapf(ErrEntityNotFound, "add component to entity %d", id)
	}
	old := s.archetypes[loc.archetype]

	compType := componentType(component)
	if old.HasComponent(compType) {
		return eris.Wrapf(ErrComponentAlreadyOnEntity, "add %s to entity %d", compType, id)
	}

	types := make([]reflect.Type, 0, len(old.types)+1)
	types = append(types, old.types...)
	types = append(types, compType)
	sort.Sort(byTypeName(types))

	components := make([]any, 0, len(types))
	for _, t := range old.types {
		components = append(components, old.component(loc.row, t))
	}
	components = append(components, component)

	s.move(id, loc, s.archetypeFor(types), components)
	return nil
}

// RemoveComponent detaches the component of type compType. Removing the last
// component deletes the entity.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) error {
	loc, ok := s.locations.Get(id)
	if !ok {
		return eris.Wrapf(ErrEntityNotFound, "remove %s from entity %d", compType, id)
	}
	old := s.archetypes[loc.archetype]
	if !old.HasComponent(compType) {
		return eris.Wrapf(ErrComponentNotOnEntity, "remove %s from entity %d", compType, id)
	}

	if len(old.types) == 1 {
		old.delete(loc.row)
		s.locations.Del(id)
		return nil
	}

	types := make([]reflect.Type, 0, len(old.types)-1)
	components := make([]any, 0, len(old.types)-1)
	for _, t := range old.types {
		if t == compType {
			continue
		}
		types = append(types, t)
		components = append(components, old.component(loc.row, t))
	}

	s.move(id, loc, s.archetypeFor(types), components)
	return nil
}

// move copies components into target and frees the entity's old row.
func (s *Storage) move(id EntityId, from entityLocation, target *Archetype, components []any) {
	row := target.spawn(id, components)
	s.archetypes[from.archetype].delete(from.row)
	s.locations.Put(id, entityLocation{archetype: target.id, row: row})
}

// GetComponent returns a pointer to the entity's component of type compType, or nil
// if the entity does not exist or lacks the component.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	loc, ok := s.locations.Get(id)
	if !ok {
		return nil
	}
	return s.archetypes[loc.archetype].component(loc.row, compType)
}

// HasComponent reports whether the entity carries a component of type compType.
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	loc, ok := s.locations.Get(id)
	if !ok {
		return false
	}
	return s.archetypes[loc.archetype].HasComponent(compType)
}

// ArchetypeOf returns the archetype currently holding the entity.
func (s *Storage) ArchetypeOf(id EntityId) *Archetype {
	loc, ok := s.locations.Get(id)
	if !ok {
		return nil
	}
	return s.archetypes[loc.archetype]
}

// GetArchetype returns the archetype for exactly the given component types, if one exists.
func (s *Storage) GetArchetype(types ...reflect.Type) *Archetype {
	sorted := append([]reflect.Type(nil), types...)
	sort.Sort(byTypeName(sorted))
	return s.archetypes[hashTypesToUint32(sorted)]
}

// Archetypes calls fn for every archetype in the store.
func (s *Storage) Archetypes(fn func(*Archetype)) {
	for _, a := range s.archetypes {
		fn(a)
	}
}

// Compact packs every archetype's rows. Entity ids are unaffected; component
// pointers obtained earlier are not.
func (s *Storage) Compact() {
	for _, a := range s.archetypes {
		for id, row := range a.compact() {
			s.locations.Put(id, entityLocation{archetype: a.id, row: row})
		}
	}
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypesToUint32(types)
	archetype, ok := s.archetypes[id]
	if !ok {
		archetype = newArchetype(id, types, s.registry)
		s.archetypes[id] = archetype
	}
	return archetype
}

// extractComponentTypes returns the sorted component types of components.
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		t := componentType(comp)

		// Components are value types; a pointer to a pointer or a func is almost
		// always a mistake at the call site.
		switch t.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func:
			panic("components cannot be pointers, maps, channels, or functions")
		}
		for _, seen := range types {
			if seen == t {
				panic("duplicate component type " + t.String())
			}
		}

		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// hashTypesToUint32 is FNV-1a over the runtime type pointers of a sorted type list.
func hashTypesToUint32(types []reflect.Type) uint32 {
	var h uint32 = 2166136261
	const prime uint32 = 16777619

	for _, t := range types {
		ptr := uintptr(dataPointer(t))
		val := uint32(ptr)
		if unsafe.Sizeof(ptr) == 8 {
			val ^= uint32(uint64(ptr) >> 32)
		}

		h ^= val
		h *= prime
	}

	return h
}

// ComponentReader is anything that can look components up by entity.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil.
func ReadComponent[T any](reader ComponentReader, id EntityId) *T {
	comp, _ := reader.GetComponent(id, reflect.TypeFor[T]()).(*T)
	return comp
}

// Has reports whether the entity carries a T component.
func Has[T any](s *Storage, id EntityId) bool {
	return s.HasComponent(id, reflect.TypeFor[T]())
}
