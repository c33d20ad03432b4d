package ecs

import (
	"reflect"
	"slices"
)

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

// Archetype stores every entity that has exactly one particular set of component types.
type Archetype struct {
	id       uint32
	types    []reflect.Type
	columns  []iComponentStorage
	entities []EntityId // row -> owner, zero for free rows
}

func newArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]iComponentStorage, len(types)),
	}
	for i, t := range types {
		a.columns[i] = registry.newColumn(t)
	}
	return a
}

// spawn appends one row holding components for entity and returns the row.
// components may be values or pointers, in any order.
func (a *Archetype) spawn(entity EntityId, components []any) uint32 {
	row := -1
	for _, comp := range components {
		col := a.column(componentType(comp))
		if col == -1 {
			panic("component " + componentType(comp).String() + " does not belong to archetype")
		}
		row = a.columns[col].Append(comp)
	}

	for row >= len(a.entities) {
		a.entities = append(a.entities, 0)
	}
	a.entities[row] = entity
	return uint32(row)
}

// delete clears a row in every column.
func (a *Archetype) delete(row uint32) {
	for _, col := range a.columns {
		col.Delete(int(row))
	}
	if int(row) < len(a.entities) {
		a.entities[row] = 0
	}
}

func (a *Archetype) column(t reflect.Type) int {
	for i, typ := range a.types {
		if typ == t {
			return i
		}
	}
	return -1
}

// component returns a pointer to the row's component of type t, or nil.
func (a *Archetype) component(row uint32, t reflect.Type) any {
	col := a.column(t)
	if col == -1 {
		return nil
	}
	return a.columns[col].Get(int(row))
}

// HasComponent reports whether this archetype's entities carry component type t.
func (a *Archetype) HasComponent(t reflect.Type) bool {
	return slices.Contains(a.types, t)
}

// ID returns the archetype's hash of its component types.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the archetype's component types sorted by name.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].Len()
}

// Iter yields the live entities of this archetype in row order.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}
		for row := range a.columns[0].Iter() {
			if !yield(a.entities[row]) {
				return
			}
		}
	}
}

// compact packs rows and returns the entities whose row changed, keyed to the new row.
func (a *Archetype) compact() map[EntityId]uint32 {
	if len(a.columns) == 0 {
		return nil
	}

	moved := a.columns[0].Compact()
	for _, col := range a.columns[1:] {
		col.Compact()
	}

	entities := make([]EntityId, len(moved))
	relocated := make(map[EntityId]uint32)
	for oldRow, newRow := range moved {
		id := a.entities[oldRow]
		entities[newRow] = id
		if oldRow != newRow {
			relocated[id] = uint32(newRow)
		}
	}
	a.entities = entities
	return relocated
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
