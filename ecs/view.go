package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// View matches entities against a struct of component pointers.
//
// Every pointer field names a component type. Embedded fields are always required;
// named fields may carry the `ecs:"optional"` tag and are nil when the entity lacks
// the component. A field of type EntityId (embedded or named) receives the entity's
// id.
//
//	type mover struct {
//		ecs.EntityId
//		*Position
//		*Velocity
//		Bounds *Bounds `ecs:"optional"`
//	}
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	fieldOffset []uintptr
	idOffset    uintptr
	hasId       bool
}

// NewView builds a view for struct type T. It panics if T is malformed.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{storage: storage}
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			v.idOffset = field.Offset
			v.hasId = true
			continue
		}
		if field.Type.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types or EntityId, got " + field.Type.String())
		}

		optional := false
		if tag := field.Tag.Get("ecs"); tag != "" && !field.Anonymous {
			if tag != "optional" {
				panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
			}
			optional = true
		}

		v.types = append(v.types, field.Type.Elem())
		v.optional = append(v.optional, optional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}

	if len(v.types) == 0 {
		panic("View struct must reference at least one component")
	}
	return v
}

// Fill populates ptr for the entity. It returns false if the entity does not exist or
// lacks a required component.
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	loc, ok := v.storage.locations.Get(id)
	if !ok {
		return false
	}
	archetype := v.storage.archetypes[loc.archetype]
	if !v.matchesArchetype(archetype) {
		return false
	}
	return v.populate(unsafe.Pointer(ptr), archetype, loc.row, v.columnIndices(archetype))
}

// Get returns the populated view for the entity, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// matchesArchetype reports whether archetype carries every required component.
func (v *View[T]) matchesArchetype(archetype *Archetype) bool {
	for i, t := range v.types {
		if !v.optional[i] && !archetype.HasComponent(t) {
			return false
		}
	}
	return true
}

// columnIndices maps each view field to the archetype column holding it, or -1.
func (v *View[T]) columnIndices(archetype *Archetype) []int {
	indices := make([]int, len(v.types))
	for i, t := range v.types {
		indices[i] = archetype.column(t)
	}
	return indices
}

func (v *View[T]) populate(resultPtr unsafe.Pointer, archetype *Archetype, row uint32, columns []int) bool {
	for i, col := range columns {
		fieldPtr := unsafe.Add(resultPtr, v.fieldOffset[i])

		var component any
		if col != -1 {
			component = archetype.columns[col].Get(int(row))
		}
		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		*(*unsafe.Pointer)(fieldPtr) = dataPointer(component)
	}

	if v.hasId {
		*(*EntityId)(unsafe.Add(resultPtr, v.idOffset)) = archetype.entities[row]
	}
	return true
}

func (v *View[T]) iterArchetype(archetype *Archetype, columns []int) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(archetype.columns) == 0 {
			return
		}

		var result T
		resultPtr := unsafe.Pointer(&result)
		for row := range archetype.columns[0].Iter() {
			if !v.populate(resultPtr, archetype, uint32(row), columns) {
				continue
			}
			if !yield(archetype.entities[row], result) {
				return
			}
		}
	}
}

// Iter yields every matching entity with its populated view. Order is unspecified.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, archetype := range v.storage.archetypes {
			if !v.matchesArchetype(archetype) {
				continue
			}
			for id, item := range v.iterArchetype(archetype, v.columnIndices(archetype)) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

// Values yields just the populated views.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range v.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}

// Count returns the number of matching entities.
func (v *View[T]) Count() int {
	n := 0
	for range v.Iter() {
		n++
	}
	return n
}

// Spawn creates an entity from the non-nil component pointers in data.
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i, t := range v.types {
		componentPtr := *(*unsafe.Pointer)(unsafe.Add(structPtr, v.fieldOffset[i]))
		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}
		components = append(components, reflect.NewAt(t, componentPtr).Interface())
	}

	return v.storage.Spawn(components...)
}
