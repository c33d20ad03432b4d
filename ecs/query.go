package ecs

import "iter"

// Query is a View that snapshots its matches once per frame. Systems declare Query
// fields; the Scheduler binds them to its store and calls Execute before the system
// runs, so a system always iterates the world as it was when its turn began.
type Query[T any] struct {
	view               *View[T]
	storage            *Storage
	cachedArchetypes   []*Archetype
	cachedColumns      [][]int
	lastArchetypeCount int

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a query bound to storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds or rebinds the query to storage and drops every cache.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cachedArchetypes = nil
	q.cachedColumns = nil
	q.lastArchetypeCount = -1
	q.cacheValid = false
}

// Execute rebuilds the per-frame snapshot.
func (q *Query[T]) Execute() {
	q.ensureArchetypeCache()

	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]
	for i, archetype := range q.cachedArchetypes {
		for id, item := range q.view.iterArchetype(archetype, q.cachedColumns[i]) {
			q.cachedEntities = append(q.cachedEntities, id)
			q.cachedComponents = append(q.cachedComponents, item)
		}
	}

	q.cacheValid = true
}

// ensureArchetypeCache recomputes matching archetypes when new ones have appeared.
// Archetypes are never removed from a store, so the count is a sufficient version.
func (q *Query[T]) ensureArchetypeCache() {
	count := len(q.storage.archetypes)
	if count == q.lastArchetypeCount {
		return
	}
	q.lastArchetypeCount = count

	q.cachedArchetypes = q.cachedArchetypes[:0]
	q.cachedColumns = q.cachedColumns[:0]
	for _, archetype := range q.storage.archetypes {
		if q.view.matchesArchetype(archetype) {
			q.cachedArchetypes = append(q.cachedArchetypes, archetype)
			q.cachedColumns = append(q.cachedColumns, q.view.columnIndices(archetype))
		}
	}
}

// Storage returns the store the query is bound to.
func (q *Query[T]) Storage() *Storage {
	return q.storage
}

// Len returns the number of entities in the current snapshot.
func (q *Query[T]) Len() int {
	return len(q.cachedEntities)
}

// Iter yields the snapshot's entities and views.
// Panics if Execute has not been called since the query was bound.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if !q.cacheValid {
		panic("Query.Iter() called before Query.Execute()")
	}

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values yields the snapshot's views.
func (q *Query[T]) Values() iter.Seq[T] {
	if !q.cacheValid {
		panic("Query.Values() called before Query.Execute()")
	}

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}
