package ecs

import "iter"

// iComponentStorage is a type-erased column of one component type inside an archetype.
// All columns of an archetype are appended to and deleted from in lockstep, so a row
// index addresses the same entity in every column.
type iComponentStorage interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}
