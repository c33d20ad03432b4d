package ecs

import "iter"

const blockSize = 64

// blockStorage holds components of type T in fixed-size blocks so that pointers
// handed out by Get stay valid while the column grows. Deleted slots are reused
// LIFO; that order is identical for every column of an archetype.
type blockStorage[T any] struct {
	blocks    []*[blockSize]T
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
	count     int
}

func (cs *blockStorage[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(cs.freeSlots); n > 0 {
		index = cs.freeSlots[n-1]
		cs.freeSlots = cs.freeSlots[:n-1]
	} else {
		index = cs.nextIndex
		cs.nextIndex++
		if index/blockSize >= len(cs.blocks) {
			cs.blocks = append(cs.blocks, new([blockSize]T))
			cs.filled = append(cs.filled, [blockSize]bool{})
		}
	}

	b, s := index/blockSize, index%blockSize
	cs.blocks[b][s] = value
	cs.filled[b][s] = true
	cs.count++
	return index
}

// Get returns a *T for the slot, or nil if it is empty.
func (cs *blockStorage[T]) Get(index int) any {
	if !cs.Has(index) {
		return nil
	}
	return &cs.blocks[index/blockSize][index%blockSize]
}

func (cs *blockStorage[T]) Delete(index int) {
	if !cs.Has(index) {
		return
	}
	b, s := index/blockSize, index%blockSize
	var zero T
	cs.blocks[b][s] = zero
	cs.filled[b][s] = false
	cs.freeSlots = append(cs.freeSlots, index)
	cs.count--
}

func (cs *blockStorage[T]) Has(index int) bool {
	if index < 0 || index >= cs.nextIndex {
		return false
	}
	return cs.filled[index/blockSize][index%blockSize]
}

func (cs *blockStorage[T]) Len() int {
	return cs.count
}

// Compact packs live slots to the front and returns old index -> new index.
func (cs *blockStorage[T]) Compact() map[int]int {
	moved := make(map[int]int, cs.count)
	if cs.count == 0 {
		cs.blocks = nil
		cs.filled = nil
		cs.freeSlots = nil
		cs.nextIndex = 0
		return moved
	}

	n := (cs.count + blockSize - 1) / blockSize
	blocks := make([]*[blockSize]T, n)
	for i := range blocks {
		blocks[i] = new([blockSize]T)
	}
	filled := make([][blockSize]bool, n)

	write := 0
	for read := range cs.Iter() {
		moved[read] = write
		blocks[write/blockSize][write%blockSize] = cs.blocks[read/blockSize][read%blockSize]
		filled[write/blockSize][write%blockSize] = true
		write++
	}

	cs.blocks = blocks
	cs.filled = filled
	cs.freeSlots = nil
	cs.nextIndex = write
	return moved
}

func (cs *blockStorage[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < cs.nextIndex; i++ {
			if cs.filled[i/blockSize][i%blockSize] && !yield(i) {
				return
			}
		}
	}
}
