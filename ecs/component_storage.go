package ecs

import (
	"iter"
	"reflect"
)

// iComponentStorage is an interface for a type-erased component storage.
type iComponentStorage interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Cap() int
	Reserve(slots int)
	Iter() iter.Seq[int]
}

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage instance has its own ComponentRegistry, allowing multiple
// independent simulations to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a new component type with the given registry.
// This must be called for each component type before it can be used.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStorage {
		return &blockStorage[T]{}
	}
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

const blockSize = 64

// blockStorage stores components of type T inline in fixed-size blocks.
//
// The outer block slice is the only thing that ever reallocates. Growing it
// copies every block and invalidates pointers handed out by Get, which is why
// creation goes through Queue: Reserve is called before a command runs so the
// appends it performs stay within capacity.
type blockStorage[T any] struct {
	blocks    [][blockSize]T
	filled    [][blockSize]bool
	freeSlots []int
	nextIndex int
	live      int
}

func (cs *blockStorage[T]) Append(item any) int {
	var concrete T
	if ptr, ok := item.(*T); ok {
		concrete = *ptr
	} else if val, ok := item.(T); ok {
		concrete = val
	} else {
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
			cs.blocks = append(cs.blocks, [blockSize]T{})
			cs.filled = append(cs.filled, [blockSize]bool{})
		}
	}

	cs.blocks[index/blockSize][index%blockSize] = concrete
	cs.filled[index/blockSize][index%blockSize] = true
	cs.live++
	return index
}

// Get returns a pointer to the component at the given index.
func (cs *blockStorage[T]) Get(index int) any {
	if !cs.Has(index) {
		return nil
	}
	return &cs.blocks[index/blockSize][index%blockSize]
}

// Delete marks a component slot as empty and zeroes it.
func (cs *blockStorage[T]) Delete(index int) {
	if !cs.Has(index) {
		return
	}
	var zero T
	cs.filled[index/blockSize][index%blockSize] = false
	cs.blocks[index/blockSize][index%blockSize] = zero
	cs.freeSlots = append(cs.freeSlots, index)
	cs.live--
}

func (cs *blockStorage[T]) Has(index int) bool {
	if index < 0 || index/blockSize >= len(cs.blocks) {
		return false
	}
	return cs.filled[index/blockSize][index%blockSize]
}

// Len returns the number of live components.
func (cs *blockStorage[T]) Len() int {
	return cs.live
}

// Cap returns how many components fit before the block slice reallocates.
func (cs *blockStorage[T]) Cap() int {
	return cap(cs.blocks) * blockSize
}

// Reserve grows the block slice so that at least slots components fit
// without reallocation.
func (cs *blockStorage[T]) Reserve(slots int) {
	need := (slots + blockSize - 1) / blockSize
	if need <= cap(cs.blocks) {
		return
	}
	blocks := make([][blockSize]T, len(cs.blocks), need)
	copy(blocks, cs.blocks)
	filled := make([][blockSize]bool, len(cs.filled), need)
	copy(filled, cs.filled)
	cs.blocks = blocks
	cs.filled = filled
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
