package pool

import "fmt"

// Ref points at one allocation in a Pool. Unlike a plain pointer it can tell
// when that allocation has been freed, even if the slot has since been handed
// to a new element, and it stays usable when the pool's storage grows.
//
// The zero Ref is never valid.
type Ref[T any] struct {
	pool  *Pool[T]
	index Index
	gen   Generation
}

// IsValid reports whether the referenced element is still allocated.
func (r Ref[T]) IsValid() bool {
	if r.pool == nil || r.gen == InvalidGeneration {
		return false
	}
	if int(r.index) >= len(r.pool.elements) {
		return false
	}
	return r.pool.elements[r.index].gen == r.gen
}

// Get returns the referenced data. Calling it on an invalid Ref is a bug and
// panics.
//
// The pointer must not be kept across an allocation: growth moves storage.
func (r Ref[T]) Get() *T {
	if !r.IsValid() {
		panic(fmt.Sprintf("pool: dereference of stale %s", r))
	}
	return &r.pool.elements[r.index].data
}

// Ptr is Get without the panic: it returns nil for an invalid Ref.
func (r Ref[T]) Ptr() *T {
	if !r.IsValid() {
		return nil
	}
	return &r.pool.elements[r.index].data
}

// Iterator converts r to an iterator positioned at its slot. r must be valid.
func (r Ref[T]) Iterator() Iterator[T] {
	return Iterator[T]{pool: r.pool, index: r.index}
}

func (r Ref[T]) Index() Index           { return r.index }
func (r Ref[T]) Generation() Generation { return r.gen }
func (r Ref[T]) Pool() *Pool[T]         { return r.pool }

func (r Ref[T]) String() string {
	return fmt.Sprintf("Ref(%d:%d)", r.index, r.gen)
}
