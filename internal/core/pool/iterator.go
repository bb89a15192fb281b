package pool

// Iterator walks the used list. It carries no generation, so it assumes the
// slot it sits on is allocated; positions obtained from Begin, Next or FreeAt
// always are.
//
//	for it := p.Begin(); it != p.End(); it = it.Next() {
//		use(it.Value())
//	}
type Iterator[T any] struct {
	pool  *Pool[T]
	index Index
}

// Next steps forward. Stepping from End is undefined.
func (it Iterator[T]) Next() Iterator[T] {
	return Iterator[T]{pool: it.pool, index: it.pool.elements[it.index].next}
}

// Prev steps backward. Stepping from Rend is undefined.
func (it Iterator[T]) Prev() Iterator[T] {
	return Iterator[T]{pool: it.pool, index: it.pool.elements[it.index].prev}
}

// Value returns the data under the iterator. It panics when the iterator sits
// on End, Rend or outside storage.
func (it Iterator[T]) Value() *T {
	return it.pool.At(it.index)
}

// Ref captures the slot's current generation.
func (it Iterator[T]) Ref() Ref[T] {
	it.pool.checkSlot(it.index)
	return Ref[T]{pool: it.pool, index: it.index, gen: it.pool.elements[it.index].gen}
}

func (it Iterator[T]) Index() Index { return it.index }
