package pool

import (
	"fmt"
	"math"
)

// Index addresses a slot in the pool's backing slice.
type Index uint32

// Generation tags successive occupants of the same slot. A Ref is valid only
// while its captured generation matches the slot's live one.
//
// The counter is 64 bits wide. It still wraps after 2^64-1 allocations from a
// single pool, at which point a Ref held across the whole cycle could collide
// with a new occupant. That case is not detected.
type Generation uint64

// InvalidGeneration marks a free slot or a sentinel.
const InvalidGeneration Generation = 0

// Sentinel slots. They never carry data and only anchor the two lists.
const (
	usedHead Index = 0
	usedTail Index = 1
	freeHead Index = 2
	freeTail Index = 3

	// Reserved is the minimal storage size: the four sentinels.
	Reserved = 4
)

// maxSlots bounds storage so every slot count fits in an int on any platform.
const maxSlots = math.MaxInt32

// Location selects where a newly allocated slot joins the used list.
type Location int

const (
	AddToFront Location = iota // iterated first
	AddToBack                  // iterated last
)

type element[T any] struct {
	data T
	next Index
	prev Index
	gen  Generation
}

// Pool is a slice-backed allocator that threads a used list and a free list
// through its slots. Allocation and free are O(1); references are index based
// so they survive growth of the backing slice.
//
// It is not safe for concurrent use.
type Pool[T any] struct {
	elements []element[T]
	active   int
	nextGen  Generation
	init     func(*T)
	teardown func(*T)
}

// Option configures a Pool at construction.
type Option[T any] func(*Pool[T])

// WithInit runs fn on every freshly allocated element after it has been
// reset to its zero value.
func WithInit[T any](fn func(*T)) Option[T] {
	return func(p *Pool[T]) { p.init = fn }
}

// WithTeardown runs fn on a live element when it is freed, and on every live
// element during Clear.
func WithTeardown[T any](fn func(*T)) Option[T] {
	return func(p *Pool[T]) { p.teardown = fn }
}

func New[T any](opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{
		elements: make([]element[T], Reserved),
		nextGen:  InvalidGeneration + 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.resetLists()
	return p
}

// Allocate takes a slot, resets its data and returns a Ref to it. The slot is
// placed at the front of the used list.
func (p *Pool[T]) Allocate() Ref[T] {
	return p.AllocateAt(AddToFront)
}

// AllocateAt is Allocate with an explicit used-list position.
func (p *Pool[T]) AllocateAt(loc Location) Ref[T] {
	var idx Index
	if first := p.elements[freeHead].next; first != freeTail {
		idx = first
		p.unlink(idx)
	} else {
		if len(p.elements) >= maxSlots {
			panic(fmt.Sprintf("pool: cannot grow past %d slots", maxSlots))
		}
		idx = Index(len(p.elements))
		p.elements = append(p.elements, element[T]{})
	}

	switch loc {
	case AddToBack:
		p.linkAfter(idx, p.elements[usedTail].prev)
	default:
		p.linkAfter(idx, usedHead)
	}
	p.active++

	e := &p.elements[idx]
	var zero T
	e.data = zero
	if p.init != nil {
		p.init(&e.data)
	}
	e.gen = p.allocateGeneration()
	return Ref[T]{pool: p, index: idx, gen: e.gen}
}

// Free releases the slot ref points at. It reports false and does nothing
// when ref is no longer valid.
func (p *Pool[T]) Free(ref Ref[T]) bool {
	if ref.pool != nil && ref.pool != p {
		panic("pool: ref belongs to a different pool")
	}
	if !ref.IsValid() {
		return false
	}
	p.FreeIndex(ref.index)
	return true
}

// FreeIndex releases the used slot at idx. Freeing a sentinel, an
// out-of-range index or a slot that is already free panics.
func (p *Pool[T]) FreeIndex(idx Index) {
	p.checkSlot(idx)
	if p.elements[idx].gen == InvalidGeneration {
		panic(fmt.Sprintf("pool: slot %d is already free", idx))
	}
	if p.teardown != nil {
		p.teardown(&p.elements[idx].data)
	}
	var zero T
	p.elements[idx].data = zero

	p.unlink(idx)
	p.linkAfter(idx, freeHead)
	p.elements[idx].gen = InvalidGeneration
	p.active--
}

// FreeAt releases the slot under it and returns the iterator that followed
// it, so a loop can free while it walks.
func (p *Pool[T]) FreeAt(it Iterator[T]) Iterator[T] {
	if it.pool != p {
		panic("pool: iterator belongs to a different pool")
	}
	next := it.Next()
	p.FreeIndex(it.index)
	return next
}

// Reserve grows storage to exactly n slots, all of them free. It does nothing
// if the pool already holds n slots.
func (p *Pool[T]) Reserve(n int) {
	cur := len(p.elements)
	if cur >= n {
		return
	}
	if n > maxSlots {
		panic(fmt.Sprintf("pool: cannot reserve %d slots", n))
	}
	if n > cap(p.elements) {
		grown := make([]element[T], cur, n)
		copy(grown, p.elements)
		p.elements = grown
	}
	p.elements = p.elements[:n]
	for i := cur; i < n; i++ {
		p.elements[i] = element[T]{}
		p.linkAfter(Index(i), freeHead)
	}
}

// Clear tears down every live element and shrinks storage back to the
// sentinels. The generation counter keeps running, so refs taken before
// Clear never become valid again.
func (p *Pool[T]) Clear() {
	if p.teardown != nil {
		for i := p.elements[usedHead].next; i != usedTail; i = p.elements[i].next {
			p.teardown(&p.elements[i].data)
		}
	}
	clear(p.elements[Reserved:])
	p.elements = p.elements[:Reserved]
	p.resetLists()
}

// Size is the number of slots, sentinels and free slots included.
func (p *Pool[T]) Size() int {
	return len(p.elements)
}

// ActiveCount is the number of allocated elements.
func (p *Pool[T]) ActiveCount() int {
	return p.active
}

// At returns the data stored at idx. The pointer is only good until the next
// allocation that grows the pool.
func (p *Pool[T]) At(idx Index) *T {
	p.checkSlot(idx)
	return &p.elements[idx].data
}

// Begin is the first used element, or End when the pool is empty.
func (p *Pool[T]) Begin() Iterator[T] {
	return Iterator[T]{pool: p, index: p.elements[usedHead].next}
}

// End is the position one past the last used element.
func (p *Pool[T]) End() Iterator[T] {
	return Iterator[T]{pool: p, index: usedTail}
}

// Last is the final used element, or Rend when the pool is empty.
func (p *Pool[T]) Last() Iterator[T] {
	return Iterator[T]{pool: p, index: p.elements[usedTail].prev}
}

// Rend is the position before the first used element.
func (p *Pool[T]) Rend() Iterator[T] {
	return Iterator[T]{pool: p, index: usedHead}
}

// Each visits used elements in list order. fn may free the element it is
// given; it must not free any other element.
func (p *Pool[T]) Each(fn func(Ref[T], *T)) {
	for it := p.Begin(); it != p.End(); {
		next := it.Next()
		e := &p.elements[it.index]
		fn(Ref[T]{pool: p, index: it.index, gen: e.gen}, &e.data)
		it = next
	}
}

// Check walks both lists and verifies that together they cover every
// non-sentinel slot exactly once.
func (p *Pool[T]) Check() error {
	seen := make([]bool, len(p.elements))
	walk := func(head, tail Index, used bool) (int, error) {
		n := 0
		prev := head
		for i := p.elements[head].next; i != tail; i = p.elements[i].next {
			if int(i) < Reserved || int(i) >= len(p.elements) {
				return n, fmt.Errorf("list from %d reaches bad index %d", head, i)
			}
			if seen[i] {
				return n, fmt.Errorf("slot %d linked twice", i)
			}
			seen[i] = true
			if p.elements[i].prev != prev {
				return n, fmt.Errorf("slot %d prev is %d, want %d", i, p.elements[i].prev, prev)
			}
			if live := p.elements[i].gen != InvalidGeneration; live != used {
				return n, fmt.Errorf("slot %d generation %d in wrong list", i, p.elements[i].gen)
			}
			prev = i
			n++
		}
		if p.elements[tail].prev != prev {
			return n, fmt.Errorf("tail %d prev is %d, want %d", tail, p.elements[tail].prev, prev)
		}
		return n, nil
	}

	used, err := walk(usedHead, usedTail, true)
	if err != nil {
		return fmt.Errorf("used list: %w", err)
	}
	free, err := walk(freeHead, freeTail, false)
	if err != nil {
		return fmt.Errorf("free list: %w", err)
	}
	if used != p.active {
		return fmt.Errorf("active count %d, used list holds %d", p.active, used)
	}
	if total := used + free + Reserved; total != len(p.elements) {
		return fmt.Errorf("lists cover %d slots, storage holds %d", total, len(p.elements))
	}
	return nil
}

func (p *Pool[T]) resetLists() {
	for i := Index(0); i < Reserved; i++ {
		p.elements[i] = element[T]{}
	}
	p.elements[usedHead].next = usedTail
	p.elements[usedTail].prev = usedHead
	p.elements[freeHead].next = freeTail
	p.elements[freeTail].prev = freeHead
	p.active = 0
}

// unlink detaches idx from whichever list holds it. The caller must relink it.
func (p *Pool[T]) unlink(idx Index) {
	e := &p.elements[idx]
	p.elements[e.prev].next = e.next
	p.elements[e.next].prev = e.prev
}

// linkAfter splices idx in right after at.
func (p *Pool[T]) linkAfter(idx, at Index) {
	next := p.elements[at].next
	p.elements[next].prev = idx
	p.elements[idx].prev = at
	p.elements[idx].next = next
	p.elements[at].next = idx
}

func (p *Pool[T]) checkSlot(idx Index) {
	if int(idx) >= len(p.elements) {
		panic(fmt.Sprintf("pool: index %d out of range [%d:%d)", idx, Reserved, len(p.elements)))
	}
	if idx < Reserved {
		panic(fmt.Sprintf("pool: index %d is a sentinel", idx))
	}
}

func (p *Pool[T]) allocateGeneration() Generation {
	g := p.nextGen
	p.nextGen++
	if p.nextGen == InvalidGeneration {
		p.nextGen++
	}
	return g
}
