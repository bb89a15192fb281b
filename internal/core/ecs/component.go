package ecs

import (
	"fmt"
	"time"

	"github.com/piefight/server/internal/core/pool"
)

// ComponentID identifies a component type within a World.
type ComponentID uint8

// MaxComponents bounds the number of component types per World.
const MaxComponents = 32

// Component is implemented by every component store so the World can attach,
// detach, update and clear entities generically.
type Component interface {
	ID() ComponentID
	AddEntity(e Entity)
	RemoveEntity(e Entity)
	Has(e Entity) bool
	Update(dt time.Duration)
	ClearEntityData()
	Len() int
}

// Hooks are optional per-entity callbacks run by a Store.
type Hooks[T any] struct {
	Init    func(e Entity, data *T)                   // after the data slot is allocated
	Cleanup func(e Entity, data *T)                   // before the data slot is released
	Update  func(dt time.Duration, e Entity, data *T) // once per World.Update
}

type entry[T any] struct {
	entity Entity
	data   T
}

// Store keeps one component's data in its own pool, so data for live
// entities stays contiguous and slots are recycled as entities come and go.
type Store[T any] struct {
	id     ComponentID
	data   *pool.Pool[entry[T]]
	lookup map[pool.Index]pool.Ref[entry[T]] // entity index -> data slot
	hooks  Hooks[T]
}

func NewStore[T any](id ComponentID, hooks Hooks[T]) *Store[T] {
	if id >= MaxComponents {
		panic(fmt.Sprintf("ecs: component id %d out of range", id))
	}
	s := &Store[T]{
		id:     id,
		lookup: make(map[pool.Index]pool.Ref[entry[T]], 64),
		hooks:  hooks,
	}
	s.data = pool.New(pool.WithTeardown(func(en *entry[T]) {
		if s.hooks.Cleanup != nil {
			s.hooks.Cleanup(en.entity, &en.data)
		}
	}))
	return s
}

func (s *Store[T]) ID() ComponentID { return s.id }

// Add attaches the component to e and returns its zeroed data. Adding to an
// entity that already has it returns the existing data.
//
// The returned pointer is only good until the next Add grows the store.
func (s *Store[T]) Add(e Entity) *T {
	if !e.IsValid() {
		panic(fmt.Sprintf("ecs: add component %d to dead entity %s", s.id, e))
	}
	if ref, ok := s.find(e); ok {
		return &ref.Get().data
	}
	if old, ok := s.lookup[e.Index()]; ok && old.IsValid() {
		// Left behind by an earlier occupant of the same entity slot.
		s.release(old)
	}
	ref := s.data.Allocate()
	en := ref.Get()
	en.entity = e
	s.lookup[e.Index()] = ref
	e.Get().set(s.id)
	if s.hooks.Init != nil {
		s.hooks.Init(e, &en.data)
	}
	return &ref.Get().data
}

func (s *Store[T]) AddEntity(e Entity) { s.Add(e) }

// Get returns e's data for this component.
func (s *Store[T]) Get(e Entity) (*T, bool) {
	ref, ok := s.find(e)
	if !ok {
		return nil, false
	}
	return &ref.Get().data, true
}

func (s *Store[T]) Has(e Entity) bool {
	_, ok := s.find(e)
	return ok
}

// Remove detaches the component from e. Unknown or stale entities are
// ignored.
func (s *Store[T]) Remove(e Entity) {
	ref, ok := s.find(e)
	if !ok {
		return
	}
	s.release(ref)
}

func (s *Store[T]) RemoveEntity(e Entity) { s.Remove(e) }

func (s *Store[T]) Len() int {
	return s.data.ActiveCount()
}

// Reserve makes room for n entities before the store has to grow.
func (s *Store[T]) Reserve(n int) {
	s.data.Reserve(n + pool.Reserved)
}

// Check verifies the store's pool bookkeeping and its entity index.
func (s *Store[T]) Check() error {
	if err := s.data.Check(); err != nil {
		return fmt.Errorf("component %d: %w", s.id, err)
	}
	if len(s.lookup) != s.data.ActiveCount() {
		return fmt.Errorf("component %d: index holds %d entities, pool holds %d", s.id, len(s.lookup), s.data.ActiveCount())
	}
	return nil
}

// Each visits every entity holding this component, most recently added
// first.
func (s *Store[T]) Each(fn func(Entity, *T)) {
	s.data.Each(func(_ pool.Ref[entry[T]], en *entry[T]) {
		fn(en.entity, &en.data)
	})
}

// Sweep visits every entity holding this component and detaches those for
// which fn returns true. Detaching happens in place while walking. fn must
// not remove entities from this store itself; defer destruction instead.
func (s *Store[T]) Sweep(fn func(Entity, *T) bool) int {
	removed := 0
	for it := s.data.Begin(); it != s.data.End(); {
		en := it.Value()
		if !fn(en.entity, &en.data) {
			it = it.Next()
			continue
		}
		// fn may have grown the store; re-read through the index.
		en = it.Value()
		s.forget(en.entity)
		it = s.data.FreeAt(it)
		removed++
	}
	return removed
}

func (s *Store[T]) Update(dt time.Duration) {
	if s.hooks.Update == nil {
		return
	}
	for it := s.data.Begin(); it != s.data.End(); it = it.Next() {
		en := it.Value()
		s.hooks.Update(dt, en.entity, &en.data)
	}
}

// ClearEntityData detaches every entity from this component.
func (s *Store[T]) ClearEntityData() {
	s.data.Each(func(_ pool.Ref[entry[T]], en *entry[T]) {
		if d := en.entity.Ptr(); d != nil {
			d.unset(s.id)
		}
	})
	s.data.Clear()
	clear(s.lookup)
}

func (s *Store[T]) find(e Entity) (pool.Ref[entry[T]], bool) {
	if !e.IsValid() {
		return pool.Ref[entry[T]]{}, false
	}
	ref, ok := s.lookup[e.Index()]
	if !ok || !ref.IsValid() || ref.Get().entity != e {
		return pool.Ref[entry[T]]{}, false
	}
	return ref, true
}

func (s *Store[T]) release(ref pool.Ref[entry[T]]) {
	s.forget(ref.Get().entity)
	s.data.Free(ref)
}

func (s *Store[T]) forget(e Entity) {
	delete(s.lookup, e.Index())
	if d := e.Ptr(); d != nil {
		d.unset(s.id)
	}
}
