package ecs

import (
	"fmt"
	"time"

	"github.com/piefight/server/internal/core/pool"
	"go.uber.org/zap"
)

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed at the end of Update (or
// by CleanupSystem each tick).
type World struct {
	entities     *pool.Pool[EntityData]
	registry     *Registry
	destroyQueue []Entity
	onDestroy    func(Entity)
	log          *zap.Logger
}

// NewWorld creates a world whose entity pool has room for reserve entities
// before it needs to grow.
func NewWorld(reserve int, log *zap.Logger) *World {
	w := &World{
		entities:     pool.New[EntityData](),
		registry:     NewRegistry(),
		destroyQueue: make([]Entity, 0, 64),
		log:          log,
	}
	w.entities.Reserve(reserve + pool.Reserved)
	return w
}

func (w *World) Entities() *pool.Pool[EntityData] { return w.entities }
func (w *World) Registry() *Registry               { return w.registry }

// OnDestroy registers a callback run just before an entity is released.
func (w *World) OnDestroy(fn func(Entity)) {
	w.onDestroy = fn
}

func (w *World) Register(c Component) {
	w.registry.Register(c)
}

func (w *World) CreateEntity() Entity {
	return w.entities.Allocate()
}

// Alive reports whether e was created by this world and not yet destroyed.
func (w *World) Alive(e Entity) bool {
	return e.Pool() == w.entities && e.IsValid()
}

// Count is the number of live entities, including ones queued for
// destruction.
func (w *World) Count() int {
	return w.entities.ActiveCount()
}

// AddToComponent attaches e to the component registered under id.
func (w *World) AddToComponent(e Entity, id ComponentID) {
	c := w.registry.Get(id)
	if c == nil {
		panic(fmt.Sprintf("ecs: no component registered under id %d", id))
	}
	c.AddEntity(e)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking twice
// or marking a dead entity is a no-op.
func (w *World) MarkForDestruction(e Entity) {
	if !w.Alive(e) {
		return
	}
	d := e.Get()
	if d.markedForDeletion {
		return
	}
	d.markedForDeletion = true
	w.destroyQueue = append(w.destroyQueue, e)
}

// DestroyImmediately detaches e from every component and releases it now.
// Prefer MarkForDestruction while systems may still be iterating.
func (w *World) DestroyImmediately(e Entity) {
	if !w.Alive(e) {
		return
	}
	if w.onDestroy != nil {
		w.onDestroy(e)
	}
	w.registry.RemoveAll(e)
	w.entities.Free(e)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, e := range w.destroyQueue {
		if w.Alive(e) {
			w.DestroyImmediately(e)
			n++
		}
	}
	clear(w.destroyQueue)
	w.destroyQueue = w.destroyQueue[:0]
	if n > 0 {
		w.log.Debug("entities destroyed", zap.Int("count", n), zap.Int("alive", w.Count()))
	}
	return n
}

// Update runs every component's update hook in ID order, then flushes the
// destroy queue.
func (w *World) Update(dt time.Duration) {
	w.registry.Each(func(c Component) {
		c.Update(dt)
	})
	w.FlushDestroyQueue()
}

// Clear drops every entity and all component data. Components stay
// registered.
func (w *World) Clear() {
	w.registry.Each(func(c Component) {
		c.ClearEntityData()
	})
	w.entities.Clear()
	clear(w.destroyQueue)
	w.destroyQueue = w.destroyQueue[:0]
}
