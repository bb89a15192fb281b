package ecs

import "github.com/piefight/server/internal/core/pool"

// Entity is a generation-checked reference into the world's entity pool.
// A destroyed entity's Ref stops validating even after its slot is reused.
type Entity = pool.Ref[EntityData]

// EntityData is the bookkeeping the world keeps per entity. Component data
// itself lives in each component's own store.
type EntityData struct {
	components        uint32 // bit i set while registered with component i
	markedForDeletion bool
}

// Has reports whether the entity is registered with component id.
func (d *EntityData) Has(id ComponentID) bool {
	return d.components&(1<<id) != 0
}

// MarkedForDeletion reports whether the entity is queued for destruction.
func (d *EntityData) MarkedForDeletion() bool {
	return d.markedForDeletion
}

func (d *EntityData) set(id ComponentID)   { d.components |= 1 << id }
func (d *EntityData) unset(id ComponentID) { d.components &^= 1 << id }
