package ecs

import "fmt"

// Registry tracks all component stores by ID and supports bulk cleanup on
// entity destroy.
type Registry struct {
	components [MaxComponents]Component
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a component store. Registering two stores under one ID
// panics.
func (r *Registry) Register(c Component) {
	id := c.ID()
	if id >= MaxComponents {
		panic(fmt.Sprintf("ecs: component id %d out of range", id))
	}
	if r.components[id] != nil {
		panic(fmt.Sprintf("ecs: component id %d registered twice", id))
	}
	r.components[id] = c
}

// Get returns the store registered under id, or nil.
func (r *Registry) Get(id ComponentID) Component {
	if id >= MaxComponents {
		return nil
	}
	return r.components[id]
}

// RemoveAll detaches the entity from every component it is registered with.
func (r *Registry) RemoveAll(e Entity) {
	d := e.Ptr()
	if d == nil {
		return
	}
	for id := ComponentID(0); id < MaxComponents; id++ {
		if d.Has(id) && r.components[id] != nil {
			r.components[id].RemoveEntity(e)
		}
	}
}

// Each visits registered components in ID order.
func (r *Registry) Each(fn func(Component)) {
	for _, c := range r.components {
		if c != nil {
			fn(c)
		}
	}
}
