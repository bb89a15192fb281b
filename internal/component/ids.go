package component

import "github.com/piefight/server/internal/core/ecs"

// Component IDs, one per store registered with the world.
const (
	TransformID ecs.ComponentID = iota
	CharacterID
	PropID
	PieID
)
