package event

import (
	"time"

	"github.com/piefight/server/internal/core/ecs"
)

// PieLanded fires when a pie finishes its flight, hit or miss.
type PieLanded struct {
	Pie    ecs.Entity
	Source ecs.Entity
	Target ecs.Entity
	Hit    bool
	At     time.Duration
}

// CharacterHit fires when a landed pie damages a live character.
type CharacterHit struct {
	Source        ecs.Entity
	Target        ecs.Entity
	Damage        int
	DamagePercent float64 // damage relative to the target's max health
	Position      [3]float32
	Fatal         bool
}

// EntityDestroyed fires as the world releases an entity.
type EntityDestroyed struct {
	Entity ecs.Entity
}
