package component

import (
	"time"

	"github.com/piefight/server/internal/core/ecs"
)

// Pie is a pie in flight between two characters.
type Pie struct {
	Source    ecs.Entity
	Target    ecs.Entity
	From      Vec3
	To        Vec3
	Start     time.Duration // arena clock time of the throw
	Flight    time.Duration
	Damage    int
	Height    float32 // apex above the straight line between From and To
	Rotations int
}
