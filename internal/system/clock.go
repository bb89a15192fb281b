package system

import (
	"time"

	coresys "github.com/piefight/server/internal/core/system"
)

// Clock is the arena time shared by all systems. Phase 0 (Input).
type Clock struct {
	now time.Duration
}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Now() time.Duration { return c.now }

func (c *Clock) Phase() coresys.Phase { return coresys.PhaseInput }

func (c *Clock) Update(dt time.Duration) {
	c.now += dt
}
