package system

import (
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	coresys "github.com/piefight/server/internal/core/system"
	"github.com/piefight/server/internal/scripting"
)

// Spring constants for prop wobble.
const (
	shakeStiffness = 60.0
	shakeDamping   = 8.0
)

// ShakeSystem kicks every prop when a character is hit, scaled by distance
// and damage, then integrates the props' springs. Phase 3 (PostUpdate).
type ShakeSystem struct {
	stores  *Stores
	rules   Rules
	pending []event.CharacterHit
}

func NewShakeSystem(stores *Stores, bus *event.Bus, rules Rules) *ShakeSystem {
	s := &ShakeSystem{stores: stores, rules: rules}
	event.Subscribe(bus, func(ev event.CharacterHit) {
		s.pending = append(s.pending, ev)
	})
	return s
}

func (s *ShakeSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ShakeSystem) Update(dt time.Duration) {
	for _, hit := range s.pending {
		s.shakeProps(hit)
	}
	s.pending = s.pending[:0]

	step := float32(dt.Seconds())
	s.stores.Props.Each(func(_ ecs.Entity, p *component.ShakeableProp) {
		accel := -shakeStiffness*p.Offset - shakeDamping*p.Velocity
		p.Velocity += accel * step
		p.Offset += p.Velocity * step
	})
}

func (s *ShakeSystem) shakeProps(hit event.CharacterHit) {
	at := component.Vec3(hit.Position)
	ecs.Each2(s.stores.Transforms, s.stores.Props, func(_ ecs.Entity, tr *component.Transform, p *component.ShakeableProp) {
		impulse := s.rules.CalcShake(scripting.ShakeContext{
			DamagePercent: hit.DamagePercent,
			Distance:      float64(tr.Position.Sub(at).Length()),
			ShakeScale:    float64(p.ShakeScale),
		})
		p.Velocity += float32(impulse)
	})
}
