package system

import (
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	coresys "github.com/piefight/server/internal/core/system"
	"go.uber.org/zap"
)

// PieSystem lands pies whose flight time has elapsed. A landed pie damages
// its target only if the target entity is still alive; a target destroyed
// mid-flight leaves a stale reference and the pie misses. Landed pies are
// released in the same pass. Phase 2 (Update), after ThrowSystem.
type PieSystem struct {
	world  *ecs.World
	stores *Stores
	clock  *Clock
	bus    *event.Bus
	log    *zap.Logger
}

func NewPieSystem(world *ecs.World, stores *Stores, clock *Clock, bus *event.Bus, log *zap.Logger) *PieSystem {
	return &PieSystem{world: world, stores: stores, clock: clock, bus: bus, log: log}
}

func (s *PieSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PieSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	s.stores.Pies.Sweep(func(pe ecs.Entity, p *component.Pie) bool {
		if now-p.Start < p.Flight {
			return false
		}
		hit := s.land(p)
		event.Emit(s.bus, event.PieLanded{
			Pie:    pe,
			Source: p.Source,
			Target: p.Target,
			Hit:    hit,
			At:     now,
		})
		s.world.MarkForDestruction(pe)
		return true
	})
}

func (s *PieSystem) land(p *component.Pie) bool {
	source, _ := s.stores.Characters.Get(p.Source)

	target, ok := s.stores.Characters.Get(p.Target)
	if !ok || p.Target.Get().MarkedForDeletion() {
		if source != nil {
			source.Stats[component.StatMisses]++
		}
		return false
	}

	target.Health -= p.Damage
	target.PieDamage += p.Damage
	target.Stats[component.StatHitsTaken]++
	if source != nil {
		source.Stats[component.StatHits]++
	}

	fatal := target.Health <= 0
	if fatal {
		target.Victory = component.ResultLoser
		s.world.MarkForDestruction(p.Target)
		s.log.Info("character knocked out", zap.String("name", target.Name), zap.Int("pie_damage", target.PieDamage))
	}

	percent := 0.0
	if target.MaxHealth > 0 {
		percent = float64(p.Damage) / float64(target.MaxHealth)
	}
	event.Emit(s.bus, event.CharacterHit{
		Source:        p.Source,
		Target:        p.Target,
		Damage:        p.Damage,
		DamagePercent: percent,
		Position:      p.To,
		Fatal:         fatal,
	})
	return true
}

// PiePosition is where a pie is along its arc at time now.
func PiePosition(p *component.Pie, now time.Duration) component.Vec3 {
	t := float32(1)
	if p.Flight > 0 {
		t = float32(now-p.Start) / float32(p.Flight)
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	pos := p.From.Lerp(p.To, t)
	pos[1] += 4 * p.Height * t * (1 - t)
	return pos
}
