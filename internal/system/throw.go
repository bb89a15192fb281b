package system

import (
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	coresys "github.com/piefight/server/internal/core/system"
	"github.com/piefight/server/internal/scripting"
	"go.uber.org/zap"
)

// ThrowSystem lets every character with a live target throw a pie once its
// cooldown has passed. Characters whose target has been destroyed pick a new
// one. Phase 2 (Update), before PieSystem.
type ThrowSystem struct {
	world    *ecs.World
	stores   *Stores
	clock    *Clock
	rules    Rules
	cooldown time.Duration
	flight   time.Duration
	log      *zap.Logger
}

func NewThrowSystem(world *ecs.World, stores *Stores, clock *Clock, rules Rules, cooldown, flight time.Duration, log *zap.Logger) *ThrowSystem {
	return &ThrowSystem{
		world:    world,
		stores:   stores,
		clock:    clock,
		rules:    rules,
		cooldown: cooldown,
		flight:   flight,
		log:      log,
	}
}

func (s *ThrowSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ThrowSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	s.stores.Characters.Each(func(e ecs.Entity, c *component.Character) {
		if !s.fighting(e) {
			return
		}
		if c.Target == e || !s.fighting(c.Target) {
			c.Target = s.pickTarget(e)
			if !c.Target.IsValid() {
				return
			}
		}
		if now < c.NextThrow {
			return
		}
		s.throw(e, c, now)
	})
}

// fighting reports whether e is a live character not already on its way
// out.
func (s *ThrowSystem) fighting(e ecs.Entity) bool {
	if !s.world.Alive(e) || e.Get().MarkedForDeletion() {
		return false
	}
	return s.stores.Characters.Has(e)
}

// pickTarget returns the healthiest other fighting character, or the zero
// entity when none is left.
func (s *ThrowSystem) pickTarget(self ecs.Entity) ecs.Entity {
	var best ecs.Entity
	bestHealth := 0
	s.stores.Characters.Each(func(e ecs.Entity, c *component.Character) {
		if e == self || !s.fighting(e) {
			return
		}
		if !best.IsValid() || c.Health > bestHealth {
			best, bestHealth = e, c.Health
		}
	})
	return best
}

func (s *ThrowSystem) throw(e ecs.Entity, c *component.Character, now time.Duration) {
	var from, to component.Vec3
	if tr, ok := s.stores.Transforms.Get(e); ok {
		from = tr.Position
	}
	if tr, ok := s.stores.Transforms.Get(c.Target); ok {
		to = tr.Position
	}
	targetHealth := 0
	if tc, ok := s.stores.Characters.Get(c.Target); ok {
		targetHealth = tc.Health
	}

	res := s.rules.CalcPieDamage(scripting.PieContext{
		ThrowerHealth:    c.Health,
		ThrowerMaxHealth: c.MaxHealth,
		ThrowerScore:     c.Score,
		TargetHealth:     targetHealth,
		Distance:         float64(to.Sub(from).Length()),
	})

	pe := s.world.CreateEntity()
	*s.stores.Pies.Add(pe) = component.Pie{
		Source:    e,
		Target:    c.Target,
		From:      from,
		To:        to,
		Start:     now,
		Flight:    s.flight,
		Damage:    res.Damage,
		Height:    float32(res.Height),
		Rotations: 1,
	}
	c.Stats[component.StatThrows]++
	c.NextThrow = now + s.cooldown
	s.log.Debug("pie thrown",
		zap.String("from", c.Name),
		zap.Stringer("pie", pe),
		zap.Stringer("target", c.Target),
		zap.Int("damage", res.Damage))
}
