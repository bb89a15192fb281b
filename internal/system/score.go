package system

import (
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	coresys "github.com/piefight/server/internal/core/system"
	"go.uber.org/zap"
)

// ScoreSystem awards points for hits delivered last tick and crowns the last
// character standing. If the last fighters go down together the round ends
// as a draw. Phase 2 (Update).
type ScoreSystem struct {
	world   *ecs.World
	stores  *Stores
	rules   Rules
	pending []event.CharacterHit
	hits    int
	misses  int
	entered bool // at least one character has been seen
	decided bool
	winner  string
	log     *zap.Logger
}

func NewScoreSystem(world *ecs.World, stores *Stores, bus *event.Bus, rules Rules, log *zap.Logger) *ScoreSystem {
	s := &ScoreSystem{world: world, stores: stores, rules: rules, log: log}
	event.Subscribe(bus, func(ev event.CharacterHit) {
		s.pending = append(s.pending, ev)
	})
	event.Subscribe(bus, func(ev event.PieLanded) {
		if ev.Hit {
			s.hits++
		} else {
			s.misses++
		}
	})
	return s
}

func (s *ScoreSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScoreSystem) Update(_ time.Duration) {
	for _, hit := range s.pending {
		// The thrower may have been knocked out since the pie left its hand.
		if src, ok := s.stores.Characters.Get(hit.Source); ok {
			src.Score += s.rules.ScoreForHit(hit.Damage)
		}
	}
	s.pending = s.pending[:0]
	s.checkWinner()
}

// Decided reports whether the round is over, won or drawn.
func (s *ScoreSystem) Decided() bool { return s.decided }

// Winner is the name of the last character standing, empty for a draw or an
// undecided round.
func (s *ScoreSystem) Winner() string { return s.winner }

// Landings counts the pies that have landed so far, split into hits and
// misses.
func (s *ScoreSystem) Landings() (hits, misses int) { return s.hits, s.misses }

func (s *ScoreSystem) checkWinner() {
	if s.decided {
		return
	}
	if s.stores.Characters.Len() > 0 {
		s.entered = true
	}
	if !s.entered {
		return
	}
	var last *component.Character
	standing := 0
	s.stores.Characters.Each(func(e ecs.Entity, c *component.Character) {
		if e.Get().MarkedForDeletion() || c.Health <= 0 {
			return
		}
		standing++
		last = c
	})
	switch standing {
	case 0:
		s.decided = true
		s.log.Info("round drawn", zap.Int("hits", s.hits), zap.Int("misses", s.misses))
	case 1:
		last.Victory = component.ResultWinner
		s.decided = true
		s.winner = last.Name
		s.log.Info("round decided", zap.String("winner", last.Name), zap.Int("score", last.Score))
	}
}
