package system

import (
	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/scripting"
)

// Stores bundles the component stores every system works on.
type Stores struct {
	Transforms *ecs.Store[component.Transform]
	Characters *ecs.Store[component.Character]
	Props      *ecs.Store[component.ShakeableProp]
	Pies       *ecs.Store[component.Pie]
}

// RegisterStores creates the component stores and registers them with w.
func RegisterStores(w *ecs.World) *Stores {
	s := &Stores{
		Transforms: ecs.NewStore[component.Transform](component.TransformID, ecs.Hooks[component.Transform]{}),
		Characters: ecs.NewStore[component.Character](component.CharacterID, ecs.Hooks[component.Character]{}),
		Props:      ecs.NewStore[component.ShakeableProp](component.PropID, ecs.Hooks[component.ShakeableProp]{}),
		Pies:       ecs.NewStore[component.Pie](component.PieID, ecs.Hooks[component.Pie]{}),
	}
	w.Register(s.Transforms)
	w.Register(s.Characters)
	w.Register(s.Props)
	w.Register(s.Pies)
	return s
}

// Check verifies the bookkeeping of every store.
func (s *Stores) Check() error {
	for _, check := range []func() error{
		s.Transforms.Check, s.Characters.Check, s.Props.Check, s.Pies.Check,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// Rules are the tunable fight formulas. *scripting.Engine implements it.
type Rules interface {
	CalcPieDamage(ctx scripting.PieContext) scripting.PieResult
	CalcShake(ctx scripting.ShakeContext) float64
	ScoreForHit(damage int) int
}
