package system

import (
	"math"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/data"
)

// SpawnRoster creates one character entity per roster entry, in roster
// order. Each character starts targeting the next one in the list.
func SpawnRoster(w *ecs.World, s *Stores, roster *data.Roster) []ecs.Entity {
	entries := roster.All()
	out := make([]ecs.Entity, 0, len(entries))
	for _, r := range entries {
		e := w.CreateEntity()
		tr := s.Transforms.Add(e)
		tr.Position = component.Vec3(r.Position)
		tr.FaceAngle = float32(float64(r.FaceAngle) * math.Pi / 180)

		c := s.Characters.Add(e)
		c.RosterID = r.ID
		c.Name = r.Name
		c.Health = r.Health
		c.MaxHealth = r.Health
		out = append(out, e)
	}
	if len(out) > 1 {
		for i, e := range out {
			c, _ := s.Characters.Get(e)
			c.Target = out[(i+1)%len(out)]
		}
	}
	return out
}

// SpawnProps places every prop template in the arena.
func SpawnProps(w *ecs.World, s *Stores, props *data.PropTable) int {
	for _, p := range props.All() {
		e := w.CreateEntity()
		s.Transforms.Add(e).Position = component.Vec3(p.Position)
		sp := s.Props.Add(e)
		sp.TemplateID = p.ID
		sp.ShakeScale = p.ShakeScale
		sp.Axis = component.Vec3(p.Axis)
	}
	return props.Count()
}
