package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	coresys "github.com/piefight/server/internal/core/system"
	"github.com/piefight/server/internal/persist"
	"github.com/piefight/server/internal/scripting"
	"go.uber.org/zap"
)

const tick = 50 * time.Millisecond

type fakeRules struct {
	damage int
	shakes []scripting.ShakeContext
}

func (r *fakeRules) CalcPieDamage(scripting.PieContext) scripting.PieResult {
	return scripting.PieResult{Damage: r.damage, Height: 2}
}

func (r *fakeRules) CalcShake(ctx scripting.ShakeContext) float64 {
	r.shakes = append(r.shakes, ctx)
	return ctx.ShakeScale * ctx.DamagePercent
}

func (r *fakeRules) ScoreForHit(damage int) int { return damage * 10 }

type fakeWriter struct {
	batches [][]persist.SnapshotRow
	err     error
}

func (w *fakeWriter) SaveBatch(_ context.Context, rows []persist.SnapshotRow) error {
	if w.err != nil {
		return w.err
	}
	w.batches = append(w.batches, append([]persist.SnapshotRow(nil), rows...))
	return nil
}

var errWriteFailed = errors.New("write failed")

type arena struct {
	world  *ecs.World
	stores *Stores
	bus    *event.Bus
	clock  *Clock
	rules  *fakeRules
	log    *zap.Logger
}

func newArena(t *testing.T) *arena {
	t.Helper()
	w := ecs.NewWorld(32, zap.NewNop())
	bus := event.NewBus()
	PublishDestroys(w, bus)
	return &arena{
		world:  w,
		stores: RegisterStores(w),
		bus:    bus,
		clock:  NewClock(),
		rules:  &fakeRules{damage: 2},
		log:    zap.NewNop(),
	}
}

func (a *arena) addCharacter(name string, health int, pos component.Vec3) ecs.Entity {
	e := a.world.CreateEntity()
	a.stores.Transforms.Add(e).Position = pos
	c := a.stores.Characters.Add(e)
	c.Name = name
	c.Health = health
	c.MaxHealth = health
	return e
}

func (a *arena) character(e ecs.Entity) *component.Character {
	c, _ := a.stores.Characters.Get(e)
	return c
}

// runner wires the full tick pipeline the way the server does.
func (a *arena) runner(cooldown, flight time.Duration, writer SnapshotWriter) (*coresys.Runner, *ScoreSystem) {
	r := coresys.NewRunner()
	score := NewScoreSystem(a.world, a.stores, a.bus, a.rules, a.log)
	r.Register(a.clock)
	r.Register(NewEventDispatchSystem(a.bus))
	r.Register(NewThrowSystem(a.world, a.stores, a.clock, a.rules, cooldown, flight, a.log))
	r.Register(NewPieSystem(a.world, a.stores, a.clock, a.bus, a.log))
	r.Register(score)
	r.Register(NewShakeSystem(a.stores, a.bus, a.rules))
	if writer != nil {
		r.Register(NewPersistenceSystem(a.stores, a.bus, writer, 1, a.log))
	}
	r.Register(NewCleanupSystem(a.world, a.stores, true, a.log))
	return r, score
}
