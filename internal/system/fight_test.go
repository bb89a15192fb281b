package system

import (
	"testing"
	"time"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrowCreatesPieAndRespectsCooldown(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 10, component.Vec3{0, 0, 0})
	bob := a.addCharacter("Bob", 10, component.Vec3{3, 0, 4})
	a.character(alice).Target = bob

	throws := NewThrowSystem(a.world, a.stores, a.clock, a.rules, time.Second, 500*time.Millisecond, a.log)
	throws.Update(tick)
	require.Equal(t, 2, a.stores.Pies.Len())
	require.Equal(t, 1, a.character(alice).Stats[component.StatThrows])
	require.Equal(t, bob, a.character(alice).Target)
	require.Equal(t, alice, a.character(bob).Target, "bob picks the only other fighter")

	a.stores.Pies.Each(func(_ ecs.Entity, p *component.Pie) {
		require.Equal(t, 2, p.Damage)
		require.Equal(t, 500*time.Millisecond, p.Flight)
		if p.Source == alice {
			require.Equal(t, component.Vec3{3, 0, 4}, p.To)
		}
	})

	a.clock.Update(500 * time.Millisecond)
	throws.Update(tick)
	require.Equal(t, 2, a.stores.Pies.Len(), "cooldown still running")

	a.clock.Update(time.Second)
	throws.Update(tick)
	require.Equal(t, 4, a.stores.Pies.Len())
}

func TestPieLandsOnLiveTarget(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 10, component.Vec3{})
	bob := a.addCharacter("Bob", 10, component.Vec3{1, 0, 0})
	a.character(alice).Target = bob

	throws := NewThrowSystem(a.world, a.stores, a.clock, a.rules, time.Hour, 100*time.Millisecond, a.log)
	pies := NewPieSystem(a.world, a.stores, a.clock, a.bus, a.log)

	throws.Update(tick)
	pies.Update(tick)
	require.Equal(t, 2, a.stores.Pies.Len(), "still in flight")

	a.clock.Update(100 * time.Millisecond)
	pies.Update(tick)
	require.Equal(t, 0, a.stores.Pies.Len())
	require.Equal(t, 8, a.character(bob).Health)
	require.Equal(t, 8, a.character(alice).Health, "bob threw back")
	require.Equal(t, 2, a.character(bob).PieDamage)
	require.Equal(t, 1, a.character(bob).Stats[component.StatHitsTaken])
	require.Equal(t, 1, a.character(alice).Stats[component.StatHits])
	require.Equal(t, 2, event.Pending[event.CharacterHit](a.bus))
	require.Equal(t, 2, event.Pending[event.PieLanded](a.bus))

	a.world.FlushDestroyQueue()
	require.Equal(t, 2, a.world.Count(), "only the pies were destroyed")
	require.NoError(t, a.stores.Check())
}

func TestPieMissesDestroyedTarget(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 10, component.Vec3{})
	bob := a.addCharacter("Bob", 10, component.Vec3{1, 0, 0})
	a.character(alice).Target = bob

	throws := NewThrowSystem(a.world, a.stores, a.clock, a.rules, time.Hour, 0, a.log)
	throws.Update(tick)
	a.world.DestroyImmediately(bob)
	reused := a.addCharacter("Carol", 10, component.Vec3{})
	require.Equal(t, bob.Index(), reused.Index(), "the slot is recycled")

	var landed []event.PieLanded
	event.Subscribe(a.bus, func(ev event.PieLanded) { landed = append(landed, ev) })

	NewPieSystem(a.world, a.stores, a.clock, a.bus, a.log).Update(tick)
	require.Equal(t, 10, a.character(reused).Health, "the stale reference does not reach the new occupant")
	require.Equal(t, 1, a.character(alice).Stats[component.StatMisses])

	a.bus.SwapBuffers()
	a.bus.DispatchAll()
	require.NotEmpty(t, landed)
	for _, ev := range landed {
		if ev.Source == alice {
			assert.False(t, ev.Hit)
		}
	}
}

func TestFightToTheFinish(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 10, component.Vec3{})
	bob := a.addCharacter("Bob", 1, component.Vec3{2, 0, 0})
	a.character(alice).Target = bob
	a.character(bob).Target = alice

	r, score := a.runner(time.Second, tick, nil)
	r.Tick(tick) // both throw
	r.Tick(tick) // both pies land, bob is knocked out
	require.True(t, score.Decided())
	require.False(t, a.world.Alive(bob))

	r.Tick(tick) // hits are scored
	c := a.character(alice)
	assert.Equal(t, component.ResultWinner, c.Victory)
	assert.Equal(t, 8, c.Health)
	assert.Equal(t, 20, c.Score)
	assert.Equal(t, 1, c.Stats[component.StatHits])
	assert.False(t, c.Target.IsValid(), "no one left to target")
	assert.Equal(t, "Alice", score.Winner())
	hits, misses := score.Landings()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 0, misses)
	assert.Equal(t, 0, a.stores.Pies.Len())
	require.NoError(t, a.stores.Check())
	require.NoError(t, a.world.Entities().Check())
}

func TestDoubleKnockoutEndsRound(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 1, component.Vec3{})
	bob := a.addCharacter("Bob", 1, component.Vec3{2, 0, 0})
	a.character(alice).Target = bob
	a.character(bob).Target = alice

	r, score := a.runner(time.Second, tick, nil)
	r.Tick(tick)
	require.False(t, score.Decided())

	r.Tick(tick) // both pies land in the same tick
	require.True(t, score.Decided(), "nobody standing is a draw")
	require.Empty(t, score.Winner())
	require.False(t, a.world.Alive(alice))
	require.False(t, a.world.Alive(bob))
	require.Equal(t, 0, a.stores.Characters.Len())

	r.Tick(tick)
	hits, misses := score.Landings()
	require.Equal(t, 2, hits)
	require.Equal(t, 0, misses)
	require.Equal(t, 0, a.stores.Pies.Len())
}

func TestScoreCountsLandings(t *testing.T) {
	a := newArena(t)
	a.addCharacter("Alice", 10, component.Vec3{})
	a.addCharacter("Bob", 10, component.Vec3{})
	score := NewScoreSystem(a.world, a.stores, a.bus, a.rules, a.log)

	event.Emit(a.bus, event.PieLanded{Hit: true})
	event.Emit(a.bus, event.PieLanded{})
	event.Emit(a.bus, event.PieLanded{})
	a.bus.SwapBuffers()
	a.bus.DispatchAll()
	score.Update(tick)

	hits, misses := score.Landings()
	require.Equal(t, 1, hits)
	require.Equal(t, 2, misses)
	require.False(t, score.Decided(), "two fighters still standing")
}

func TestEmptyArenaIsNotDecided(t *testing.T) {
	a := newArena(t)
	r, score := a.runner(time.Second, tick, nil)
	r.Tick(tick)
	require.False(t, score.Decided())
}

func TestPiePositionArcs(t *testing.T) {
	p := &component.Pie{
		From:   component.Vec3{0, 0, 0},
		To:     component.Vec3{4, 0, 0},
		Start:  time.Second,
		Flight: time.Second,
		Height: 2,
	}
	assert.Equal(t, component.Vec3{0, 0, 0}, PiePosition(p, 0))
	mid := PiePosition(p, 1500*time.Millisecond)
	assert.InDelta(t, 2, mid[0], 1e-5)
	assert.InDelta(t, 2, mid[1], 1e-5)
	assert.Equal(t, component.Vec3{4, 0, 0}, PiePosition(p, 3*time.Second))
}
