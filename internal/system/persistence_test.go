package system

import (
	"context"
	"testing"

	"github.com/piefight/server/internal/component"
	"github.com/stretchr/testify/require"
)

func TestPersistenceSkipsUnchangedRows(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 10, component.Vec3{1, 2, 3})
	a.addCharacter("Bob", 10, component.Vec3{})
	w := &fakeWriter{}
	s := NewPersistenceSystem(a.stores, a.bus, w, 2, a.log)

	s.Update(tick)
	require.Empty(t, w.batches)
	s.Update(tick)
	require.Len(t, w.batches, 1)
	require.Len(t, w.batches[0], 2)
	for _, row := range w.batches[0] {
		require.EqualValues(t, 2, row.Tick)
		if row.Name == "Alice" {
			require.Equal(t, [3]float32{1, 2, 3}, row.Position)
			require.Equal(t, uint32(alice.Index()), row.EntityIndex)
			require.Equal(t, uint64(alice.Generation()), row.Generation)
		}
	}

	s.Update(tick)
	s.Update(tick)
	require.Len(t, w.batches, 1, "nothing changed")

	a.character(alice).Health = 7
	s.Update(tick)
	s.Update(tick)
	require.Len(t, w.batches, 2)
	require.Len(t, w.batches[1], 1)
	require.Equal(t, 7, w.batches[1][0].Health)

	s.Flush(context.Background())
	require.Len(t, w.batches, 3)
	require.Len(t, w.batches[2], 2, "flush ignores digests")
}

func TestPersistenceRetriesAfterFailure(t *testing.T) {
	a := newArena(t)
	a.addCharacter("Alice", 10, component.Vec3{})
	w := &fakeWriter{err: errWriteFailed}
	s := NewPersistenceSystem(a.stores, a.bus, w, 1, a.log)

	s.Update(tick)
	require.Empty(t, w.batches)

	w.err = nil
	s.Update(tick)
	require.Len(t, w.batches, 1)
}

func TestPersistenceForgetsDestroyedEntities(t *testing.T) {
	a := newArena(t)
	alice := a.addCharacter("Alice", 10, component.Vec3{})
	s := NewPersistenceSystem(a.stores, a.bus, &fakeWriter{}, 1, a.log)
	s.Update(tick)
	require.Len(t, s.saved, 1)

	a.world.DestroyImmediately(alice)
	a.bus.SwapBuffers()
	a.bus.DispatchAll()
	require.Empty(t, s.saved)
}
