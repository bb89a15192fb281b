package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroRefIsInvalid(t *testing.T) {
	var r Ref[prop]
	require.False(t, r.IsValid())
	require.Nil(t, r.Ptr())
	require.Panics(t, func() { r.Get() })
}

func TestRefGetPanicsWhenStale(t *testing.T) {
	p := New[prop]()
	r := p.Allocate()
	r.Get().Name = "pie"
	require.Equal(t, "pie", r.Ptr().Name)

	p.Free(r)
	require.Nil(t, r.Ptr())
	require.PanicsWithValue(t, "pool: dereference of stale Ref(4:1)", func() { r.Get() })
}

func TestRefOutlivesClearedStorage(t *testing.T) {
	p := New[prop]()
	p.Allocate()
	r := p.Allocate()
	p.Clear()
	require.False(t, r.IsValid(), "index beyond shrunken storage")
}

func TestRefEquality(t *testing.T) {
	p := New[prop]()
	r := p.Allocate()
	same := p.Begin().Ref()
	require.True(t, r == same)

	p.Free(r)
	reused := p.Allocate()
	require.Equal(t, r.Index(), reused.Index())
	require.False(t, r == reused)
}

func TestRefIterator(t *testing.T) {
	p := New[prop]()
	a := p.Allocate()
	b := p.Allocate()

	it := a.Iterator()
	require.Equal(t, a.Index(), it.Index())
	require.Equal(t, p.End(), it.Next())
	require.Equal(t, b.Index(), it.Prev().Index())
	require.Same(t, p, a.Pool())
}

func TestRefString(t *testing.T) {
	p := New[prop]()
	p.Allocate()
	r := p.Allocate()
	require.Equal(t, "Ref(5:2)", r.String())
}
