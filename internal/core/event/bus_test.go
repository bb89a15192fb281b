package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type ping struct{ N int }
type pong struct{ N int }

func TestEventsDeliveredNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.N) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	require.Equal(t, 2, Pending[ping](b))
	b.DispatchAll()
	require.Empty(t, got, "emitted events wait for the swap")

	b.SwapBuffers()
	require.Equal(t, 0, Pending[ping](b))
	b.DispatchAll()
	require.Equal(t, []int{1, 2}, got)

	b.SwapBuffers()
	b.DispatchAll()
	require.Equal(t, []int{1, 2}, got, "front buffer drained after the second swap")
}

func TestHandlersMayEmit(t *testing.T) {
	b := NewBus()
	var pongs []int
	Subscribe(b, func(p ping) { Emit(b, pong{p.N * 10}) })
	Subscribe(b, func(p pong) { pongs = append(pongs, p.N) })

	Emit(b, ping{3})
	b.SwapBuffers()
	b.DispatchAll()
	require.Empty(t, pongs)
	require.Equal(t, 1, Pending[pong](b))

	b.SwapBuffers()
	b.DispatchAll()
	require.Equal(t, []int{30}, pongs)
}
