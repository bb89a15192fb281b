package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piefight/server/internal/component"
	"github.com/piefight/server/internal/core/ecs"
	"github.com/piefight/server/internal/data"
	"github.com/stretchr/testify/require"
)

func TestSpawnRosterAndProps(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`
characters:
  - {id: 1, name: alice, position: [0, 0, 0], face_angle: 90}
  - {id: 2, name: bob, health: 4, position: [5, 0, 0]}
  - {id: 3, name: carol, position: [0, 0, 5]}
`), 0o644))
	propsPath := filepath.Join(dir, "props.yaml")
	require.NoError(t, os.WriteFile(propsPath, []byte(`
props:
  - {id: 7, name: lamp, shake_scale: 1.5, position: [1, 1, 1]}
`), 0o644))

	roster, err := data.LoadRoster(rosterPath)
	require.NoError(t, err)
	props, err := data.LoadPropTable(propsPath)
	require.NoError(t, err)

	a := newArena(t)
	chars := SpawnRoster(a.world, a.stores, roster)
	require.Len(t, chars, 3)
	require.Equal(t, 1, SpawnProps(a.world, a.stores, props))
	require.Equal(t, 4, a.world.Count())

	first := a.character(chars[0])
	require.Equal(t, "Alice", first.Name)
	require.Equal(t, 10, first.MaxHealth)
	require.Equal(t, chars[1], first.Target)
	require.Equal(t, chars[0], a.character(chars[2]).Target, "targets wrap around")
	require.Equal(t, 4, a.character(chars[1]).Health)

	tr, ok := a.stores.Transforms.Get(chars[0])
	require.True(t, ok)
	require.InDelta(t, 1.5708, tr.FaceAngle, 1e-4)

	require.Equal(t, 1, a.stores.Props.Len())
	a.stores.Props.Each(func(_ ecs.Entity, p *component.ShakeableProp) {
		require.EqualValues(t, 7, p.TemplateID)
		require.EqualValues(t, 1.5, p.ShakeScale)
	})
}
