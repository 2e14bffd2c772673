package preview

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/mesh"
)

func TestHull(t *testing.T) {
	cube := mesh.Cuboid(r3.Vec{X: -1}, r3.Vec{X: 1, Y: 5, Z: 3})
	hull := Hull(cube)
	assert.Len(t, hull, 4)
	assert.InDelta(t, 6, hull.SignedArea(), 1e-9)
}

func TestFloorLoops(t *testing.T) {
	column := mesh.Cuboid(r3.Vec{}, r3.Vec{X: 2, Y: 4, Z: 1})
	loops := FloorLoops(column)
	require.Len(t, loops, 1)
	// closed loop repeats its first point
	assert.Len(t, loops[0], 5)
	assert.Equal(t, loops[0][0], loops[0][4])
	for _, p := range loops[0] {
		assert.Contains(t, []float64{0, 2}, p.X)
		assert.Contains(t, []float64{0, 1}, p.Y)
	}

	lifted := mesh.Cuboid(r3.Vec{Y: 3}, r3.Vec{X: 1, Y: 5, Z: 1})
	assert.Len(t, FloorLoops(lifted), 1)

	// a tilted face has no flat floor
	tilted := &mesh.Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 1, Z: 0}, {X: 1, Y: 2, Z: 0}, {X: 0, Y: 3, Z: 1}},
		Faces:    []mesh.Face{{0, 1, 2}},
	}
	assert.Empty(t, FloorLoops(tilted))
	assert.Empty(t, FloorLoops(&mesh.Mesh{}))
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	scene := Scene{
		Object:  mesh.Cuboid(r3.Vec{Y: 3}, r3.Vec{X: 1, Y: 4, Z: 1}),
		Support: mesh.Cuboid(r3.Vec{}, r3.Vec{X: 1, Y: 3, Z: 1}),
		Raft:    mesh.Cuboid(r3.Vec{X: -1, Z: -1}, r3.Vec{X: 2, Y: 0.5, Z: 2}),
	}
	path := filepath.Join(dir, "preview.png")
	require.NoError(t, Save(path, scene))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))

	// object only
	require.NoError(t, Save(filepath.Join(dir, "object.png"), Scene{Object: scene.Object}))
	assert.Error(t, Save(filepath.Join(dir, "preview.unknown"), scene))
}
