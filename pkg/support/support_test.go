package support

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/mesh"
)

var floatOpt = cmp.Comparer(func(x, y float64) bool {
	return math.Abs(x-y) < 0.00001
})

func straightDown() Policy {
	return Policy{
		Angle:             50,
		Down:              r3.Vec{Y: -1},
		FilterUpwardFaces: true,
	}
}

// panel is a horizontal square at height y facing down.
func panel(x0, z0, size, y float64) *mesh.Mesh {
	return &mesh.Mesh{
		Vertices: []r3.Vec{
			{X: x0, Y: y, Z: z0},
			{X: x0 + size, Y: y, Z: z0},
			{X: x0 + size, Y: y, Z: z0 + size},
			{X: x0, Y: y, Z: z0 + size},
		},
		Faces: []mesh.Face{{0, 1, 2}, {0, 2, 3}},
	}
}

func TestDownVector(t *testing.T) {
	if diff := cmp.Diff(r3.Vec{Y: -1}, DownVector(0), floatOpt); diff != "" {
		t.Errorf("no bias: %s", diff)
	}
	if diff := cmp.Diff(r3.Vec{Y: -math.Sqrt2 / 2, Z: -math.Sqrt2 / 2}, DownVector(math.Pi/4), floatOpt); diff != "" {
		t.Errorf("45° bias: %s", diff)
	}
}

func TestNoOverhangGivesEmptyMesh(t *testing.T) {
	s := &Synthesizer{Policy: straightDown()}

	t.Run("cube on the belt", func(t *testing.T) {
		cube := mesh.Cuboid(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})
		got := s.Synthesize(cube)
		assert.Equal(t, 0, got.VertexCount())
		assert.Equal(t, 0, got.FaceCount())
	})

	t.Run("upward panel", func(t *testing.T) {
		up := panel(0, 0, 1, 5).Invert()
		assert.Empty(t, s.Candidates(up))
		got := s.Synthesize(up)
		assert.Equal(t, 0, got.VertexCount())
		assert.Equal(t, 0, got.FaceCount())
	})
}

func TestFloatingCube(t *testing.T) {
	s := &Synthesizer{Policy: straightDown()}
	cube := mesh.Cuboid(r3.Vec{Y: 2}, r3.Vec{X: 1, Y: 3, Z: 1})

	assert.Equal(t, []int{4, 5}, s.Candidates(cube))

	support := s.Synthesize(cube)
	require.NoError(t, support.Validate())
	assert.Equal(t, 8, support.VertexCount())
	assert.Equal(t, 12, support.FaceCount())
	assert.Empty(t, support.BoundaryLoops(), "support must be closed")
	assert.InDelta(t, 2.0, support.SignedVolume(), 1e-9)

	b := support.Bounds()
	if diff := cmp.Diff(r3.Box{Min: r3.Vec{}, Max: r3.Vec{X: 1, Y: 2, Z: 1}}, b, floatOpt); diff != "" {
		t.Errorf("bounds incorrect: %s", diff)
	}

	assert.Equal(t, 3.0, cube.Bounds().Max.Y, "input must not change")
}

func TestBottomCutoff(t *testing.T) {
	p := straightDown()
	p.BottomCutoff = 0.4
	s := &Synthesizer{Policy: p}

	flat := &mesh.Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 0.4, Z: 0}, {X: 1, Y: 0.4, Z: 0}, {X: 1, Y: 0.4, Z: 1}},
		Faces:    []mesh.Face{{0, 1, 2}},
	}
	assert.Empty(t, s.Candidates(flat))

	raised := flat.Clone()
	raised.Vertices[2].Y = 0.5
	assert.Equal(t, []int{0}, s.Candidates(raised))
}

func TestCandidatesIgnoreFaceOrder(t *testing.T) {
	s := &Synthesizer{Policy: straightDown()}
	s.Policy.Down = DownVector(math.Pi / 8)

	base := mesh.Concat(
		mesh.Cuboid(r3.Vec{Y: 2}, r3.Vec{X: 1, Y: 3, Z: 1}),
		panel(4, 0, 2, 1),
		mesh.Cuboid(r3.Vec{X: -3}, r3.Vec{X: -2, Y: 1, Z: 1}),
	)
	shuffled := base.Clone()
	for i, j := 0, len(shuffled.Faces)-1; i < j; i, j = i+1, j-1 {
		shuffled.Faces[i], shuffled.Faces[j] = shuffled.Faces[j], shuffled.Faces[i]
	}

	key := func(m *mesh.Mesh, faces []int) []string {
		var keys []string
		for _, fi := range faces {
			f := m.Faces[fi]
			keys = append(keys, fmt.Sprint(m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]))
		}
		sort.Strings(keys)
		return keys
	}

	a := s.Candidates(base)
	b := s.Candidates(shuffled)
	require.NotEmpty(t, a)
	assert.Equal(t, key(base, a), key(shuffled, b))
}

func TestMinimumIslandArea(t *testing.T) {
	roofs := mesh.Concat(panel(0, 0, 2, 2), panel(5, 0, 1, 2))

	p := straightDown()
	p.MinimumIslandArea = 3
	s := &Synthesizer{Policy: p}

	support := s.Synthesize(roofs)
	assert.Equal(t, 8, support.VertexCount())
	assert.InDelta(t, 8.0, support.SignedVolume(), 1e-9)
	b := support.Bounds()
	assert.InDelta(t, 2.0, b.Max.X, 1e-12)

	p.MinimumIslandArea = 10
	s = &Synthesizer{Policy: p}
	assert.True(t, s.Synthesize(roofs).IsEmpty())

	p.MinimumIslandArea = 0
	s = &Synthesizer{Policy: p}
	assert.Equal(t, 16, s.Synthesize(roofs).VertexCount())
}

func TestIntersect(t *testing.T) {
	assert.Equal(t, []int{2, 5}, intersect([]int{1, 2, 5, 7}, []int{2, 3, 5}))
	assert.Empty(t, intersect([]int{1, 2}, nil))
}
