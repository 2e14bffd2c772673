package raft

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/geometry"
	"beltengine/pkg/mesh"
)

var floatOpt = cmp.Comparer(func(x, y float64) bool {
	return math.Abs(x-y) < 0.00001
})

// object is a 2x3x2 box standing on the belt, centred on x = 0.
func object() *mesh.Mesh {
	return mesh.Cuboid(r3.Vec{X: -1, Y: 0, Z: 0}, r3.Vec{X: 1, Y: 3, Z: 2})
}

func TestRaftIsDeterministic(t *testing.T) {
	s := &Synthesizer{Policy: Policy{Margin: 5, Thickness: 2.5}}
	a, err := s.Synthesize(object())
	require.NoError(t, err)
	b, err := s.Synthesize(object())
	require.NoError(t, err)

	assert.Equal(t, a.Vertices, b.Vertices)
	assert.Equal(t, a.Faces, b.Faces)
}

func TestRaftBounds(t *testing.T) {
	arc := 20 * 0.5 * math.Sin(math.Pi/10)
	tests := []struct {
		name     string
		margin   float64
		min, max r3.Vec
		area     float64
	}{
		{"no margin", 0, r3.Vec{X: -1, Y: 0, Z: 0}, r3.Vec{X: 1, Y: 2.5, Z: 2}, 4},
		{"outward", 1, r3.Vec{X: -2, Y: 0, Z: -1}, r3.Vec{X: 2, Y: 2.5, Z: 3}, 4 + 8 + arc},
		{"inward", -0.5, r3.Vec{X: -0.5, Y: 0, Z: 0.5}, r3.Vec{X: 0.5, Y: 2.5, Z: 1.5}, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := &Synthesizer{Policy: Policy{Margin: test.margin, Thickness: 2.5}}
			raft, err := s.Synthesize(object())
			require.NoError(t, err)
			require.NoError(t, raft.Validate())

			b := raft.Bounds()
			if diff := cmp.Diff(test.min, b.Min, floatOpt); diff != "" {
				t.Errorf("min incorrect: %s", diff)
			}
			if diff := cmp.Diff(test.max, b.Max, floatOpt); diff != "" {
				t.Errorf("max incorrect: %s", diff)
			}
			assert.Empty(t, raft.BoundaryLoops(), "raft must be closed")
			assert.InDelta(t, 2.5*test.area, raft.SignedVolume(), 1e-9, "faces must point out")
		})
	}
}

func TestRaftErrors(t *testing.T) {
	wall := &mesh.Mesh{
		Vertices: []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}},
		Faces:    []mesh.Face{{0, 1, 2}},
	}

	tests := []struct {
		name   string
		policy Policy
		mesh   *mesh.Mesh
		want   error
	}{
		{"zero thickness", Policy{Thickness: 0}, object(), ErrThickness},
		{"nan thickness", Policy{Thickness: math.NaN()}, object(), ErrThickness},
		{"flat footprint", Policy{Thickness: 1}, wall, ErrDegenerateHull},
		{"empty mesh", Policy{Thickness: 1}, &mesh.Mesh{}, ErrDegenerateHull},
		{"margin swallows footprint", Policy{Margin: -1, Thickness: 1}, object(), ErrMarginCollapse},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := &Synthesizer{Policy: test.policy}
			_, err := s.Synthesize(test.mesh)
			require.Error(t, err)
			assert.True(t, errors.Is(err, test.want), "got %v", err)
		})
	}
}

func TestExtrude(t *testing.T) {
	triangle := geometry.Polygon{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 0, Y: 4}}
	prism := Extrude(triangle, 2)

	assert.Equal(t, 6, prism.VertexCount())
	assert.Equal(t, 8, prism.FaceCount())
	assert.Equal(t, r3.Vec{X: 3, Y: 0, Z: -2}, prism.Vertices[4])
	assert.InDelta(t, 12.0, prism.SignedVolume(), 1e-9)
	assert.Empty(t, prism.BoundaryLoops())
}
