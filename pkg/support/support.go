// Package support builds drop-down support meshes under the overhangs of a
// working frame mesh.
package support

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/logging"
	"beltengine/pkg/mesh"
)

// Policy decides which faces need support.
type Policy struct {
	// Angle is the overhang angle in degrees from horizontal.
	Angle float64
	// Down is the unit direction gravity is assumed to pull in.
	Down r3.Vec
	// BottomCutoff is the height at or below which faces rest on the belt.
	BottomCutoff float64
	// MinimumIslandArea drops roof islands whose footprint is smaller (mm²).
	MinimumIslandArea float64
	FilterUpwardFaces bool
}

// DownVector tilts the gravity direction towards -Z (against belt travel) by
// bias radians.
func DownVector(bias float64) r3.Vec {
	sin, cos := math.Sincos(bias)
	return r3.Vec{X: 0, Y: -cos, Z: -sin}
}

type Synthesizer struct {
	Policy Policy
	Log    logging.Sink
}

// Candidates returns the indices of the faces that need support, ascending.
func (s *Synthesizer) Candidates(m *mesh.Mesh) []int {
	threshold := math.Cos((90 - s.Policy.Angle) * math.Pi / 180)
	normals := m.FaceNormals()

	var candidates []int
	for i, n := range normals {
		if r3.Dot(n, s.Policy.Down) >= threshold {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 && s.Policy.FilterUpwardFaces {
		var facingDown []int
		for i, n := range normals {
			if n.Y < 0 {
				facingDown = append(facingDown, i)
			}
		}
		candidates = intersect(facingDown, candidates)
	}

	kept := candidates[:0]
	for _, fi := range candidates {
		if s.aboveCutoff(m, m.Faces[fi]) {
			kept = append(kept, fi)
		}
	}
	return kept
}

func (s *Synthesizer) aboveCutoff(m *mesh.Mesh, f mesh.Face) bool {
	for _, v := range f {
		if m.Vertices[v].Y > s.Policy.BottomCutoff {
			return true
		}
	}
	return false
}

// intersect returns the values present in both ascending slices.
func intersect(a, b []int) []int {
	var out []int
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Synthesize returns the support mesh for m. An empty mesh means no support is
// needed.
func (s *Synthesizer) Synthesize(m *mesh.Mesh) *mesh.Mesh {
	log := logging.OrDiscard(s.Log)

	candidates := s.Candidates(m)
	if len(candidates) == 0 {
		log.Infof("Mesh doesn't need support")
		return &mesh.Mesh{}
	}
	roof := m.Submesh(candidates)
	log.Debugf("Support roof has %d faces", roof.FaceCount())

	if s.Policy.MinimumIslandArea > 0 {
		roof = s.dropSmallIslands(roof, log)
		if roof.IsEmpty() {
			log.Infof("All surfaces of the mesh that need support are smaller than the minimum island area")
			return &mesh.Mesh{}
		}
	}

	return buildColumn(roof)
}

func (s *Synthesizer) dropSmallIslands(roof *mesh.Mesh, log logging.Sink) *mesh.Mesh {
	var keep []int
	for _, island := range roof.Components() {
		area := projectedArea(roof, island)
		if area < s.Policy.MinimumIslandArea {
			log.Debugf("Dropping support island of %d faces, area %.3f", len(island), area)
			continue
		}
		keep = append(keep, island...)
	}
	sort.Ints(keep)
	return roof.Submesh(keep)
}

// projectedArea is the area of the faces flattened onto the belt surface.
func projectedArea(m *mesh.Mesh, faces []int) float64 {
	sum := 0.0
	for _, fi := range faces {
		f := m.Faces[fi]
		ring := make(orb.Ring, 0, 4)
		for _, v := range f {
			p := m.Vertices[v]
			ring = append(ring, orb.Point{p.X, p.Z})
		}
		ring = append(ring, ring[0])
		sum += math.Abs(planar.Area(ring))
	}
	return sum
}

// buildColumn closes the roof with a copy flattened onto y = 0 and a skirt
// along every boundary loop.
func buildColumn(roof *mesh.Mesh) *mesh.Mesh {
	n := roof.VertexCount()

	out := &mesh.Mesh{
		Vertices: make([]r3.Vec, 0, 2*n),
		Faces:    make([]mesh.Face, 0, 2*roof.FaceCount()),
	}
	out.Vertices = append(out.Vertices, roof.Vertices...)
	for _, v := range roof.Vertices {
		out.Vertices = append(out.Vertices, r3.Vec{X: v.X, Y: 0, Z: v.Z})
	}

	out.Faces = append(out.Faces, roof.Faces...)
	for _, f := range roof.Faces {
		out.Faces = append(out.Faces, mesh.Face{f[0] + n, f[2] + n, f[1] + n})
	}
	for _, loop := range roof.BoundaryLoops() {
		for i := 0; i < len(loop)-1; i++ {
			p, q := loop[i], loop[i+1]
			out.Faces = append(out.Faces,
				mesh.Face{p, q + n, p + n},
				mesh.Face{p, q, q + n},
			)
		}
	}

	return out.FixNormals()
}
