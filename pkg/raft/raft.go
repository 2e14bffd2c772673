// Package raft builds the slab printed under an object on the belt.
package raft

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/belt"
	"beltengine/pkg/cfg"
	"beltengine/pkg/geometry"
	"beltengine/pkg/logging"
	"beltengine/pkg/mesh"
)

var (
	ErrDegenerateHull = errors.New("raft footprint has no area")
	ErrThickness      = errors.New("raft thickness must be positive")
	ErrMarginCollapse = errors.New("negative raft margin removes the whole footprint")
)

// Policy sizes the raft. A positive Margin grows the footprint, a negative one
// shrinks it.
type Policy struct {
	Margin    float64
	Thickness float64
}

type Synthesizer struct {
	Policy Policy
	Log    logging.Sink
}

// Footprint returns the raft outline on the belt surface as a counter-clockwise
// ring in (x, z).
func (s *Synthesizer) Footprint(m *mesh.Mesh) (geometry.Polygon, error) {
	points := make([]geometry.Point, len(m.Vertices))
	for i, v := range m.Vertices {
		points[i] = geometry.Point{X: v.X, Y: v.Z}
	}
	hull := geometry.ConvexHull(points)
	if len(hull) < 3 || math.Abs(planar.Area(hull.Ring())) <= cfg.DegenerateAreaEpsilon {
		return nil, fmt.Errorf("%w: hull of %d vertices has %d corners", ErrDegenerateHull, len(m.Vertices), len(hull))
	}

	switch margin := s.Policy.Margin; {
	case margin > 0:
		return hull.OffsetOutward(margin, cfg.RaftArcSegments), nil
	case margin < 0:
		inner := hull.OffsetInward(-margin, cfg.DegenerateAreaEpsilon)
		if inner == nil {
			return nil, fmt.Errorf("%w: margin %g", ErrMarginCollapse, margin)
		}
		return inner, nil
	default:
		return hull, nil
	}
}

// Synthesize returns a closed slab covering the footprint of m, spanning
// y in [0, thickness]. The result depends only on m and the policy.
func (s *Synthesizer) Synthesize(m *mesh.Mesh) (*mesh.Mesh, error) {
	log := logging.OrDiscard(s.Log)
	if !(s.Policy.Thickness > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrThickness, s.Policy.Thickness)
	}

	footprint, err := s.Footprint(m)
	if err != nil {
		return nil, err
	}
	log.Debugf("Raft footprint has %d corners, area %.2f mm²", len(footprint), footprint.SignedArea())

	slab := Extrude(footprint, s.Policy.Thickness)
	// local (x, z, -height) to working frame (x, height, z)
	return belt.NegateAxis(belt.SwapAxes(slab, mesh.Y, mesh.Z), mesh.Y), nil
}

// Extrude turns a counter-clockwise ring in the XY plane into a closed prism
// reaching from z = -thickness up to z = 0, faces pointing out.
func Extrude(poly geometry.Polygon, thickness float64) *mesh.Mesh {
	n := len(poly)
	out := &mesh.Mesh{
		Vertices: make([]r3.Vec, 0, 2*n),
		Faces:    make([]mesh.Face, 0, 4*n-4),
	}
	for _, p := range poly {
		out.Vertices = append(out.Vertices, r3.Vec{X: p.X, Y: p.Y, Z: 0})
	}
	for _, p := range poly {
		out.Vertices = append(out.Vertices, r3.Vec{X: p.X, Y: p.Y, Z: -thickness})
	}

	for i := 1; i < n-1; i++ {
		out.Faces = append(out.Faces, mesh.Face{0, i, i + 1})
	}
	for i := 1; i < n-1; i++ {
		out.Faces = append(out.Faces, mesh.Face{n, n + i + 1, n + i})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		out.Faces = append(out.Faces,
			mesh.Face{i, n + i, n + j},
			mesh.Face{i, n + j, j},
		)
	}
	return out
}
