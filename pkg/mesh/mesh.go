// Package mesh holds the indexed triangle mesh shared by every stage of a belt
// print job. Operations never modify their receiver; they return a new mesh with
// its own vertex and face buffers.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Axis names a coordinate axis.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Get returns the component of v along a.
func (a Axis) Get(v r3.Vec) float64 {
	switch a {
	case X:
		return v.X
	case Y:
		return v.Y
	default:
		return v.Z
	}
}

// Set returns v with its component along a replaced by f.
func (a Axis) Set(v r3.Vec, f float64) r3.Vec {
	switch a {
	case X:
		v.X = f
	case Y:
		v.Y = f
	default:
		v.Z = f
	}
	return v
}

// Face is a triangle given by three vertex indices, counter-clockwise when
// seen from outside.
type Face [3]int

// Flip returns the face with the opposite winding.
func (f Face) Flip() Face {
	return Face{f[0], f[2], f[1]}
}

// hasEdge reports whether the face traverses a->b in its winding order.
func (f Face) hasEdge(a, b int) bool {
	for k := 0; k < 3; k++ {
		if f[k] == a && f[(k+1)%3] == b {
			return true
		}
	}
	return false
}

type Mesh struct {
	Vertices []r3.Vec
	Faces    []Face
}

var ErrFaceIndex = errors.New("face references a missing vertex")

// New builds a mesh and validates its face indices.
func New(vertices []r3.Vec, faces []Face) (*Mesh, error) {
	m := &Mesh{Vertices: vertices, Faces: faces}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks that every face index refers to an existing vertex.
func (m *Mesh) Validate() error {
	for i, f := range m.Faces {
		for _, v := range f {
			if v < 0 || v >= len(m.Vertices) {
				return fmt.Errorf("face %d: %w (index %d, %d vertices)", i, ErrFaceIndex, v, len(m.Vertices))
			}
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Faces) == 0
}

func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Vertices: make([]r3.Vec, len(m.Vertices)),
		Faces:    make([]Face, len(m.Faces)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Faces, m.Faces)
	return out
}

// FaceNormal returns the unit normal of face i. Degenerate faces have a zero normal.
func (m *Mesh) FaceNormal(i int) r3.Vec {
	f := m.Faces[i]
	a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	l := r3.Norm(n)
	if l == 0 || math.IsNaN(l) {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// FaceNormals returns the unit normal of every face, in face order.
func (m *Mesh) FaceNormals() []r3.Vec {
	normals := make([]r3.Vec, len(m.Faces))
	for i := range m.Faces {
		normals[i] = m.FaceNormal(i)
	}
	return normals
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	box := r3.Box{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		box.Min = r3.Vec{X: math.Min(box.Min.X, v.X), Y: math.Min(box.Min.Y, v.Y), Z: math.Min(box.Min.Z, v.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, v.X), Y: math.Max(box.Max.Y, v.Y), Z: math.Max(box.Max.Z, v.Z)}
	}
	return box
}

// Map returns a mesh with f applied to every vertex. Faces are copied unchanged.
func (m *Mesh) Map(f func(r3.Vec) r3.Vec) *Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = f(v)
	}
	return out
}

// Translate returns the mesh moved by d.
func (m *Mesh) Translate(d r3.Vec) *Mesh {
	return m.Map(func(v r3.Vec) r3.Vec { return r3.Add(v, d) })
}

// Invert returns the mesh with every face winding reversed.
func (m *Mesh) Invert() *Mesh {
	out := m.Clone()
	for i, f := range out.Faces {
		out.Faces[i] = f.Flip()
	}
	return out
}

// Submesh returns the mesh made of the given faces. Unreferenced vertices are
// dropped; the remaining ones keep their relative order.
func (m *Mesh) Submesh(faces []int) *Mesh {
	used := make([]bool, len(m.Vertices))
	for _, fi := range faces {
		for _, v := range m.Faces[fi] {
			used[v] = true
		}
	}

	remap := make([]int, len(m.Vertices))
	out := &Mesh{Faces: make([]Face, 0, len(faces))}
	for i, u := range used {
		if !u {
			remap[i] = -1
			continue
		}
		remap[i] = len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices[i])
	}
	for _, fi := range faces {
		f := m.Faces[fi]
		out.Faces = append(out.Faces, Face{remap[f[0]], remap[f[1]], remap[f[2]]})
	}
	return out
}

// Concat joins meshes into one without merging vertices.
func Concat(meshes ...*Mesh) *Mesh {
	out := &Mesh{}
	for _, m := range meshes {
		if m == nil {
			continue
		}
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, f := range m.Faces {
			out.Faces = append(out.Faces, Face{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	return out
}

// SignedVolume is positive for a closed mesh whose faces point outward.
func (m *Mesh) SignedVolume() float64 {
	all := make([]int, len(m.Faces))
	for i := range all {
		all[i] = i
	}
	return m.signedVolume(all)
}

func (m *Mesh) signedVolume(faces []int) float64 {
	sum := 0.0
	for _, fi := range faces {
		f := m.Faces[fi]
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		sum += r3.Dot(a, r3.Cross(b, c))
	}
	return sum / 6
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	sum := 0.0
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		sum += r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a))) / 2
	}
	return sum
}

// Cuboid returns a closed axis-aligned box with outward faces.
func Cuboid(min, max r3.Vec) *Mesh {
	m := &Mesh{Vertices: make([]r3.Vec, 8)}
	for i := range m.Vertices {
		v := min
		if i&1 != 0 {
			v.X = max.X
		}
		if i&2 != 0 {
			v.Y = max.Y
		}
		if i&4 != 0 {
			v.Z = max.Z
		}
		m.Vertices[i] = v
	}
	m.Faces = []Face{
		{0, 2, 1}, {1, 2, 3}, // -z
		{4, 5, 6}, {5, 7, 6}, // +z
		{0, 1, 4}, {1, 5, 4}, // -y
		{2, 6, 3}, {3, 6, 7}, // +y
		{0, 4, 2}, {2, 4, 6}, // -x
		{1, 3, 5}, {3, 7, 5}, // +x
	}
	return m
}
