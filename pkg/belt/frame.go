package belt

import (
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/mesh"
)

// SwapAxes exchanges two coordinate axes. A swap mirrors the mesh, so the
// winding is inverted to keep faces pointing out.
func SwapAxes(m *mesh.Mesh, a, b mesh.Axis) *mesh.Mesh {
	if a == b {
		return m.Clone()
	}
	return m.Map(func(v r3.Vec) r3.Vec {
		va, vb := a.Get(v), b.Get(v)
		return b.Set(a.Set(v, vb), va)
	}).Invert()
}

// NegateAxis mirrors the mesh along one axis and inverts the winding.
func NegateAxis(m *mesh.Mesh, a mesh.Axis) *mesh.Mesh {
	return m.Map(func(v r3.Vec) r3.Vec {
		return a.Set(v, -a.Get(v))
	}).Invert()
}

// InvertWinding reverses every face without moving vertices.
func InvertWinding(m *mesh.Mesh) *mesh.Mesh {
	return m.Invert()
}

// ToWorkingFrame converts a Z-up model into the working frame and moves it to
// the start of the belt: centred on x = 0, resting on y = 0 and starting at
// z = 0. Face winding is made consistent and outward.
func ToWorkingFrame(m *mesh.Mesh) *mesh.Mesh {
	// Z-up to Y-up with +Z along the belt
	out := NegateAxis(SwapAxes(m, mesh.Y, mesh.Z), mesh.Z)

	b := out.Bounds()
	out = out.Translate(r3.Vec{
		X: -(b.Min.X + b.Max.X) / 2,
		Y: -b.Min.Y,
		Z: -b.Min.Z,
	})
	return out.FixNormals()
}

// ToEngineFrame pretransforms a working frame mesh and converts it to the
// engine's Z-up convention.
func (t *Transformer) ToEngineFrame(m *mesh.Mesh) *mesh.Mesh {
	return SwapAxes(t.Apply(m), mesh.Y, mesh.Z)
}
