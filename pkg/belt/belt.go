// Package belt maps meshes between the working frame used for support and raft
// synthesis and the frame the slicing engine expects for a tilted-gantry
// conveyor printer.
//
// The working frame is Y-up with the belt surface at y = 0 and belt travel
// along +Z. The engine frame is Z-up, sheared and stretched so that a flat-bed
// slicer produces layers parallel to the gantry.
package belt

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/mesh"
)

var (
	ErrGantryAngle  = errors.New("gantry angle must be in (0°, 90°]")
	ErrMachineDepth = errors.New("machine depth must be a positive length")
)

// Geometry describes the machine: the gantry tilt from the belt surface, in
// radians, and the usable length of the belt.
type Geometry struct {
	GantryAngle  float64
	MachineDepth float64
}

// Validate rejects angles that would make the shear or the vertical scale
// undefined.
func (g Geometry) Validate() error {
	a := g.GantryAngle
	if math.IsNaN(a) || math.IsInf(a, 0) || a <= 0 || a > math.Pi/2 {
		return fmt.Errorf("%w: got %g°", ErrGantryAngle, a*180/math.Pi)
	}
	d := g.MachineDepth
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return fmt.Errorf("%w: got %g", ErrMachineDepth, d)
	}
	return nil
}

// Transformer applies the gantry pretransform. Built once per job and safe for
// concurrent use.
type Transformer struct {
	geometry      Geometry
	linear        *r3.Mat
	verticalScale float64
	shear         float64
}

// NewTransformer builds the pretransform for g:
//
//	x' = x
//	y' = y·cot(θ) − z/sin(θ)
//	z' = y
func NewTransformer(g Geometry) (*Transformer, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	sin, cos := math.Sincos(g.GantryAngle)
	t := &Transformer{
		geometry:      g,
		verticalScale: 1 / sin,
		shear:         cos / sin,
	}
	t.linear = r3.NewMat([]float64{
		1, 0, 0,
		0, t.shear, -t.verticalScale,
		0, 1, 0,
	})
	return t, nil
}

func (t *Transformer) Geometry() Geometry { return t.geometry }

// VerticalScale is the stretch applied to heights, 1/sin(θ).
func (t *Transformer) VerticalScale() float64 { return t.verticalScale }

// Shear is the depth gained per unit of height, cot(θ).
func (t *Transformer) Shear() float64 { return t.shear }

// ApplyVec maps a single working-frame point.
func (t *Transformer) ApplyVec(v r3.Vec) r3.Vec {
	return t.linear.MulVec(v)
}

// Apply returns m with every vertex pretransformed. Only call it on working
// frame geometry after support and raft synthesis; both need true object angles.
func (t *Transformer) Apply(m *mesh.Mesh) *mesh.Mesh {
	return m.Map(t.ApplyVec)
}
