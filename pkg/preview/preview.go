// Package preview draws the belt footprint of a job: the outline of the
// object, the raft under it and where support columns meet the belt.
package preview

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"beltengine/pkg/geometry"
	"beltengine/pkg/mesh"
)

// Scene holds working-frame meshes. Support and Raft may be nil.
type Scene struct {
	Object  *mesh.Mesh
	Support *mesh.Mesh
	Raft    *mesh.Mesh
}

var (
	objectColor  = color.RGBA{R: 30, G: 90, B: 200, A: 255}
	raftColor    = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	supportColor = color.RGBA{R: 220, G: 120, B: 20, A: 255}
)

// floorTolerance is how close to the bottom of the support a vertex must be to
// count as part of its floor.
const floorTolerance = 1e-6

// Hull is the convex outline of m on the belt plane.
func Hull(m *mesh.Mesh) geometry.Polygon {
	points := make([]geometry.Point, len(m.Vertices))
	for i, v := range m.Vertices {
		points[i] = geometry.Point{X: v.X, Y: v.Z}
	}
	return geometry.ConvexHull(points)
}

// FloorLoops returns the outlines of the faces of m that lie on its lowest
// plane. Support lifted onto a raft keeps its floor.
func FloorLoops(m *mesh.Mesh) []geometry.Polyline {
	if m.IsEmpty() {
		return nil
	}
	bottom := m.Bounds().Min.Y
	var floor []int
	for i, f := range m.Faces {
		onBelt := true
		for _, v := range f {
			if math.Abs(m.Vertices[v].Y-bottom) > floorTolerance {
				onBelt = false
				break
			}
		}
		if onBelt {
			floor = append(floor, i)
		}
	}
	if len(floor) == 0 {
		return nil
	}

	sub := m.Submesh(floor)
	var loops []geometry.Polyline
	for _, loop := range sub.BoundaryLoops() {
		line := make(geometry.Polyline, len(loop))
		for i, v := range loop {
			p := sub.Vertices[v]
			line[i] = geometry.Point{X: p.X, Y: p.Z}
		}
		loops = append(loops, line)
	}
	return loops
}

func closed(poly geometry.Polygon) plotter.XYs {
	pts := make(plotter.XYs, 0, len(poly)+1)
	for _, p := range poly {
		pts = append(pts, plotter.XY{X: p.X, Y: p.Y})
	}
	if len(poly) > 0 {
		pts = append(pts, plotter.XY{X: poly[0].X, Y: poly[0].Y})
	}
	return pts
}

func open(line geometry.Polyline) plotter.XYs {
	pts := make(plotter.XYs, len(line))
	for i, p := range line {
		pts[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return pts
}

func addLine(p *plot.Plot, pts plotter.XYs, c color.Color, width vg.Length, label string) error {
	if len(pts) < 2 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = width
	p.Add(line)
	if label != "" {
		p.Legend.Add(label, line)
	}
	return nil
}

// Plot builds the footprint plot of s.
func (s Scene) Plot() (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Belt footprint"
	p.X.Label.Text = "X (mm)"
	p.Y.Label.Text = "Z (mm, belt travel)"
	p.Add(plotter.NewGrid())

	if s.Raft != nil && !s.Raft.IsEmpty() {
		if err := addLine(p, closed(Hull(s.Raft)), raftColor, vg.Points(2), "raft"); err != nil {
			return nil, err
		}
	}
	if s.Object != nil && !s.Object.IsEmpty() {
		if err := addLine(p, closed(Hull(s.Object)), objectColor, vg.Points(1), "object"); err != nil {
			return nil, err
		}
	}
	if s.Support != nil {
		label := "support"
		for _, loop := range FloorLoops(s.Support) {
			if err := addLine(p, open(loop), supportColor, vg.Points(1), label); err != nil {
				return nil, err
			}
			label = ""
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// Save renders s to path; the image format follows the file extension.
func Save(path string, s Scene) error {
	p, err := s.Plot()
	if err != nil {
		return fmt.Errorf("failed to build preview: %w", err)
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save preview %s: %w", path, err)
	}
	return nil
}
