package meshio

import (
	"math"

	"github.com/asim/quadtree"
	"github.com/unixpickle/model3d/model3d"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/mesh"
)

// vertexTree finds already welded vertices near a corner. The quadtree holds
// one point per distinct (x, y) with the indices of every vertex in that
// column; z is compared on lookup. The quadtree never stops dividing a full
// node, so it must not hold more than Capacity points at one position.
type vertexTree struct {
	quadTree    *quadtree.QuadTree
	vertices    []r3.Vec
	maxDistance float64
}

// column lists the vertices sharing one exact (x, y).
type column struct {
	indices []int
}

func newVertexTree(minX, minY, maxX, maxY, maxDistance float64) *vertexTree {
	midX := (maxX + minX) / 2
	midY := (maxY + minY) / 2
	halfWidth := maxX - midX
	halfHeight := maxY - midY

	// Add a small margin to avoid dropping points at the edges
	halfWidth += 1 + maxDistance
	halfHeight += 1 + maxDistance

	aabb := quadtree.NewAABB(
		quadtree.NewPoint(midX, midY, nil),
		quadtree.NewPoint(halfWidth, halfHeight, nil))
	return &vertexTree{
		quadTree:    quadtree.New(aabb, 0, nil),
		maxDistance: maxDistance,
	}
}

// index returns the vertex for c, adding it when no vertex is close enough.
// Among several matches the lowest index wins.
func (t *vertexTree) index(c r3.Vec) int {
	near := quadtree.NewAABB(
		quadtree.NewPoint(c.X, c.Y, nil),
		quadtree.NewPoint(t.maxDistance, t.maxDistance, nil),
	)
	best := -1
	var same *column
	for _, p := range t.quadTree.Search(near) {
		col := p.Data().(*column)
		if x, y := p.Coordinates(); x == c.X && y == c.Y {
			same = col
		}
		for _, i := range col.indices {
			if r3.Norm(r3.Sub(t.vertices[i], c)) > t.maxDistance {
				continue
			}
			if best < 0 || i < best {
				best = i
			}
		}
	}
	if best >= 0 {
		return best
	}

	i := len(t.vertices)
	t.vertices = append(t.vertices, c)
	if same != nil {
		same.indices = append(same.indices, i)
		return i
	}
	t.quadTree.Insert(quadtree.NewPoint(c.X, c.Y, &column{indices: []int{i}}))
	return i
}

// Weld merges triangle corners closer than maxDistance into shared vertices.
// Triangles that collapse onto fewer than three vertices are dropped; the
// number dropped is returned.
func Weld(triangles []*model3d.Triangle, maxDistance float64) (*mesh.Mesh, int) {
	if len(triangles) == 0 {
		return &mesh.Mesh{}, 0
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, tri := range triangles {
		for _, c := range tri {
			minX, maxX = math.Min(minX, c.X), math.Max(maxX, c.X)
			minY, maxY = math.Min(minY, c.Y), math.Max(maxY, c.Y)
		}
	}
	tree := newVertexTree(minX, minY, maxX, maxY, maxDistance)

	out := &mesh.Mesh{Faces: make([]mesh.Face, 0, len(triangles))}
	dropped := 0
	for _, tri := range triangles {
		var f mesh.Face
		for k, c := range tri {
			f[k] = tree.index(r3.Vec{X: c.X, Y: c.Y, Z: c.Z})
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			dropped++
			continue
		}
		out.Faces = append(out.Faces, f)
	}
	out.Vertices = tree.vertices
	return out, dropped
}
