// Package meshio loads and saves meshes as STL files.
package meshio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/unixpickle/model3d/model3d"

	"beltengine/pkg/cfg"
	"beltengine/pkg/logging"
	"beltengine/pkg/mesh"
)

// LoadSTL reads an STL file and welds its corners into an indexed mesh.
func LoadSTL(path string, log logging.Sink) (*mesh.Mesh, error) {
	log = logging.OrDiscard(log)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer f.Close()

	triangles, err := model3d.ReadSTL(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read STL %s: %w", path, err)
	}
	m, dropped := Weld(triangles, cfg.WeldMaxDistance)
	if dropped > 0 {
		log.Warnf("Dropped %d degenerate triangles from %s", dropped, path)
	}
	log.Debugf("Loaded %d triangles, %d vertices from %s", m.FaceCount(), m.VertexCount(), path)
	return m, nil
}

// Triangles converts m into the triangle list model3d works with.
func Triangles(m *mesh.Mesh) []*model3d.Triangle {
	out := make([]*model3d.Triangle, len(m.Faces))
	for i, f := range m.Faces {
		var tri model3d.Triangle
		for k, v := range f {
			p := m.Vertices[v]
			tri[k] = model3d.XYZ(p.X, p.Y, p.Z)
		}
		out[i] = &tri
	}
	return out
}

// SaveSTL writes m as a binary STL file.
func SaveSTL(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mesh file: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := model3d.WriteSTL(w, Triangles(m)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write STL %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write STL %s: %w", path, err)
	}
	return f.Close()
}
