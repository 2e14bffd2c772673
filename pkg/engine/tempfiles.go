package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"beltengine/pkg/mesh"
	"beltengine/pkg/meshio"
)

// TempMeshes owns the mesh files written for one engine run. Close removes
// all of them and must be deferred right after construction.
type TempMeshes struct {
	dir   string
	paths []string
}

// NewTempMeshes writes into dir, or the system temp directory when dir is
// empty.
func NewTempMeshes(dir string) *TempMeshes {
	if dir == "" {
		dir = os.TempDir()
	}
	return &TempMeshes{dir: dir}
}

// Write exports m to a new uniquely named STL file and returns its path.
func (t *TempMeshes) Write(m *mesh.Mesh) (string, error) {
	path := filepath.Join(t.dir, uuid.New().String()+".stl")
	t.paths = append(t.paths, path)
	if err := meshio.SaveSTL(path, m); err != nil {
		return "", fmt.Errorf("failed to write temporary mesh: %w", err)
	}
	return path, nil
}

// Paths lists the files written so far.
func (t *TempMeshes) Paths() []string {
	return append([]string(nil), t.paths...)
}

// Close removes every written file. Files that are already gone are ignored.
func (t *TempMeshes) Close() error {
	var errs []error
	for _, p := range t.paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	t.paths = nil
	return errors.Join(errs...)
}
