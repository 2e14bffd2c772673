// Package job prepares and slices one model for a belt printer: support and
// raft generation, the belt pretransform, the engine run and the belt wall
// post-processing of the motion program.
package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"beltengine/pkg/belt"
	"beltengine/pkg/engine"
	"beltengine/pkg/gcode"
	"beltengine/pkg/logging"
	"beltengine/pkg/mesh"
	"beltengine/pkg/meshio"
	"beltengine/pkg/preview"
	"beltengine/pkg/raft"
	"beltengine/pkg/settings"
	"beltengine/pkg/support"
)

type Options struct {
	// Model is the STL file to slice, Z up.
	Model string
	// Output is where the engine writes the motion program.
	Output string
	Store  *settings.Store
	Runner *engine.Runner
	// Preview, when set, is the path of a footprint image written before slicing.
	Preview string
	// TempDir holds the intermediate meshes; empty means the system default.
	TempDir string
	Log     logging.Sink
}

// Meshes are the working-frame meshes of a job. Support and Raft are nil when
// they are disabled or not needed.
type Meshes struct {
	Object  *mesh.Mesh
	Support *mesh.Mesh
	Raft    *mesh.Mesh
}

// Prepare builds the support and raft for object, which must already be in
// the working frame, and lifts object and support onto the raft.
func Prepare(object *mesh.Mesh, b settings.Belt, log logging.Sink) (Meshes, error) {
	log = logging.OrDiscard(log)
	out := Meshes{Object: object}

	if b.Support {
		log.Infof("Creating support mesh")
		s := &support.Synthesizer{
			Policy: support.Policy{
				Angle:             b.SupportAngle,
				Down:              support.DownVector(b.SupportGantryBias),
				BottomCutoff:      b.WallLineWidth0,
				MinimumIslandArea: b.SupportMinimumIslandArea,
				FilterUpwardFaces: true,
			},
			Log: log,
		}
		if m := s.Synthesize(object); !m.IsEmpty() {
			out.Support = m
		}
	}

	if b.Raft {
		log.Infof("Creating raft mesh")
		r := &raft.Synthesizer{
			Policy: raft.Policy{Margin: b.RaftMargin, Thickness: b.RaftThickness},
			Log:    log,
		}
		m, err := r.Synthesize(object)
		if err != nil {
			return Meshes{}, fmt.Errorf("failed to create raft: %w", err)
		}
		out.Raft = m

		lift := r3.Vec{Y: b.RaftThickness + b.RaftGap}
		out.Object = out.Object.Translate(lift)
		if out.Support != nil {
			out.Support = out.Support.Translate(lift)
		}
	}
	return out, nil
}

// Run executes one job end to end. The intermediate meshes are removed on
// every path.
func Run(ctx context.Context, opts Options) (err error) {
	log := logging.OrDiscard(opts.Log)
	if opts.Store == nil || opts.Runner == nil {
		return errors.New("job needs settings and an engine runner")
	}
	id := uuid.New()
	log.Debugf("Job %s: slicing %s to %s", id, opts.Model, opts.Output)

	b := settings.ResolveBelt(opts.Store)
	transformer, err := belt.NewTransformer(belt.Geometry{GantryAngle: b.GantryAngle, MachineDepth: b.MachineDepth})
	if err != nil {
		return err
	}
	if err := opts.Runner.Check(); err != nil {
		return err
	}
	log.Infof("Using engine from %s", opts.Runner.Path)

	object, err := meshio.LoadSTL(opts.Model, log)
	if err != nil {
		return err
	}
	if object.IsEmpty() {
		return fmt.Errorf("model %s has no faces", opts.Model)
	}
	meshes, err := Prepare(belt.ToWorkingFrame(object), b, log)
	if err != nil {
		return err
	}

	if opts.Preview != "" {
		scene := preview.Scene{Object: meshes.Object, Support: meshes.Support, Raft: meshes.Raft}
		if err := preview.Save(opts.Preview, scene); err != nil {
			return err
		}
		log.Infof("Wrote preview to %s", opts.Preview)
	}

	opts.Store.AdjustForEngine(b)
	req := engine.Request{Output: opts.Output, Settings: opts.Store.EngineSettings()}
	log.Debugf("Job %s: settings %v", id, req.Settings)

	temp := engine.NewTempMeshes(opts.TempDir)
	defer func() {
		if cerr := temp.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to remove temporary meshes: %w", cerr)
		}
	}()

	loads := []struct {
		name      string
		m         *mesh.Mesh
		overrides []settings.Setting
	}{
		{"mesh", meshes.Object, nil},
		{"support-mesh", meshes.Support, settings.SupportMeshSettings()},
		{"raft-mesh", meshes.Raft, b.RaftMeshSettings()},
	}
	for _, l := range loads {
		if l.m == nil {
			continue
		}
		log.Infof("Creating temporary pretransformed %s", l.name)
		path, err := temp.Write(transformer.ToEngineFrame(l.m))
		if err != nil {
			return err
		}
		req.Meshes = append(req.Meshes, engine.Load{Path: path, Settings: l.overrides})
	}

	log.Infof("Launching engine")
	runErr := opts.Runner.Run(ctx, req)
	log.Infof("Removing temporary meshes")
	if err := temp.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to remove temporary meshes: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	if b.BeltWall {
		log.Infof("Post processing gcode for belt wall")
		c := gcode.NewCompensator(true, b.BeltWallFlow, b.BeltWallSpeed, b.WallLineWidth0)
		c.Log = log
		if err := c.ProcessFile(opts.Output); err != nil {
			return err
		}
	}
	log.Debugf("Job %s: done", id)
	return nil
}
