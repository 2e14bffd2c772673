// Package engine runs the external slicing engine on pretransformed meshes.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"beltengine/pkg/cfg"
	"beltengine/pkg/logging"
	"beltengine/pkg/settings"
)

// ErrNotFound is returned when the engine executable does not exist.
var ErrNotFound = errors.New("engine executable not found")

// ExitError reports an engine run that did not exit cleanly.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("engine exited with status %d", e.Code)
}

// Load is one mesh handed to the engine with its per-mesh overrides.
type Load struct {
	Path     string
	Settings []settings.Setting
}

// Request describes a single slice.
type Request struct {
	Output   string
	Settings []settings.Setting
	Meshes   []Load
}

// Args renders the engine command line, without the executable.
func (r Request) Args(definition string) []string {
	args := []string{"slice", "-v", "-j", definition, "-o", r.Output}
	for _, s := range r.Settings {
		args = append(args, "-s", s.String())
	}
	for _, l := range r.Meshes {
		args = append(args, "-l", l.Path)
		for _, s := range l.Settings {
			args = append(args, "-s", s.String())
		}
	}
	return args
}

// Runner launches the engine executable at Path.
type Runner struct {
	Path       string
	Definition string

	// LibPath is exported as LD_LIBRARY_PATH when set.
	LibPath string

	// Timeout bounds a run; zero means cfg.EngineTimeout.
	Timeout time.Duration

	Log logging.Sink
}

// Check verifies that the executable exists.
func (r *Runner) Check() error {
	if _, err := os.Stat(r.Path); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, r.Path)
	}
	return nil
}

// Run slices req and blocks until the engine exits, the timeout expires or
// ctx is cancelled. Engine output is logged at debug level.
func (r *Runner) Run(ctx context.Context, req Request) error {
	log := logging.OrDiscard(r.Log)
	if err := r.Check(); err != nil {
		return err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = cfg.EngineTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := req.Args(r.Definition)
	log.Debugf("Engine args: %s %s", r.Path, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Env = os.Environ()
	if r.LibPath != "" {
		cmd.Env = append(cmd.Env, "LD_LIBRARY_PATH="+r.LibPath)
		log.Infof("Adding lib path %s to env", r.LibPath)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open engine stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}

	// Both pipes must be drained before Wait closes them.
	var g errgroup.Group
	g.Go(func() error { return drain(stdout, log) })
	g.Go(func() error { return drain(stderr, log) })
	drainErr := g.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return fmt.Errorf("engine did not finish: %w", ctx.Err())
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("engine failed: %w", waitErr)
	}
	if drainErr != nil {
		return fmt.Errorf("failed to read engine output: %w", drainErr)
	}
	return nil
}

func drain(r io.Reader, log logging.Sink) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		log.Debugf("%s", scanner.Text())
	}
	return scanner.Err()
}

// DefaultPaths returns the bundled engine, its library directory and the
// machine definition, laid out next to the running executable.
func DefaultPaths() (path, libPath, definition string, err error) {
	exe, err := os.Executable()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to locate executable: %w", err)
	}
	base := filepath.Dir(exe)
	path, libPath, err = platformPaths(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", "", "", err
	}
	path = filepath.Join(base, path)
	if libPath != "" {
		libPath = filepath.Join(base, libPath)
	}
	definition = filepath.Join(base, "resources", "definitions", "fdmprinter.def.json")
	return path, libPath, definition, nil
}

func platformPaths(goos, goarch string) (path, libPath string, err error) {
	switch goos {
	case "windows":
		return filepath.Join("bin", "windows", "CuraEngine.exe"), "", nil
	case "linux":
		dir := "linux"
		if strings.HasPrefix(goarch, "arm") {
			dir = "armLinux"
		}
		return filepath.Join("bin", dir, "CuraEngine"), filepath.Join("bin", dir, "lib"), nil
	case "darwin":
		return filepath.Join("bin", "osx", "CuraEngine"), "", nil
	}
	return "", "", fmt.Errorf("unsupported platform: %s", goos)
}
