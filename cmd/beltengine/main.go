package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"beltengine/pkg/cfg"
	"beltengine/pkg/engine"
	"beltengine/pkg/job"
	"beltengine/pkg/logging"
	"beltengine/pkg/settings"
)

// repeated collects every occurrence of a flag.
type repeated []string

func (r *repeated) String() string { return strings.Join(*r, ", ") }

func (r *repeated) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var profiles, overrides repeated
	verbose := flag.Bool("v", false, "show verbose messages")
	enginePath := flag.String("x", "", "engine executable path")
	definition := flag.String("j", "", "machine definition file")
	output := flag.String("o", "", "gcode output file")
	timeout := flag.Duration("timeout", cfg.EngineTimeout, "maximum engine run time")
	previewPath := flag.String("preview", "", "write a footprint preview image")
	flag.Var(&profiles, "c", "settings profile (YAML, or key = value lines), may be repeated")
	flag.Var(&overrides, "s", "setting as key=value, may be repeated")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] -o output.gcode model.stl\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := logging.INFO
	if *verbose {
		level = logging.DEBUG
	}
	log := logging.New(os.Stderr, level, true)

	if flag.NArg() != 1 || *output == "" {
		flag.Usage()
		return 2
	}

	runner := &engine.Runner{Path: *enginePath, Definition: *definition, Timeout: *timeout, Log: log}
	if runner.Path == "" || runner.Definition == "" {
		path, libPath, def, err := engine.DefaultPaths()
		if err != nil {
			log.Errorf("%s", err)
			return 1
		}
		if runner.Path == "" {
			runner.Path, runner.LibPath = path, libPath
		}
		if runner.Definition == "" {
			runner.Definition = def
		}
	}
	if abs, err := filepath.Abs(runner.Path); err == nil {
		runner.Path = abs
	}

	store := settings.New(log)
	for _, p := range profiles {
		if err := store.LoadProfile(p); err != nil {
			log.Errorf("%s", err)
			return 1
		}
	}
	for _, o := range overrides {
		if err := store.Override(o); err != nil {
			log.Errorf("%s", err)
			return 1
		}
	}
	for _, s := range store.NonDefault() {
		log.Debugf("Setting %s", s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	err := job.Run(ctx, job.Options{
		Model:   flag.Arg(0),
		Output:  *output,
		Store:   store,
		Runner:  runner,
		Preview: *previewPath,
		Log:     log,
	})
	if err != nil {
		log.Errorf("%s", err)
		return 1
	}
	log.Infof("Sliced %s in %s", flag.Arg(0), time.Since(start).Round(time.Millisecond))
	return 0
}
