// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command prtcl runs an SPH simulation from a scene file, per spec §6.
//
// Usage:
//
//	prtcl [--quiet] [--a.b.c=VALUE ...] scene.json
//
// Positional arguments name the scene file; `--name` sets a boolean
// option; `--a.b.c=VALUE` sets a run option. The options read are dim,
// frames, out_dir, fn_key, smoothing_scale (required), max_cfl,
// max_time_step and fade_duration; other keys are parsed but not used,
// and values inside the scene file are not overridden. Exit codes
// follow spec §6: 0 success, 1 argument error, 2 runtime error.
package main

import (
	"os"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gofem-sph/config"
	"github.com/cpmech/gofem-sph/driver"
	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
)

const (
	exitSuccess      = 0
	exitArgumentErr  = 1
	exitRuntimeErr   = 2
	defaultDimension = 3
	defaultFrames    = 60
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	positionals, flags, tree, err := config.ParseArgs(args)
	if err != nil {
		io.PfRed("ERROR: %v\n", err)
		return exitArgumentErr
	}
	if len(positionals) != 1 {
		io.PfRed("ERROR: expected exactly one scene file argument, got %d\n", len(positionals))
		return exitArgumentErr
	}
	scenePath := positionals[0]

	dim := defaultDimension
	if d, ok := tree.GetFloat("dim"); ok {
		dim = int(d)
	}
	frames := defaultFrames
	if f, ok := tree.GetFloat("frames"); ok {
		frames = int(f)
	}
	outDir, _ := tree.GetString("out_dir")
	fnKey, _ := tree.GetString("fn_key")
	if fnKey == "" {
		fnKey = io.FnKey(scenePath)
	}

	log := driver.NewLogger()
	log.Quiet = flags["quiet"]

	scene, err := config.ReadScene(scenePath)
	if err != nil {
		log.Errorf("ERROR: %v", err)
		return exitRuntimeErr
	}

	m := model.NewModel()
	if err := model.InitGlobals(m, dim); err != nil {
		log.Errorf("ERROR: %v", err)
		return exitRuntimeErr
	}

	h, ok := tree.GetFloat("smoothing_scale")
	if !ok {
		log.Errorf("ERROR: scene requires a --smoothing_scale=VALUE override (no default)")
		return exitArgumentErr
	}
	if err := setGlobalScalar(m, model.GlobalSmoothingScale, h); err != nil {
		log.Errorf("ERROR: %v", err)
		return exitRuntimeErr
	}
	applyScalarOverride(m, tree, "max_cfl", model.GlobalMaximumCFL, 0.4)
	applyScalarOverride(m, tree, "max_time_step", model.GlobalMaximumTimeStep, 0.001)
	applyScalarOverride(m, tree, "fade_duration", model.GlobalFadeDuration, 0)

	sources, err := config.LoadScene(m, scene, h, dim)
	if err != nil {
		log.Errorf("ERROR: %v", err)
		return exitRuntimeErr
	}

	sim, err := driver.NewSimulation(dim, m, log)
	if err != nil {
		log.Errorf("ERROR: %v", err)
		return exitRuntimeErr
	}
	sim.OutDir = outDir
	sim.FnKey = fnKey

	for _, src := range sources {
		sim.AddSource(src)
	}

	if err := sim.RunFrames(frames); err != nil {
		log.Errorf("ERROR: %v", err)
		return exitRuntimeErr
	}

	log.Okf("> Success (%d frames, clock=%.6f)", frames, sim.Clock.Now())
	return exitSuccess
}

func applyScalarOverride(m *model.Model, tree config.Tree, key, globalName string, def float64) {
	v := def
	if override, ok := tree.GetFloat(key); ok {
		v = override
	}
	setGlobalScalar(m, globalName, v)
}

func setGlobalScalar(m *model.Model, name string, v float64) error {
	f, err := m.GetGlobal(name)
	if err != nil {
		return err
	}
	view, err := field.AsRealView(f)
	if err != nil {
		return err
	}
	return view.SetScalar(0, v)
}
