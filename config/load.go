package config

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/driver"
	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/geometry"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/tensor"
)

// LoadScene builds groups (with their sampled positions) and sources
// into m from scene,
// following original_source/rt/include/prtcl/rt/cli/load_groups.hpp's
// group/sample/source walk, adapted to this port's discrete
// model.Model/driver.Source types rather than the original's templated
// model policy. h is the smoothing scale (spec §4.H's
// "smoothing_scale" global), used to resolve adaptive vectors and as
// the default sampling spacing. dim is the spatial dimension.
//
// Returns the sources constructed for every group's `source` blocks;
// the caller is responsible for registering them with a
// *driver.Simulation via AddSource once the simulation exists.
func LoadScene(m *model.Model, scene Scene, h float64, dim int) ([]*driver.Source, error) {
	var sources []*driver.Source

	for name, g := range scene.Model.Group {
		group, err := m.AddGroup(name, g.Type)
		if err != nil {
			return nil, chk.Err("LoadScene: group %q: %v", name, err)
		}
		if _, err := group.AddVarying("position", tensor.TensorType{Ctype: tensor.Real, Shape: tensor.VectorShape(dim)}); err != nil {
			return nil, chk.Err("LoadScene: group %q: add position: %v", name, err)
		}

		samples, err := sampleAll(g.Sample, h, dim)
		if err != nil {
			return nil, chk.Err("LoadScene: group %q: %v", name, err)
		}
		if err := appendPositions(group, samples, dim); err != nil {
			return nil, chk.Err("LoadScene: group %q: %v", name, err)
		}

		for i, sc := range g.Source {
			src, err := buildSource(group, sc, h, dim)
			if err != nil {
				return nil, chk.Err("LoadScene: group %q: source %d: %v", name, i, err)
			}
			sources = append(sources, src)
		}
	}

	return sources, nil
}

// sampleAll loads and samples every `sample` block of a group or
// source, concatenating the resulting points.
func sampleAll(blocks []Sample, h float64, dim int) ([][]float64, error) {
	var all [][]float64
	for _, s := range blocks {
		pts, err := sampleOne(s, h, dim)
		if err != nil {
			return nil, err
		}
		all = append(all, pts...)
	}
	return all, nil
}

func sampleOne(s Sample, h float64, dim int) ([][]float64, error) {
	if s.What != "triangle_mesh" {
		return nil, chk.Err("sampleOne: unsupported sample.what=%q (only \"triangle_mesh\" is implemented)", s.What)
	}
	if s.FileType != "obj" {
		return nil, chk.Err("sampleOne: unsupported sample.file_type=%q (only \"obj\" is implemented)", s.FileType)
	}

	mesh, err := geometry.LoadOBJ(s.FilePath)
	if err != nil {
		return nil, chk.Err("sampleOne: %v", err)
	}

	scaling := tensor.Ones(dim)
	if s.Scaling != nil {
		scaling = s.Scaling.Resolve(h)
	}
	mesh.ScaleAxes(scaling)

	translation := tensor.Zeros(dim)
	if s.Translation != nil {
		translation = s.Translation.Resolve(h)
	}
	mesh.Translate(translation)

	switch s.Kind {
	case "surface":
		return geometry.SampleSurface(mesh, h, true, true), nil
	case "volume":
		lo, hi := s.VolumeLo, s.VolumeHi
		if lo == nil || hi == nil {
			return nil, chk.Err("sampleOne: sample.kind=\"volume\" requires volume_lo and volume_hi")
		}
		return geometry.SampleVolume(lo, hi, h), nil
	default:
		return nil, chk.Err("sampleOne: unsupported sample.kind=%q (expected \"surface\" or \"volume\")", s.Kind)
	}
}

// appendPositions grows group by len(samples) items and writes
// samples into its "position" varying field starting at the old item
// count, following load_groups.hpp's append_samples.
func appendPositions(group *model.Group, samples [][]float64, dim int) error {
	if len(samples) == 0 {
		return nil
	}
	first, _, err := group.CreateItems(len(samples))
	if err != nil {
		return err
	}
	posField, err := group.GetVarying("position")
	if err != nil {
		return err
	}
	posView, err := field.AsRealView(posField)
	if err != nil {
		return err
	}
	for i, p := range samples {
		if err := posView.SetVector(first+i, p[:dim]); err != nil {
			return err
		}
	}
	return nil
}

// buildSource resolves a scene Source block (adaptive velocity, and
// explicit center/radius/remaining/kind) into a driver.Source bound to
// group, per spec §4.H's construction contract.
func buildSource(group *model.Group, sc Source, h float64, dim int) (*driver.Source, error) {
	velocity := sc.Velocity.Resolve(h)
	if len(velocity) == 0 || tensor.Norm(velocity) == 0 {
		return nil, chk.Err("buildSource: velocity must be non-zero")
	}
	center := sc.Center
	if center == nil {
		center = tensor.Zeros(dim)
	}
	kind := driver.HCP
	switch sc.Kind {
	case "", "hcp":
		kind = driver.HCP
	case "scg":
		kind = driver.SCG
	default:
		return nil, chk.Err("buildSource: unsupported source.kind=%q (expected \"hcp\" or \"scg\")", sc.Kind)
	}
	return driver.NewSource(group, center[:dim], velocity[:dim], sc.Radius, sc.Remaining, kind), nil
}
