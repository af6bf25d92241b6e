package model

import "github.com/cpmech/gofem-sph/tensor"

// Standard global field names used throughout the solvers and driver
// (spec §3 "Global conventions").
const (
	GlobalSmoothingScale  = "smoothing_scale"
	GlobalGravity         = "gravity"
	GlobalTimeStep        = "time_step"
	GlobalMaximumTimeStep = "maximum_time_step"
	GlobalMaximumCFL      = "maximum_cfl"
	GlobalMaximumSpeed    = "maximum_speed"
	GlobalCurrentTime     = "current_time"
	GlobalFadeDuration    = "fade_duration"
)

// Standard per-group uniform names (spec §3).
const (
	UniformRestDensity    = "rest_density"
	UniformCompressibility = "compressibility"
	UniformViscosity      = "viscosity"
	UniformSurfaceTension = "surface_tension"
	UniformMass           = "mass"
)

// InitGlobals declares the standard scalar globals on m with the given
// spatial dimension for gravity, leaving values at their zero default.
func InitGlobals(m *Model, dim int) error {
	scalars := []string{
		GlobalSmoothingScale, GlobalTimeStep, GlobalMaximumTimeStep,
		GlobalMaximumCFL, GlobalMaximumSpeed, GlobalCurrentTime, GlobalFadeDuration,
	}
	for _, name := range scalars {
		if _, err := m.AddGlobal(name, tensor.TensorType{Ctype: tensor.Real, Shape: tensor.ScalarShape()}); err != nil {
			return err
		}
	}
	_, err := m.AddGlobal(GlobalGravity, tensor.TensorType{Ctype: tensor.Real, Shape: tensor.VectorShape(dim)})
	return err
}
