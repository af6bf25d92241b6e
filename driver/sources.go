package driver

import (
	"math"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gofem-sph/model"
	"github.com/cpmech/gofem-sph/nhood"
	"github.com/cpmech/gofem-sph/tensor"
)

// LatticeKind selects which 2D layer pattern a Source emits, per spec
// §4.H ("two realizations exist: HCP lattice and simple cubic
// lattice").
type LatticeKind int

const (
	// HCP emits a hexagonal close-packed layer, alternating its in-plane
	// offset between even and odd invocations so consecutive layers
	// interlock into a 3D HCP stack.
	HCP LatticeKind = iota
	// SCG emits a simple cubic (square) grid layer.
	SCG
)

// antiPileupFactor is the 1.1*h exclusion radius spec §4.H names.
const antiPileupFactor = 1.1

// Source is a particle emitter: every scheduled invocation emits one
// layer of particles in a disk orthogonal to Velocity, anti-pileup
// checked against a Neighbor index, until Remaining reaches zero.
type Source struct {
	Target     *model.Group
	Center     []float64
	Velocity   []float64
	Radius     float64
	Remaining  int
	Kind       LatticeKind

	invocation int
}

// NewSource returns an unstarted source targeting group, per spec
// §4.H's construction contract.
func NewSource(target *model.Group, center, velocity []float64, radius float64, remaining int, kind LatticeKind) *Source {
	return &Source{Target: target, Center: center, Velocity: velocity, Radius: radius, Remaining: remaining, Kind: kind}
}

// layerHeight returns the spacing spec §4.H fixes per lattice kind:
// sqrt(6)*h/3 for HCP, h/sqrt(2) for SCG.
func (src *Source) layerHeight(h float64) float64 {
	if src.Kind == HCP {
		return math.Sqrt(6) * h / 3
	}
	return h / math.Sqrt2
}

// planeBasis returns two unit vectors spanning the plane orthogonal to
// velocity, for laying out a 2D lattice in 3D.
func planeBasis(velocity []float64) (u, v []float64) {
	n := tensor.Normalized(velocity)
	arbitrary := []float64{1, 0, 0}
	if math.Abs(tensor.Dot(n, arbitrary)) > 0.9 {
		arbitrary = []float64{0, 1, 0}
	}
	u, _ = tensor.Cross(n, arbitrary)
	u = tensor.Normalized(u)
	v, _ = tensor.Cross(n, u)
	return u, v
}

// latticeOffsets2D returns the in-plane (u,v) offsets of every lattice
// site inside a disk of the given radius, for layer number
// src.invocation (used by HCP to alternate the offset between even and
// odd layers).
func (src *Source) latticeOffsets2D(h float64) [][2]float64 {
	spacing := h
	var offsets [][2]float64
	switch src.Kind {
	case HCP:
		rowSpacing := math.Sqrt(3) / 2 * spacing
		shift := 0.0
		if src.invocation%2 == 1 {
			shift = spacing / 2
		}
		rows := int(math.Ceil(src.Radius/rowSpacing)) + 1
		for r := -rows; r <= rows; r++ {
			y := float64(r) * rowSpacing
			if math.Abs(y) > src.Radius {
				continue
			}
			rowShift := shift
			if r%2 != 0 {
				rowShift += spacing / 2
			}
			cols := int(math.Ceil(src.Radius/spacing)) + 1
			for c := -cols; c <= cols; c++ {
				x := float64(c)*spacing + rowShift
				if x*x+y*y <= src.Radius*src.Radius {
					offsets = append(offsets, [2]float64{x, y})
				}
			}
		}
	case SCG:
		n := int(math.Ceil(src.Radius / spacing))
		for r := -n; r <= n; r++ {
			for c := -n; c <= n; c++ {
				x := float64(c) * spacing
				y := float64(r) * spacing
				if x*x+y*y <= src.Radius*src.Radius {
					offsets = append(offsets, [2]float64{x, y})
				}
			}
		}
	}
	return offsets
}

// tooClose reports whether an existing particle already occupies a
// 1.1*h neighborhood of pos, the anti-pileup check of spec §4.H. The
// shared index's own configured radius is the (larger) kernel support
// radius, so candidates it returns are filtered down to the true
// anti-pileup distance rather than taken as-is.
func tooClose(idx *nhood.Index, pos []float64, h float64) bool {
	limit := antiPileupFactor * h
	limit2 := limit * limit
	found := false
	_ = idx.NeighborsOfPoint(pos, -1, func(group, item int) {
		if found {
			return
		}
		q, err := idx.PositionOf(group, item)
		if err != nil {
			return
		}
		var d2 float64
		for i := range pos {
			d := pos[i] - q[i]
			d2 += d * d
		}
		if d2 <= limit2 {
			found = true
		}
	})
	return found
}

// Callback returns the scheduler Callback for this source, bound to the
// simulation constants it needs: the smoothing scale h, the dimension
// dim, and the shared Neighbor index (queried at the kernel support
// radius, then filtered down to the 1.1*h anti-pileup distance by
// tooClose).
func (src *Source) Callback(idx *nhood.Index, clock *Clock, h float64, dim int) Callback {
	return func(s *Scheduler, lateness float64) Result {
		if src.Remaining <= 0 {
			return DoNothingResult()
		}
		speed := tensor.Norm(src.Velocity)
		interval := src.layerHeight(h) / speed
		base := tensor.Add(src.Center, tensor.Scale(interval+lateness, src.Velocity))
		u, v := planeBasis(src.Velocity)

		posField, _ := src.Target.GetVarying("position")
		velField, _ := src.Target.GetVarying("velocity")
		tobField, _ := src.Target.GetVarying("time_of_birth")
		posView, _ := field.AsRealView(posField)
		velView, _ := field.AsRealView(velField)
		tobView, _ := field.AsRealView(tobField)

		// mass = h^dim * rest_density, per spec §4.H, when the target group
		// carries mass as a per-particle (varying) field rather than a
		// single group-wide uniform.
		massView, hasMassView := src.varyingMassView()
		mass := 0.0
		if hasMassView {
			mass = src.newParticleMass(h, dim)
		}

		for _, off := range src.latticeOffsets2D(h) {
			if src.Remaining <= 0 {
				break
			}
			pos := tensor.Add(base, tensor.Add(tensor.Scale(off[0], u), tensor.Scale(off[1], v)))
			pos = pos[:dim]
			if tooClose(idx, pos, h) {
				continue
			}
			// views stay valid across CreateItems: they wrap the group's
			// storage pointer, which Resize mutates in place rather than
			// replacing.
			first, _, err := src.Target.CreateItems(1)
			if err != nil {
				continue
			}
			posView.SetVector(first, pos)
			velView.SetVector(first, src.Velocity[:dim])
			tobView.SetScalar(first, clock.Now())
			if hasMassView {
				massView.SetScalar(first, mass)
			}
			src.Remaining--
		}
		src.invocation++
		return RescheduleAfter(interval)
	}
}

// varyingMassView returns the target group's "mass" field as a
// RealView, if it is stored per-particle rather than as a single
// group-wide uniform.
func (src *Source) varyingMassView() (field.RealView, bool) {
	f, err := src.Target.GetVarying("mass")
	if err != nil {
		return field.RealView{}, false
	}
	v, err := field.AsRealView(f)
	if err != nil {
		return field.RealView{}, false
	}
	return v, true
}

// newParticleMass computes h^dim * rest_density, per spec §4.H's
// "mass=h^N*rest_density" construction rule for newly created
// particles.
func (src *Source) newParticleMass(h float64, dim int) float64 {
	restDensity := 0.0
	if f, err := src.Target.GetUniform("rest_density"); err == nil {
		if v, err := field.AsRealView(f); err == nil {
			restDensity, _ = v.GetScalar(0)
		}
	}
	hN := 1.0
	for i := 0; i < dim; i++ {
		hN *= h
	}
	return hN * restDensity
}
