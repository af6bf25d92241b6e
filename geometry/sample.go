package geometry

import (
	"math"

	"github.com/cpmech/gofem-sph/tensor"
)

// SampleSurface generates sample points on the mesh surface at
// approximately maxSampleDistance spacing, per spec §4.I. Vertex and
// edge samples are each optional; face interiors are always covered by
// obtuse-angle decomposition, following
// original_source/rt/include/prtcl/rt/sample_surface.hpp.
func SampleSurface(mesh Mesh, maxSampleDistance float64, includeVertices, includeEdges bool) [][]float64 {
	var out [][]float64

	if includeVertices {
		out = append(out, mesh.Vertices...)
	}

	if includeEdges {
		seen := make(map[[2]int]bool)
		for _, f := range mesh.Faces {
			edges := [3][2]int{{f[0], f[1]}, {f[1], f[2]}, {f[2], f[0]}}
			for _, e := range edges {
				key := makeEdgeKey(e[0], e[1])
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, ticksBetween(mesh.Vertices[e[0]], mesh.Vertices[e[1]], maxSampleDistance)...)
			}
		}
	}

	for _, f := range mesh.Faces {
		out = append(out, sampleFaceInterior(mesh.Vertices[f[0]], mesh.Vertices[f[1]], mesh.Vertices[f[2]], maxSampleDistance)...)
	}

	return out
}

// makeEdgeKey returns an order-independent key for an undirected edge,
// so shared edges between adjacent faces are only sampled once.
func makeEdgeKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

// ticksBetween returns the interior points (excluding both endpoints)
// obtained by stepping from a to b at spacing approximately
// maxSampleDistance.
func ticksBetween(a, b []float64, maxSampleDistance float64) [][]float64 {
	d := tensor.Sub(b, a)
	length := tensor.Norm(d)
	if length <= 0 {
		return nil
	}
	n := int(math.Round(length / maxSampleDistance))
	if n < 1 {
		return nil
	}
	step := 1.0 / float64(n)
	var out [][]float64
	for i := 1; i < n; i++ {
		t := step * float64(i)
		out = append(out, tensor.Add(a, tensor.Scale(t*length, tensor.Normalized(d))))
	}
	return out
}

// project returns the orthogonal projection of p onto the line through
// origin in direction dir (dir need not be normalized).
func project(p, dir []float64) []float64 {
	denom := tensor.Dot(dir, dir)
	if denom <= 0 {
		return tensor.Zeros(len(p))
	}
	t := tensor.Dot(p, dir) / denom
	return tensor.Scale(t, dir)
}

// sampleFaceInterior samples the interior of triangle (v0,v1,v2) by
// obtuse-angle decomposition: find the vertex m with the widest angle,
// drop the altitude from m to the opposite edge (a,b), and for each
// tick g along that altitude find the points l,r where the line through
// g parallel to (a,b) meets m's two legs, then sample ticks between l
// and r. This degrades gracefully to a thin sliver of
// samples near the altitude for acute/right triangles, matching
// sample_surface.hpp.
func sampleFaceInterior(v0, v1, v2 []float64, maxSampleDistance float64) [][]float64 {
	type vertex struct {
		p         []float64
		oppositeA []float64
		oppositeB []float64
	}
	vs := []vertex{
		{v0, v1, v2},
		{v1, v2, v0},
		{v2, v0, v1},
	}

	// the widest angle is the one with the smallest cosine.
	best := 0
	worstCos := math.Inf(1)
	for i, v := range vs {
		e1 := tensor.Sub(v.oppositeA, v.p)
		e2 := tensor.Sub(v.oppositeB, v.p)
		n1, n2 := tensor.Norm(e1), tensor.Norm(e2)
		if n1 <= 0 || n2 <= 0 {
			return nil
		}
		cos := tensor.Dot(e1, e2) / (n1 * n2)
		if cos < worstCos {
			worstCos = cos
			best = i
		}
	}

	m := vs[best].p
	a := vs[best].oppositeA
	b := vs[best].oppositeB

	legA := tensor.Sub(a, m) // leg from m to a
	legB := tensor.Sub(b, m) // leg from m to b
	ab := tensor.Sub(b, a)

	h := tensor.Add(a, project(tensor.Sub(m, a), ab)) // altitude foot on (a,b)
	altitude := tensor.Sub(h, m)                       // direction from m towards h
	altLen := tensor.Norm(altitude)
	if altLen <= 0 {
		return nil
	}

	nTicks := int(math.Round(altLen / maxSampleDistance))
	if nTicks < 1 {
		return nil
	}

	var out [][]float64
	for i := 0; i <= nTicks; i++ {
		t := float64(i) / float64(nTicks)
		g := tensor.Add(m, tensor.Scale(t, altitude))
		if i == 0 {
			// g == m: degenerate, nothing to sample between l and r.
			continue
		}
		l, r, ok := intersectLegs(g, m, legA, legB, altitude)
		if !ok {
			continue
		}
		if i == nTicks {
			// g == h: l and r both coincide with h, skip to avoid
			// duplicating the edge sampling done by ticksBetween.
			continue
		}
		out = append(out, ticksBetween(l, r, maxSampleDistance)...)
		out = append(out, l, r)
	}
	return out
}

// intersectLegs finds the points l (on the line through m with
// direction legA) and r (on the line through m with direction legB)
// that both lie on the line through g with direction perpendicular to
// altitude within the triangle's plane — equivalently, l and r are the
// points where a line through g parallel to (a,b) meets the two legs.
// Parameterizing l = m + s*legA and r = m + u*legB, s and u are each
// solved on their own by matching the component along altitude to g's
// (ab is perpendicular to altitude by construction of h, so this puts
// (l-g) and (r-g) parallel to ab).
func intersectLegs(g, m, legA, legB, altitude []float64) (l, r []float64, ok bool) {
	// g = m + s*legA + 0 on the legA side is not generally exact since
	// legA is not perpendicular to altitude; instead solve directly for
	// the scalar s such that m+s*legA has the same altitude-direction
	// component as g, and similarly for u with legB.
	altDir := tensor.Normalized(altitude)
	target := tensor.Dot(tensor.Sub(g, m), altDir)

	sDenom := tensor.Dot(legA, altDir)
	uDenom := tensor.Dot(legB, altDir)
	if math.Abs(sDenom) < 1e-300 || math.Abs(uDenom) < 1e-300 {
		return nil, nil, false
	}
	s := target / sDenom
	u := target / uDenom
	if s < 0 || s > 1 || u < 0 || u > 1 {
		return nil, nil, false
	}
	l = tensor.Add(m, tensor.Scale(s, legA))
	r = tensor.Add(m, tensor.Scale(u, legB))
	return l, r, true
}

// SampleVolume fills the axis-aligned box [lo,hi] with a regular,
// edge-aligned grid of points spaced at approximately
// maxSampleDistance per dimension, per spec §4.I and
// sample_volume.hpp.
func SampleVolume(lo, hi []float64, maxSampleDistance float64) [][]float64 {
	dim := len(lo)
	delta := tensor.Sub(hi, lo)
	extents := make([]int, dim)
	step := make([]float64, dim)
	for d := 0; d < dim; d++ {
		n := int(math.Round(delta[d] / maxSampleDistance))
		if n < 1 {
			n = 1
		}
		extents[d] = n
		step[d] = delta[d] / float64(n)
	}

	total := 1
	for _, n := range extents {
		total *= n + 1
	}
	out := make([][]float64, 0, total)

	idx := make([]int, dim)
	for {
		p := make([]float64, dim)
		for d := 0; d < dim; d++ {
			p[d] = lo[d] + float64(idx[d])*step[d]
		}
		out = append(out, p)

		d := dim - 1
		for d >= 0 {
			idx[d]++
			if idx[d] <= extents[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}
	return out
}
