// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package geometry implements the triangle-mesh loading, affine
// transforms, and surface/volume particle sampling of spec §4.I, used
// at scene setup to seed fluid and boundary groups from OBJ assets.
//
// Grounded on original_source/rt/include/prtcl/rt/geometry/triangle_mesh.hpp
// for the OBJ subset grammar and on
// original_source/rt/include/prtcl/rt/sample_surface.hpp and
// sample_volume.hpp for the sampling algorithms.
package geometry

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/cpmech/gofem-sph/tensor"
)

// Face is a triangle, referencing Mesh.Vertices by 0-based index.
type Face [3]int

// Mesh is a minimal triangle mesh: a vertex list and a face list.
type Mesh struct {
	Vertices [][]float64
	Faces    []Face
}

var (
	numberPattern = `([-+]?[0-9]*[.]?[0-9]+(?:[eE][-+]?[0-9]+)?)`
	reVertex      = regexp.MustCompile(`^v\s+` + numberPattern + `\s+` + numberPattern + `\s+` + numberPattern + `\s*$`)
	reFaceIndex   = `(\d+)(?:/\d*(?:/\d*)?)?`
	reFace3       = regexp.MustCompile(`^f\s+` + reFaceIndex + `\s+` + reFaceIndex + `\s+` + reFaceIndex + `\s*$`)
	reFace4       = regexp.MustCompile(`^f\s+` + reFaceIndex + `\s+` + reFaceIndex + `\s+` + reFaceIndex + `\s+` + reFaceIndex + `\s*$`)
)

// LoadOBJ parses a subset of the Wavefront OBJ format from path: vertex
// lines "v x y z" and triangle/quad face lines "f v[/t][/n] ...", per
// spec §6's exact grammar. Unmatched lines are ignored. An invalid or
// missing file yields an empty mesh without error, per spec §6.
func LoadOBJ(path string) (Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return Mesh{}, nil
	}
	defer f.Close()
	return parseOBJ(f)
}

func parseOBJ(r io.Reader) (Mesh, error) {
	var mesh Mesh
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if m := reVertex.FindStringSubmatch(line); m != nil {
			x, _ := strconv.ParseFloat(m[1], 64)
			y, _ := strconv.ParseFloat(m[2], 64)
			z, _ := strconv.ParseFloat(m[3], 64)
			mesh.Vertices = append(mesh.Vertices, []float64{x, y, z})
			continue
		}
		if m := reFace4.FindStringSubmatch(line); m != nil {
			i0, i1, i2, i3 := parseIdx(m[1]), parseIdx(m[2]), parseIdx(m[3]), parseIdx(m[4])
			mesh.Faces = append(mesh.Faces, Face{i0, i1, i2}, Face{i0, i2, i3})
			continue
		}
		if m := reFace3.FindStringSubmatch(line); m != nil {
			i0, i1, i2 := parseIdx(m[1]), parseIdx(m[2]), parseIdx(m[3])
			mesh.Faces = append(mesh.Faces, Face{i0, i1, i2})
			continue
		}
		// any other line (comments, vt/vn, groups, malformed faces) is
		// silently ignored per spec §6.
	}
	return mesh, nil
}

func parseIdx(s string) int {
	n, _ := strconv.Atoi(s)
	return n - 1 // OBJ indices are 1-based
}

// Scale multiplies every vertex by a uniform factor.
func (m *Mesh) Scale(factor float64) {
	for i, v := range m.Vertices {
		m.Vertices[i] = tensor.Scale(factor, v)
	}
}

// ScaleAxes multiplies each vertex componentwise by factors.
func (m *Mesh) ScaleAxes(factors []float64) {
	for i, v := range m.Vertices {
		scaled := make([]float64, len(v))
		for d := range v {
			scaled[d] = v[d] * factors[d]
		}
		m.Vertices[i] = scaled
	}
}

// Translate adds offset to every vertex.
func (m *Mesh) Translate(offset []float64) {
	for i, v := range m.Vertices {
		m.Vertices[i] = tensor.Add(v, offset)
	}
}
