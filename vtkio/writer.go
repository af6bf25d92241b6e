// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package vtkio writes the VTK legacy ASCII POLYDATA files of spec §6,
// one per saved frame, one point per particle.
//
// Grounded on tools/GenVtu.go's buffer-then-io.WriteFile pattern
// (io.Ff into a bytes.Buffer, one buffer per section, written out in
// one call) and gofem's ndim-padding-to-3 convention for point
// coordinates.
package vtkio

import (
	"bytes"

	"github.com/cpmech/gofem-sph/field"
	"github.com/cpmech/gosl/io"
)

// Scalar names a scalar point-data block to emit.
type Scalar struct {
	Name string
	View field.RealView
}

// Vector names a vector point-data block to emit.
type Vector struct {
	Name string
	View field.RealView
	Dim  int
}

// Write serialises position (a Dim-vector field, Dim in {1,2,3}) plus
// any scalar/vector fields to path as a legacy ASCII POLYDATA file, per
// spec §6's exact header/POINTS/POINT_DATA grammar.
func Write(path, description string, position field.RealView, dim int, scalars []Scalar, vectors []Vector) error {
	n := position.Len()

	var hdr bytes.Buffer
	io.Ff(&hdr, "# vtk DataFile Version 2.0\n")
	io.Ff(&hdr, "%s\n", description)
	io.Ff(&hdr, "ASCII\n")
	io.Ff(&hdr, "DATASET POLYDATA\n")

	var pts bytes.Buffer
	io.Ff(&pts, "POINTS %d float\n", n)
	for i := 0; i < n; i++ {
		p, err := position.GetVector(i)
		if err != nil {
			return err
		}
		x, y, z := p[0], 0.0, 0.0
		if dim >= 2 {
			y = p[1]
		}
		if dim >= 3 {
			z = p[2]
		}
		io.Ff(&pts, "%23.15e %23.15e %23.15e\n", x, y, z)
	}

	var dat bytes.Buffer
	if len(scalars) > 0 || len(vectors) > 0 {
		io.Ff(&dat, "POINT_DATA %d\n", n)
		for _, s := range scalars {
			io.Ff(&dat, "SCALARS %s float 1\n", s.Name)
			io.Ff(&dat, "LOOKUP_TABLE default\n")
			for i := 0; i < n; i++ {
				v, err := s.View.GetScalar(i)
				if err != nil {
					return err
				}
				io.Ff(&dat, "%23.15e\n", v)
			}
		}
		for _, v := range vectors {
			io.Ff(&dat, "VECTORS %s float\n", v.Name)
			for i := 0; i < n; i++ {
				p, err := v.View.GetVector(i)
				if err != nil {
					return err
				}
				x, y, z := p[0], 0.0, 0.0
				if v.Dim >= 2 {
					y = p[1]
				}
				if v.Dim >= 3 {
					z = p[2]
				}
				io.Ff(&dat, "%23.15e %23.15e %23.15e\n", x, y, z)
			}
		}
	}

	return io.WriteFile(path, &hdr, &pts, &dat)
}
