// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package tensor implements fixed-rank tensor math (scalars, vectors,
// matrices) and the SPH smoothing kernel used throughout the core.
package tensor

import "github.com/cpmech/gosl/chk"

// ErrBadArgument is returned when an argument violates a documented
// precondition (e.g. a non-positive epsilon).
func ErrBadArgument(msg string, args ...interface{}) error {
	return chk.Err("BadArgumentError: "+msg, args...)
}

// ErrBadDimension is returned when an operation requires a specific
// dimension (e.g. cross product in 3D) and the input does not match.
func ErrBadDimension(msg string, args ...interface{}) error {
	return chk.Err("BadDimensionError: "+msg, args...)
}

// ErrSingular is returned when a linear solve hits a non-definite or
// numerically singular factorisation.
func ErrSingular(msg string, args ...interface{}) error {
	return chk.Err("SingularError: "+msg, args...)
}
