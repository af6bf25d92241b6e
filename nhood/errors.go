// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package nhood implements the spatial neighbor index: a uniform 3D
// spatial hash over particle positions spanning all groups of a Model,
// answering radius-bounded range queries.
package nhood

import "github.com/cpmech/gosl/chk"

func errBadRadius(r float64) error {
	return chk.Err("BadRadiusError: radius must be positive, got %v", r)
}

func errMissingPosition(group string) error {
	return chk.Err("MissingPositionError: group %q has no position field of the expected shape", group)
}
