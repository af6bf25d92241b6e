// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package driver implements the virtual clock, event scheduler,
// particle sources, and per-frame simulation loop of spec §4.H.
package driver

import "github.com/cpmech/gosl/chk"

// errBadFileFormat wraps an invalid scene setting, such as a
// non-positive smoothing_scale (spec §7's BadFileFormatError, surfaced
// at startup only).
func errBadFileFormat(msg string, args ...interface{}) error {
	return chk.Err("BadFileFormatError: "+msg, args...)
}
