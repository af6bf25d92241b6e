// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package field implements type-erased, per-particle tensor storage:
// uniform fields (one tensor per group) and varying fields (one tensor
// per particle), both resizable and permutable.
package field

import "github.com/cpmech/gosl/chk"

func errBadType(msg string, args ...interface{}) error {
	return chk.Err("BadTypeError: "+msg, args...)
}

func errBadArgument(msg string, args ...interface{}) error {
	return chk.Err("BadArgumentError: "+msg, args...)
}
