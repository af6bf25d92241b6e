// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package model implements the Group/Model data structures: named,
// typed, tagged particle collections with uniform and varying fields,
// owned by a Model that also carries global fields.
package model

import (
	"regexp"

	"github.com/cpmech/gosl/chk"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func validIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

func errInvalidIdentifier(name string) error {
	return chk.Err("InvalidIdentifierError: %q does not match [A-Za-z][A-Za-z0-9_]*", name)
}

func errFieldExists(name string) error {
	return chk.Err("FieldExistsError: field %q already exists with a different type/shape", name)
}

func errUnknownField(name string) error {
	return chk.Err("UnknownFieldError: field %q does not exist", name)
}

func errGroupExists(name string) error {
	return chk.Err("GroupExistsError: group %q already exists", name)
}

func errUnknownGroup(key interface{}) error {
	return chk.Err("UnknownGroupError: no group %v", key)
}

func errBadArgument(msg string, args ...interface{}) error {
	return chk.Err("BadArgumentError: "+msg, args...)
}
