// Package config implements the scene description and command-line
// tree of spec §6: a nested tree read from either JSON (scene files)
// or `--a.b.c=VALUE` command-line flags, and a loader that turns a
// parsed scene into Model groups and particle sources.
package config

import (
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// Tree is a nested string-keyed tree of values, as produced by parsing
// `--a.b.c=VALUE` flags with ParseArgs. Leaves are
// string, float64, bool, or []interface{}; internal nodes are
// map[string]interface{}.
type Tree map[string]interface{}

// ParseArgs splits args into positionals, boolean flags (`--name`
// with no `=`), and a nested Tree built from `--a.b.c=VALUE` flags,
// per spec §6's command-line grammar. Every `VALUE` is parsed as a
// float64 if possible, else as a bool if it is "true" or "false", else
// kept as a string.
func ParseArgs(args []string) (positionals []string, flags map[string]bool, tree Tree, err error) {
	flags = make(map[string]bool)
	tree = make(Tree)
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			positionals = append(positionals, a)
			continue
		}
		body := a[2:]
		if body == "" {
			return nil, nil, nil, chk.Err("ParseArgs: empty flag name in %q", a)
		}
		eq := strings.Index(body, "=")
		if eq < 0 {
			flags[body] = true
			continue
		}
		path := body[:eq]
		raw := body[eq+1:]
		if path == "" {
			return nil, nil, nil, chk.Err("ParseArgs: empty flag name in %q", a)
		}
		if err := tree.Set(path, parseLeaf(raw)); err != nil {
			return nil, nil, nil, err
		}
	}
	return positionals, flags, tree, nil
}

func parseLeaf(raw string) interface{} {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	return raw
}

// Set writes value at the dot-separated path, creating intermediate
// Tree nodes as needed. It fails if an existing non-Tree leaf occupies
// a path segment that needs to become an internal node.
func (t Tree) Set(path string, value interface{}) error {
	parts := strings.Split(path, ".")
	node := t
	for i, p := range parts[:len(parts)-1] {
		next, ok := node[p]
		if !ok {
			child := make(Tree)
			node[p] = child
			node = child
			continue
		}
		child, ok := next.(Tree)
		if !ok {
			return chk.Err("config.Tree.Set: %q is a leaf, cannot descend into it at segment %d of %q", p, i, path)
		}
		node = child
	}
	node[parts[len(parts)-1]] = value
	return nil
}

// Get looks up the dot-separated path, returning ok=false if any
// segment is missing.
func (t Tree) Get(path string) (value interface{}, ok bool) {
	parts := strings.Split(path, ".")
	var node interface{} = t
	for _, p := range parts {
		m, isTree := node.(Tree)
		if !isTree {
			return nil, false
		}
		next, exists := m[p]
		if !exists {
			return nil, false
		}
		node = next
	}
	return node, true
}

// GetFloat looks up path and type-asserts it to float64.
func (t Tree) GetFloat(path string) (float64, bool) {
	v, ok := t.Get(path)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetString looks up path and type-asserts it to string.
func (t Tree) GetString(path string) (string, bool) {
	v, ok := t.Get(path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Merge overlays other onto t: leaves in other replace leaves in t at
// the same path; Tree nodes are merged recursively, so one tree of
// `--a.b.c=VALUE` overrides can be layered on top of another Tree.
func (t Tree) Merge(other Tree) {
	for k, v := range other {
		childTree, vIsTree := v.(Tree)
		existing, exists := t[k]
		if vIsTree {
			if existingTree, ok := existing.(Tree); exists && ok {
				existingTree.Merge(childTree)
				continue
			}
			merged := make(Tree)
			merged.Merge(childTree)
			t[k] = merged
			continue
		}
		t[k] = v
	}
}
