package config

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_tree01_parses_nested_flags_and_bools(tst *testing.T) {

	chk.PrintTitle("tree01: --a.b.c=VALUE builds a nested tree, bare --name sets a bool")

	positionals, flags, tree, err := ParseArgs([]string{
		"scene.json",
		"--model.group.block.type=fluid",
		"--model.group.block.source.0.radius=2.5",
		"--quiet",
	})
	if err != nil {
		tst.Fatalf("ParseArgs failed: %v", err)
	}
	if len(positionals) != 1 || positionals[0] != "scene.json" {
		tst.Fatalf("expected one positional %q, got %v", "scene.json", positionals)
	}
	if !flags["quiet"] {
		tst.Fatalf("expected --quiet to be set")
	}
	typ, ok := tree.GetString("model.group.block.type")
	if !ok || typ != "fluid" {
		tst.Fatalf("expected model.group.block.type=fluid, got %v (ok=%v)", typ, ok)
	}
	radius, ok := tree.GetFloat("model.group.block.source.0.radius")
	if !ok || radius != 2.5 {
		tst.Fatalf("expected radius=2.5, got %v (ok=%v)", radius, ok)
	}
}

func Test_tree02_merge_overlays_leaves_without_clobbering_siblings(tst *testing.T) {

	chk.PrintTitle("tree02: Merge overlays leaf values while preserving untouched siblings")

	base := Tree{}
	base.Set("a.b", 1.0)
	base.Set("a.c", 2.0)

	override := Tree{}
	override.Set("a.b", 99.0)

	base.Merge(override)

	b, _ := base.GetFloat("a.b")
	c, _ := base.GetFloat("a.c")
	if b != 99.0 {
		tst.Fatalf("expected a.b to be overridden to 99, got %v", b)
	}
	if c != 2.0 {
		tst.Fatalf("expected untouched sibling a.c to remain 2, got %v", c)
	}
}

func Test_tree03_set_rejects_descending_into_a_leaf(tst *testing.T) {

	chk.PrintTitle("tree03: Set refuses to turn an existing leaf into an internal node")

	tree := Tree{}
	tree.Set("a", 1.0)
	if err := tree.Set("a.b", 2.0); err == nil {
		tst.Fatalf("expected an error descending into leaf \"a\", got nil")
	}
}
