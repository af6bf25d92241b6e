package geometry

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_sample01_surface_includes_vertices_when_requested(tst *testing.T) {

	chk.PrintTitle("sample01: surface sampling includes mesh vertices when requested")

	mesh := Mesh{
		Vertices: [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:    []Face{{0, 1, 2}},
	}
	pts := SampleSurface(mesh, 10.0, true, false)
	if len(pts) < 3 {
		tst.Fatalf("expected at least the 3 vertices, got %d points", len(pts))
	}
}

func Test_sample02_surface_without_vertices_or_edges_still_covers_face(tst *testing.T) {

	chk.PrintTitle("sample02: a large triangle is still sampled across its interior")

	mesh := Mesh{
		Vertices: [][]float64{{0, 0, 0}, {4, 0, 0}, {0, 4, 0}},
		Faces:    []Face{{0, 1, 2}},
	}
	pts := SampleSurface(mesh, 1.0, false, false)
	if len(pts) == 0 {
		tst.Fatalf("expected interior samples for a triangle much larger than the sample spacing")
	}
}

func Test_sample03_volume_grid_covers_box_edges(tst *testing.T) {

	chk.PrintTitle("sample03: volume sampling lays out an edge-aligned grid")

	lo := []float64{0, 0, 0}
	hi := []float64{1, 1, 1}
	pts := SampleVolume(lo, hi, 0.5)
	if len(pts) != 27 {
		tst.Fatalf("expected a 3x3x3 grid (27 points) for a unit box at spacing 0.5, got %d", len(pts))
	}
	foundOrigin := false
	foundFar := false
	for _, p := range pts {
		if p[0] == 0 && p[1] == 0 && p[2] == 0 {
			foundOrigin = true
		}
		if p[0] == 1 && p[1] == 1 && p[2] == 1 {
			foundFar = true
		}
	}
	if !foundOrigin || !foundFar {
		tst.Fatalf("expected both box corners to be present in the grid")
	}
}

func Test_sample04_volume_grid_respects_non_cubic_box(tst *testing.T) {

	chk.PrintTitle("sample04: volume sampling handles a non-cubic box")

	lo := []float64{0, 0}
	hi := []float64{2, 1}
	pts := SampleVolume(lo, hi, 1.0)
	if len(pts) != 6 {
		tst.Fatalf("expected a 3x2 grid (6 points), got %d", len(pts))
	}
}
