package geometry

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_mesh01_parses_vertices_and_triangles(tst *testing.T) {

	chk.PrintTitle("mesh01: OBJ subset parses vertices and a triangle face")

	src := `# a comment
v 0.0 0.0 0.0
v 1.0 0.0 0.0
v 0.0 1.0 0.0
f 1 2 3
`
	mesh, err := parseOBJ(strings.NewReader(src))
	if err != nil {
		tst.Fatalf("parseOBJ failed: %v", err)
	}
	if len(mesh.Vertices) != 3 {
		tst.Fatalf("expected 3 vertices, got %d", len(mesh.Vertices))
	}
	if len(mesh.Faces) != 1 {
		tst.Fatalf("expected 1 face, got %d", len(mesh.Faces))
	}
	if mesh.Faces[0] != (Face{0, 1, 2}) {
		tst.Fatalf("expected 0-based face {0,1,2}, got %v", mesh.Faces[0])
	}
}

func Test_mesh02_quad_face_splits_into_two_triangles(tst *testing.T) {

	chk.PrintTitle("mesh02: a quad face splits into two triangles")

	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1/1/1 2/2/1 3/3/1 4/4/1
`
	mesh, err := parseOBJ(strings.NewReader(src))
	if err != nil {
		tst.Fatalf("parseOBJ failed: %v", err)
	}
	if len(mesh.Faces) != 2 {
		tst.Fatalf("expected a quad to split into 2 triangles, got %d", len(mesh.Faces))
	}
	if mesh.Faces[0] != (Face{0, 1, 2}) || mesh.Faces[1] != (Face{0, 2, 3}) {
		tst.Fatalf("unexpected triangle split: %v", mesh.Faces)
	}
}

func Test_mesh03_transforms(tst *testing.T) {

	chk.PrintTitle("mesh03: scale, scale-axes and translate")

	mesh := Mesh{Vertices: [][]float64{{1, 1, 1}}}

	mesh.Scale(2)
	if mesh.Vertices[0][0] != 2 || mesh.Vertices[0][1] != 2 || mesh.Vertices[0][2] != 2 {
		tst.Fatalf("Scale failed: %v", mesh.Vertices[0])
	}

	mesh.ScaleAxes([]float64{1, 2, 3})
	if mesh.Vertices[0][0] != 2 || mesh.Vertices[0][1] != 4 || mesh.Vertices[0][2] != 6 {
		tst.Fatalf("ScaleAxes failed: %v", mesh.Vertices[0])
	}

	mesh.Translate([]float64{1, 1, 1})
	if mesh.Vertices[0][0] != 3 || mesh.Vertices[0][1] != 5 || mesh.Vertices[0][2] != 7 {
		tst.Fatalf("Translate failed: %v", mesh.Vertices[0])
	}
}

func Test_mesh04_missing_file_yields_empty_mesh(tst *testing.T) {

	chk.PrintTitle("mesh04: a missing OBJ file yields an empty mesh without error")

	mesh, err := LoadOBJ("/no/such/file.obj")
	if err != nil {
		tst.Fatalf("expected no error for a missing file, got %v", err)
	}
	if len(mesh.Vertices) != 0 || len(mesh.Faces) != 0 {
		tst.Fatalf("expected an empty mesh, got %v", mesh)
	}
}
