package config

import (
	"os"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofem-sph/model"
)

func writeTempOBJ(tst *testing.T, contents string) string {
	f, err := os.CreateTemp("", "sample-*.obj")
	if err != nil {
		tst.Fatalf("CreateTemp failed: %v", err)
	}
	if _, err := f.WriteString(contents); err != nil {
		tst.Fatalf("WriteString failed: %v", err)
	}
	f.Close()
	tst.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func Test_load01_surface_sample_populates_group_positions(tst *testing.T) {

	chk.PrintTitle("load01: a scene with one surface sample block populates group positions")

	path := writeTempOBJ(tst, "v 0 0 0\nv 4 0 0\nv 0 4 0\nf 1 2 3\n")

	scene := Scene{
		Model: Model{
			Group: map[string]Group{
				"wall": {
					Type: "boundary",
					Sample: []Sample{
						{Kind: "surface", What: "triangle_mesh", FileType: "obj", FilePath: path},
					},
				},
			},
		},
	}

	m := model.NewModel()
	sources, err := LoadScene(m, scene, 0.5, 3)
	if err != nil {
		tst.Fatalf("LoadScene failed: %v", err)
	}
	if len(sources) != 0 {
		tst.Fatalf("expected no sources, got %d", len(sources))
	}
	wall, err := m.GetGroup("wall")
	if err != nil {
		tst.Fatalf("GetGroup(wall) failed: %v", err)
	}
	if wall.ItemCount() == 0 {
		tst.Fatalf("expected the mesh surface sampling to create particles, got 0")
	}
}

func Test_load02_source_block_builds_a_driver_source(tst *testing.T) {

	chk.PrintTitle("load02: a scene source block yields a bound driver.Source")

	scene := Scene{
		Model: Model{
			Group: map[string]Group{
				"inflow": {
					Type: "fluid",
					Source: []Source{
						{
							Kind:      "hcp",
							Center:    []float64{0, 0, 0},
							Velocity:  AdaptiveVector{Adaptive: false, Value: []float64{0, -1, 0}},
							Radius:    0.2,
							Remaining: 10,
						},
					},
				},
			},
		},
	}

	m := model.NewModel()
	sources, err := LoadScene(m, scene, 0.05, 3)
	if err != nil {
		tst.Fatalf("LoadScene failed: %v", err)
	}
	if len(sources) != 1 {
		tst.Fatalf("expected exactly one source, got %d", len(sources))
	}
	if sources[0].Remaining != 10 {
		tst.Fatalf("expected Remaining=10, got %d", sources[0].Remaining)
	}
}

func Test_load03_unsupported_sample_kind_is_an_error(tst *testing.T) {

	chk.PrintTitle("load03: an unsupported sample.kind is rejected rather than silently ignored")

	path := writeTempOBJ(tst, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	scene := Scene{
		Model: Model{
			Group: map[string]Group{
				"g": {
					Type: "fluid",
					Sample: []Sample{
						{Kind: "nonsense", What: "triangle_mesh", FileType: "obj", FilePath: path},
					},
				},
			},
		},
	}
	m := model.NewModel()
	if _, err := LoadScene(m, scene, 0.1, 3); err == nil {
		tst.Fatalf("expected an error for sample.kind=\"nonsense\", got nil")
	}
}
