package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func writeSceneFile(tst *testing.T, dir string) (scenePath string) {
	objPath := filepath.Join(dir, "floor.obj")
	obj := "v -1 0 -1\nv 1 0 -1\nv 1 0 1\nv -1 0 1\nf 1 2 3 4\n"
	if err := os.WriteFile(objPath, []byte(obj), 0644); err != nil {
		tst.Fatalf("WriteFile(obj) failed: %v", err)
	}

	scene := `{
		"model": {
			"group": {
				"floor": {
					"type": "boundary",
					"sample": [
						{"kind": "surface", "what": "triangle_mesh", "file_type": "obj", "file_path": "` + objPath + `"}
					]
				}
			}
		}
	}`
	scenePath = filepath.Join(dir, "scene.json")
	if err := os.WriteFile(scenePath, []byte(scene), 0644); err != nil {
		tst.Fatalf("WriteFile(scene) failed: %v", err)
	}
	return scenePath
}

func Test_main01_missing_positional_is_an_argument_error(tst *testing.T) {

	chk.PrintTitle("main01: no scene argument exits with the argument-error code")

	code := run([]string{"--quiet"})
	if code != exitArgumentErr {
		tst.Fatalf("expected exit code %d, got %d", exitArgumentErr, code)
	}
}

func Test_main02_missing_smoothing_scale_is_an_argument_error(tst *testing.T) {

	chk.PrintTitle("main02: a scene without --smoothing_scale exits with the argument-error code")

	dir := tst.TempDir()
	scenePath := writeSceneFile(tst, dir)

	code := run([]string{"--quiet", scenePath})
	if code != exitArgumentErr {
		tst.Fatalf("expected exit code %d, got %d", exitArgumentErr, code)
	}
}

func Test_main03_valid_boundary_only_scene_runs_to_success(tst *testing.T) {

	chk.PrintTitle("main03: a minimal boundary-only scene runs to completion")

	dir := tst.TempDir()
	scenePath := writeSceneFile(tst, dir)

	code := run([]string{
		"--quiet",
		"--smoothing_scale=0.1",
		"--frames=1",
		scenePath,
	})
	if code != exitSuccess {
		tst.Fatalf("expected exit code %d, got %d", exitSuccess, code)
	}
}
