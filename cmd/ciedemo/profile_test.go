package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocie/ciecolor"
)

const identityProfileJSON = `{
  "name": "identity",
  "matrix_lmn": [[1,0,0],[0,1,0],[0,0,1]],
  "matrix_abc": [[1,0,0],[0,1,0],[0,0,1]],
  "range_lmn": [[0,1],[0,1],[0,1]],
  "range_abc": [[0,1],[0,1],[0,1]],
  "white_point": [1,1,1],
  "black_point": [0,0,0],
  "crd": {
    "matrix_pqr": [[1,0,0],[0,1,0],[0,0,1]],
    "range_pqr": [[0,1],[0,1],[0,1]],
    "white_point": [1,1,1],
    "black_point": [0,0,0],
    "render_table": false
  }
}`

func writeTempProfile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeTempProfile(t, identityProfileJSON)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "identity" {
		t.Errorf("Name = %q, want %q", p.Name, "identity")
	}
	if p.MatrixLMN[0][0] != 1 || p.MatrixLMN[1][1] != 1 || p.MatrixLMN[2][2] != 1 {
		t.Errorf("MatrixLMN = %v, want identity", p.MatrixLMN)
	}
}

func TestBuildImager_Identity(t *testing.T) {
	path := writeTempProfile(t, identityProfileJSON)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	state, cs, err := BuildImager(p)
	if err != nil {
		t.Fatal(err)
	}
	if cs == nil || state == nil {
		t.Fatal("BuildImager returned nil state or color space")
	}

	out := make([]float64, 3)
	n, err := ciecolor.ConcretizeCIEABC(cs, state, [3]float64{0.25, 0.5, 0.75}, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
}

func TestBuildImager_RenderTable(t *testing.T) {
	path := writeTempProfile(t, `{
  "name": "render-table",
  "matrix_lmn": [[1,0,0],[0,1,0],[0,0,1]],
  "matrix_abc": [[1,0,0],[0,1,0],[0,0,1]],
  "range_lmn": [[0,1],[0,1],[0,1]],
  "range_abc": [[0,1],[0,1],[0,1]],
  "white_point": [1,1,1],
  "black_point": [0,0,0],
  "crd": {
    "matrix_pqr": [[1,0,0],[0,1,0],[0,0,1]],
    "range_pqr": [[0,1],[0,1],[0,1]],
    "white_point": [1,1,1],
    "black_point": [0,0,0],
    "render_table": true
  }
}`)
	p, err := LoadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	state, cs, err := BuildImager(p)
	if err != nil {
		t.Fatal(err)
	}
	img := RenderSwatchGrid(state, cs, 8, 1)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 8 {
		t.Fatalf("image bounds = %v, want 8x8", img.Bounds())
	}
}
