package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/gocie/ciecolor"
	"github.com/gocie/ciecolor/internal/cache"
	"github.com/gocie/ciecolor/internal/colorspace"
	"github.com/gocie/ciecolor/internal/matrix"
	"github.com/gocie/ciecolor/internal/render"
)

// matrixJSON is a 3x3 matrix as it appears in a profile file: inner array c
// holds column c of the matrix (toMatrix transposes it into Matrix3 rows).
type matrixJSON [3][3]float64

func (m matrixJSON) toMatrix() matrix.Matrix3 {
	col := func(c int) matrix.Vector3 {
		return matrix.Vector3{X: m[0][c], Y: m[1][c], Z: m[2][c]}
	}
	return matrix.New(col(0), col(1), col(2))
}

type domainJSON [2]float64

func (d domainJSON) toDomain() cache.Domain {
	return cache.Domain{Min: d[0], Max: d[1]}
}

// Profile is the on-disk JSON shape ciedemo loads: a CIE ABC color space
// paired with a destination color rendering dictionary. Decode/encode
// functions are not representable in JSON, so a profile only ever
// describes the identity function per channel, optionally composed with
// the given matrix; this is enough to exercise every stage of the pipeline
// (matrix composition, chromatic adaptation, render-table dispatch)
// without needing an embedded expression language.
type Profile struct {
	Name string `json:"name"`

	MatrixLMN matrixJSON   `json:"matrix_lmn"`
	MatrixABC matrixJSON   `json:"matrix_abc"`
	RangeLMN  [3]domainJSON `json:"range_lmn"`
	RangeABC  [3]domainJSON `json:"range_abc"`
	White     [3]float64   `json:"white_point"`
	Black     [3]float64   `json:"black_point"`

	CRD struct {
		MatrixPQR   matrixJSON    `json:"matrix_pqr"`
		RangePQR    [3]domainJSON `json:"range_pqr"`
		White       [3]float64    `json:"white_point"`
		Black       [3]float64    `json:"black_point"`
		RenderTable bool          `json:"render_table"`
		Interpolate bool          `json:"render_table_interpolate"`
	} `json:"crd"`
}

// LoadProfile reads and parses a profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// BuildImager constructs an ImagerState with p's color space and CRD
// installed, ready for per-pixel evaluation.
func BuildImager(p *Profile) (*ciecolor.ImagerState, *colorspace.ABC, error) {
	common := colorspace.Common{
		RangeLMN:          [3]cache.Domain{p.RangeLMN[0].toDomain(), p.RangeLMN[1].toDomain(), p.RangeLMN[2].toDomain()},
		DecodeLMN:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeLMNIdentity: [3]bool{true, true, true},
		MatrixLMN:         p.MatrixLMN.toMatrix(),
		WhitePoint:        matrix.Vector3{X: p.White[0], Y: p.White[1], Z: p.White[2]},
		BlackPoint:        matrix.Vector3{X: p.Black[0], Y: p.Black[1], Z: p.Black[2]},
	}

	cs := &colorspace.ABC{
		Common:            common,
		RangeABC:          [3]cache.Domain{p.RangeABC[0].toDomain(), p.RangeABC[1].toDomain(), p.RangeABC[2].toDomain()},
		DecodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeABCIdentity: [3]bool{true, true, true},
		MatrixABC:         p.MatrixABC.toMatrix(),
	}

	state := ciecolor.NewImagerState()
	if err := ciecolor.InstallCIEABC(cs, state); err != nil {
		return nil, nil, fmt.Errorf("installing color space: %w", err)
	}

	crd := &render.CRD{
		ID:                uuid.New(),
		MatrixLMN:         common.MatrixLMN,
		MatrixABC:         p.MatrixABC.toMatrix(),
		MatrixPQR:         p.CRD.MatrixPQR.toMatrix(),
		RangeLMN:          common.RangeLMN,
		RangeABC:          cs.RangeABC,
		RangePQR:          [3]cache.Domain{p.CRD.RangePQR[0].toDomain(), p.CRD.RangePQR[1].toDomain(), p.CRD.RangePQR[2].toDomain()},
		WhitePoint:        matrix.Vector3{X: p.CRD.White[0], Y: p.CRD.White[1], Z: p.CRD.White[2]},
		BlackPoint:        matrix.Vector3{X: p.CRD.Black[0], Y: p.CRD.Black[1], Z: p.CRD.Black[2]},
		EncodeLMN:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		EncodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		EncodeLMNIdentity: [3]bool{true, true, true},
		EncodeABCIdentity: [3]bool{true, true, true},
		TransformPQR: func(_ int, v float64, _ render.PointsSD, _ *render.CRD) (float64, error) {
			return v, nil
		},
		RenderTableInterpolate: p.CRD.Interpolate,
	}
	if p.CRD.RenderTable {
		crd.RenderTable = buildDemoRenderTable()
	}

	if err := ciecolor.SetColorRendering(state, crd); err != nil {
		return nil, nil, fmt.Errorf("binding color rendering dictionary: %w", err)
	}
	return state, cs, nil
}

// buildDemoRenderTable constructs a small identity RGB render table: each
// grid corner (i0,i1,i2) holds the byte tuple (255*i0/(n-1), ..., ...),
// exercising the stride-premultiplied render-table dispatch path.
func buildDemoRenderTable() *render.RenderTable {
	const dim = 4
	const m = 3
	planeSize := dim * dim * m
	planes := make([][]byte, dim)
	for i0 := 0; i0 < dim; i0++ {
		plane := make([]byte, planeSize)
		for i1 := 0; i1 < dim; i1++ {
			for i2 := 0; i2 < dim; i2++ {
				off := i1*(m*dim) + i2*m
				plane[off+0] = byte(255 * i0 / (dim - 1))
				plane[off+1] = byte(255 * i1 / (dim - 1))
				plane[off+2] = byte(255 * i2 / (dim - 1))
			}
		}
		planes[i0] = plane
	}
	return &render.RenderTable{
		Dims:   [3]int{dim, dim, dim},
		M:      m,
		Planes: planes,
	}
}
