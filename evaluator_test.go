package ciecolor

import (
	"math"
	"testing"

	"github.com/gocie/ciecolor/internal/cache"
	"github.com/gocie/ciecolor/internal/colorspace"
	"github.com/gocie/ciecolor/internal/interp"
	"github.com/gocie/ciecolor/internal/matrix"
	"github.com/gocie/ciecolor/internal/render"
)

func identityCommon() colorspace.Common {
	return colorspace.Common{
		RangeLMN:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		DecodeLMN:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeLMNIdentity: [3]bool{true, true, true},
		MatrixLMN:         matrix.Identity(),
		WhitePoint:        matrix.Vector3{X: 1, Y: 1, Z: 1},
		BlackPoint:        matrix.Vector3{X: 0, Y: 0, Z: 0},
	}
}

func identityCRD(t *testing.T) *render.CRD {
	t.Helper()
	crd := &render.CRD{
		MatrixLMN:         matrix.Identity(),
		MatrixABC:         matrix.Identity(),
		MatrixPQR:         matrix.Identity(),
		RangeLMN:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		RangeABC:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		RangePQR:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		WhitePoint:        matrix.Vector3{X: 1, Y: 1, Z: 1},
		BlackPoint:        matrix.Vector3{X: 0, Y: 0, Z: 0},
		EncodeLMN:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		EncodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		EncodeLMNIdentity: [3]bool{true, true, true},
		EncodeABCIdentity: [3]bool{true, true, true},
		TransformPQR: func(_ int, v float64, _ render.PointsSD, _ *render.CRD) (float64, error) {
			return v, nil
		},
	}
	return crd
}

func newImagerWithIdentityABC(t *testing.T) (*ImagerState, *colorspace.ABC) {
	t.Helper()
	cs := &colorspace.ABC{
		Common:            identityCommon(),
		RangeABC:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		DecodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeABCIdentity: [3]bool{true, true, true},
		MatrixABC:         matrix.Identity(),
	}
	state := NewImagerState()
	if err := InstallCIEABC(cs, state); err != nil {
		t.Fatal(err)
	}
	crd := identityCRD(t)
	if err := SetColorRendering(state, crd); err != nil {
		t.Fatal(err)
	}
	return state, cs
}

const tol = 6.0 / cache.N

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tol
}

// S1: CIE A -> RGB, all-identity pipeline.
func TestConcretizeCIEA_Identity(t *testing.T) {
	cs := &colorspace.A{
		Common:          identityCommon(),
		RangeA:          cache.Domain{Min: 0, Max: 1},
		DecodeA:         cache.Identity,
		DecodeAIdentity: true,
		MatrixA:         matrix.Vector3{X: 1, Y: 1, Z: 1},
	}
	state := NewImagerState()
	if err := InstallCIEA(cs, state); err != nil {
		t.Fatal(err)
	}
	crd := identityCRD(t)
	if err := SetColorRendering(state, crd); err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 3)
	n, err := ConcretizeCIEA(cs, state, 0.5, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	for i, v := range out {
		if !almostEqual(v, 0.5) {
			t.Errorf("out[%d] = %v, want ~0.5", i, v)
		}
	}
}

// S2: ABC clamp.
func TestConcretizeCIEABC_Clamp(t *testing.T) {
	state, cs := newImagerWithIdentityABC(t)
	out := make([]float64, 3)
	n, err := ConcretizeCIEABC(cs, state, [3]float64{-0.3, 1.7, 0.25}, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	want := [3]float64{0.0, 1.0, 0.25}
	for i := range want {
		if !almostEqual(out[i], want[i]) {
			t.Errorf("out[%d] = %v, want ~%v", i, out[i], want[i])
		}
	}
}

// S3: ABC matrix scaling.
func TestConcretizeCIEABC_Matrix(t *testing.T) {
	cs := &colorspace.ABC{
		Common:            identityCommon(),
		RangeABC:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		DecodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeABCIdentity: [3]bool{true, true, true},
		MatrixABC: matrix.New(
			matrix.Vector3{X: 2, Y: 0, Z: 0},
			matrix.Vector3{X: 0, Y: 2, Z: 0},
			matrix.Vector3{X: 0, Y: 0, Z: 2},
		),
	}
	state := NewImagerState()
	if err := InstallCIEABC(cs, state); err != nil {
		t.Fatal(err)
	}
	crd := identityCRD(t)
	// RangeLMN/RangeABC on the CRD must cover the post-matrix range (up to
	// 0.6) for the downstream encode caches to sample it without clamping.
	crd.RangeLMN = [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}}
	if err := SetColorRendering(state, crd); err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 3)
	n, err := ConcretizeCIEABC(cs, state, [3]float64{0.1, 0.2, 0.3}, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	want := [3]float64{0.2, 0.4, 0.6}
	for i := range want {
		if !almostEqual(out[i], want[i]) {
			t.Errorf("out[%d] = %v, want ~%v", i, out[i], want[i])
		}
	}
}

// S6: no CRD installed.
func TestConcretizeCIEABC_NoCRD(t *testing.T) {
	cs := &colorspace.ABC{
		Common:            identityCommon(),
		RangeABC:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		DecodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeABCIdentity: [3]bool{true, true, true},
		MatrixABC:         matrix.Identity(),
	}
	state := NewImagerState()
	if err := InstallCIEABC(cs, state); err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 3)
	n, err := ConcretizeCIEABC(cs, state, [3]float64{0.4, 0.5, 0.6}, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	for i, v := range out {
		if v != 0 {
			t.Errorf("out[%d] = %v, want 0 with no CRD installed", i, v)
		}
	}
}

func identityTable(dims []int) interp.Table {
	n := len(dims)
	size := 1
	for _, d := range dims {
		size *= d
	}
	data := make([]byte, size*3)
	tab := interp.Table{Dims: dims, M: 3, Data: data}
	coord := make([]int, n)
	var fill func(axis int)
	fill = func(axis int) {
		if axis == n {
			off := 0
			stride := 3
			for k := n - 1; k >= 0; k-- {
				off += coord[k] * stride
				stride *= dims[k]
			}
			for c := 0; c < 3 && c < n; c++ {
				data[off+c] = byte(255 * coord[c] / (dims[c] - 1))
			}
			return
		}
		for v := 0; v < dims[axis]; v++ {
			coord[axis] = v
			fill(axis + 1)
		}
	}
	fill(0)
	return tab
}

// S4: DEF identity table lookup.
func TestConcretizeCIEDEF_IdentityTable(t *testing.T) {
	cs := colorspace.NewDEF()
	cs.Common = identityCommon()
	cs.RangeABC = [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}}
	cs.DecodeABC = [3]cache.Func{cache.Identity, cache.Identity, cache.Identity}
	cs.DecodeABCIdentity = [3]bool{true, true, true}
	cs.MatrixABC = matrix.Identity()
	for i := range cs.RangeIn {
		cs.RangeIn[i] = cache.Domain{Min: 0, Max: 1}
		cs.DecodeIn[i] = cache.Identity
		cs.DecodeInIdentity[i] = true
		cs.RangeHIJK[i] = cache.Domain{Min: 0, Max: 1}
	}
	cs.Table = identityTable([]int{2, 2, 2})

	state := NewImagerState()
	if err := InstallCIEDEF(cs, state); err != nil {
		t.Fatal(err)
	}
	crd := identityCRD(t)
	if err := SetColorRendering(state, crd); err != nil {
		t.Fatal(err)
	}

	out := make([]float64, 3)
	n, err := ConcretizeCIEDEF(cs, state, []float64{0.5, 0.5, 0.5}, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d, want 3", n)
	}
	for i, v := range out {
		if !almostEqual(v, 0.5) {
			t.Errorf("out[%d] = %v, want ~0.5", i, v)
		}
	}
}

func TestRemapCIEABC_Dispatch(t *testing.T) {
	state, cs := newImagerWithIdentityABC(t)
	var gotRGB []float64
	device := make([]float64, 4)
	err := RemapCIEABC(cs, state, [3]float64{0.2, 0.4, 0.6}, device,
		func(c []float64) error { gotRGB = append([]float64{}, c...); return nil },
		func(c []float64) error { t.Fatal("CMYK adapter should not be called for a 3-channel result"); return nil },
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotRGB) != 3 {
		t.Fatalf("RGB adapter got %d channels, want 3", len(gotRGB))
	}
}

// S5: render-table stride semantics. A 2x2x2 table with per-channel
// identity output (corner (i0,i1,i2) holds byte tuple (255*i0,255*i1,255*i2))
// must reproduce the ABC input at its corners through the stride-premultiplied,
// non-interpolating offset path.
func TestConcretizeCIEABC_RenderTableStride(t *testing.T) {
	const dim1, dim2, m = 2, 2, 3
	planeSize := dim1 * dim2 * m
	planes := make([][]byte, 2)
	for i0 := 0; i0 < 2; i0++ {
		plane := make([]byte, planeSize)
		for i1 := 0; i1 < dim1; i1++ {
			for i2 := 0; i2 < dim2; i2++ {
				off := i1*(m*dim2) + i2*m
				plane[off+0] = byte(255 * i0)
				plane[off+1] = byte(255 * i1)
				plane[off+2] = byte(255 * i2)
			}
		}
		planes[i0] = plane
	}

	cs := &colorspace.ABC{
		Common:            identityCommon(),
		RangeABC:          [3]cache.Domain{{Min: 0, Max: 1}, {Min: 0, Max: 1}, {Min: 0, Max: 1}},
		DecodeABC:         [3]cache.Func{cache.Identity, cache.Identity, cache.Identity},
		DecodeABCIdentity: [3]bool{true, true, true},
		MatrixABC:         matrix.Identity(),
	}
	state := NewImagerState()
	if err := InstallCIEABC(cs, state); err != nil {
		t.Fatal(err)
	}

	crd := identityCRD(t)
	crd.RenderTable = &render.RenderTable{
		Dims:   [3]int{2, dim1, dim2},
		M:      m,
		Planes: planes,
	}
	if err := SetColorRendering(state, crd); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		in   [3]float64
		want [3]float64
	}{
		{[3]float64{0, 0, 0}, [3]float64{0, 0, 0}},
		{[3]float64{1, 1, 1}, [3]float64{1, 1, 1}},
	}
	for _, tc := range cases {
		out := make([]float64, 3)
		n, err := ConcretizeCIEABC(cs, state, tc.in, out)
		if err != nil {
			t.Fatal(err)
		}
		if n != m {
			t.Fatalf("n = %d, want %d", n, m)
		}
		for i := range tc.want {
			if !almostEqual(out[i], tc.want[i]) {
				t.Errorf("in=%v out[%d] = %v, want ~%v", tc.in, i, out[i], tc.want[i])
			}
		}
	}
}
