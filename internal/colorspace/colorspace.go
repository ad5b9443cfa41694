// Package colorspace implements the CIE color-space preparation state
// machine from spec.md §4.4: for each CIE variant (A, ABC, DEF, DEFG) it
// loads the decode caches, fuses MatrixABC (and, for A, MatrixA) into
// them, and — for the table-driven variants — rescales the decode caches
// into render-table index space.
//
// Preparation is split into Load (sample the decode functions; safe to
// call repeatedly) and Complete (fuse the sampled caches with the
// installed matrices; guarded so a second call is a no-op, matching the
// "complete is not idempotent, gate re-entry with a status field" design
// used throughout this pipeline).
package colorspace

import (
	"math"

	"github.com/gocie/ciecolor/internal/cache"
	"github.com/gocie/ciecolor/internal/interp"
	"github.com/gocie/ciecolor/internal/matrix"
)

// Common holds the state every CIE variant shares: the LMN decode
// functions, MatrixLMN, and the source white/black points. The LMN decode
// caches are only ever sampled here (scalar form); they are fused into
// vector form by the joint cache (internal/render), once a CRD is bound,
// because that fusion needs MatrixLMN composed with the destination's
// chromatic-adaptation matrix — state this package has no access to.
type Common struct {
	RangeLMN          [3]cache.Domain
	DecodeLMN         [3]cache.Func
	DecodeLMNIdentity [3]bool
	MatrixLMN         matrix.Matrix3
	WhitePoint        matrix.Vector3
	BlackPoint        matrix.Vector3

	ScalarLMN [3]*cache.ScalarCache // derived, sampled by Load
}

// Load samples the common LMN decode functions. Safe to call more than
// once; each call re-samples from scratch.
func (c *Common) Load() {
	for j := 0; j < 3; j++ {
		c.ScalarLMN[j] = cache.Load(c.RangeLMN[j], c.DecodeLMN[j], c.DecodeLMNIdentity[j])
	}
}

// A is the CIE A color space: a single achromatic channel.
type A struct {
	Common
	RangeA          cache.Domain
	DecodeA         cache.Func
	DecodeAIdentity bool
	MatrixA         matrix.Vector3

	scalarA      *cache.ScalarCache
	DecodeACache *cache.VectorCache // derived caches.DecodeA
	completed    bool
}

// Load samples DecodeA and the common LMN decode functions.
func (a *A) Load() {
	a.Common.Load()
	a.scalarA = cache.Load(a.RangeA, a.DecodeA, a.DecodeAIdentity)
}

// Complete fuses the sampled A decode cache with MatrixA. A no-op after
// the first call.
func (a *A) Complete() {
	if a.completed {
		return
	}
	a.DecodeACache = cache.Mult(a.scalarA, a.MatrixA)
	a.completed = true
}

// ABC is the CIE ABC color space: three opponent channels run through
// MatrixABC.
type ABC struct {
	Common
	RangeABC          [3]cache.Domain
	DecodeABC         [3]cache.Func
	DecodeABCIdentity [3]bool
	MatrixABC         matrix.Matrix3

	scalarABC   [3]*cache.ScalarCache
	DecodeCache [3]*cache.VectorCache // derived caches.DecodeABC
	SkipABC     bool
	completed   bool
}

// Load samples DecodeABC and the common LMN decode functions.
func (c *ABC) Load() {
	c.Common.Load()
	for j := 0; j < 3; j++ {
		c.scalarABC[j] = cache.Load(c.RangeABC[j], c.DecodeABC[j], c.DecodeABCIdentity[j])
	}
}

// Complete fuses the sampled ABC decode caches with MatrixABC and computes
// SkipABC. A no-op after the first call.
func (c *ABC) Complete() {
	if c.completed {
		return
	}
	c.DecodeCache, c.SkipABC = cache.Mult3(c.scalarABC, c.MatrixABC)
	c.completed = true
}

// TableSpace implements the shared shape of CIE DEF (3 input channels) and
// CIE DEFG (4 input channels): an ABC space plus an additional front-end
// table lookup. DEF and DEFG differ only in channel count, so both are
// built on this one type; NewDEF and NewDEFG fix the channel count at
// construction by sizing the per-channel slices.
type TableSpace struct {
	ABC
	RangeIn          []cache.Domain
	DecodeIn         []cache.Func
	DecodeInIdentity []bool
	RangeHIJK        []cache.Domain
	Table            interp.Table // Table.Dims has len(RangeIn) entries, Table.M == 3

	scalarIn []*cache.ScalarCache // derived, scaled into table-index units [0,255]
}

// Load samples the DEF(G) decode functions, rescales each into
// render-table index space, and runs the ABC load.
func (t *TableSpace) Load() {
	t.scalarIn = make([]*cache.ScalarCache, len(t.RangeIn))
	for j := range t.RangeIn {
		t.scalarIn[j] = cache.Load(t.RangeIn[j], t.DecodeIn[j], t.DecodeInIdentity[j])
		t.scalarIn[j].ScaleToIndex(t.RangeHIJK[j])
	}
	t.ABC.Load()
}

// NewDEF constructs a 3-input-channel CIE DEF color space.
func NewDEF() *TableSpace {
	ts := &TableSpace{}
	ts.RangeIn = make([]cache.Domain, 3)
	ts.DecodeIn = make([]cache.Func, 3)
	ts.DecodeInIdentity = make([]bool, 3)
	ts.RangeHIJK = make([]cache.Domain, 3)
	return ts
}

// NewDEFG constructs a 4-input-channel CIE DEFG color space.
func NewDEFG() *TableSpace {
	ts := &TableSpace{}
	ts.RangeIn = make([]cache.Domain, 4)
	ts.DecodeIn = make([]cache.Func, 4)
	ts.DecodeInIdentity = make([]bool, 4)
	ts.RangeHIJK = make([]cache.Domain, 4)
	return ts
}

// FrontEnd maps a client color pc (len(RangeIn) components) through the
// DEF(G) front end: each channel is mapped onto the table's grid, the
// decode cache is linearly interpolated at that grid position to produce a
// fixed-point table coordinate, and the external multilinear interpolator
// is consulted against Table to yield three ABC fracs.
func (t *TableSpace) FrontEnd(pc []float64) (cache.Vector3, error) {
	n := len(t.RangeIn)
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		dim := t.Table.Dims[i]
		span := t.RangeIn[i].Max - t.RangeIn[i].Min
		x := 0.0
		if span != 0 {
			x = (pc[i] - t.RangeIn[i].Min) / span * float64(dim-1)
		}
		vi := int(math.Floor(x))
		vf := x - float64(vi)
		if vi < 0 {
			vi, vf = 0, 0
		}
		if vi > dim-2 {
			if dim-2 < 0 {
				vi = 0
			} else {
				vi = dim - 2
			}
			vf = 0
		}
		decoded := t.scalarIn[i].Values[vi]
		if vf != 0 && vi < dim-1 {
			decoded = t.scalarIn[i].Interpolate(vi, vf)
		}
		indices[i] = int(math.Round(decoded * float64(int(1)<<cache.B)))
	}

	abc := make([]float64, 3)
	if err := interp.Linear(indices, cache.B, t.Table, abc); err != nil {
		return cache.Vector3{}, err
	}
	return cache.Vector3{
		U: cache.ToCached(abc[0] / 255),
		V: cache.ToCached(abc[1] / 255),
		W: cache.ToCached(abc[2] / 255),
	}, nil
}
