// Package render implements Render Preparation (spec.md §4.5) and the Joint
// Cache (§4.6): the CRD status state machine that turns a host-supplied
// color rendering dictionary into ready-to-evaluate encode caches, and the
// per-imager fusion that binds a color space's LMN decode caches to a
// specific installed CRD.
//
// Both pieces follow the same guarded-transition shape used throughout this
// pipeline: idempotent transitions (init, sample, joint_init) re-check a
// status field and return early on repeat calls; the one non-idempotent
// transition per type (complete, joint_complete) is gated the same way but
// documented as a programmer error to call twice with different inputs.
package render

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gocie/ciecolor/internal/cache"
	"github.com/gocie/ciecolor/internal/colorspace"
	"github.com/gocie/ciecolor/internal/matrix"
)

// Status is a CRD's position in its FRESH -> INITED -> SAMPLED -> COMPLETED
// lifecycle.
type Status int

const (
	StatusFresh Status = iota
	StatusInited
	StatusSampled
	StatusCompleted
)

// TFunc maps a render-table output byte (0-255) to a frac sample, used when
// sampling RenderTable.T during the sample transition.
type TFunc func(byteVal int) float64

// RenderTable is the CRD's optional output lookup table. Its byte layout
// follows the stride convention in spec.md §4.7/S5: Planes holds one entry
// per grid position along axis 0 (stride 1, a literal slice index); within
// a plane, axis 1 and axis 2 address a flat [Dims[1]][Dims[2]][M] byte
// buffer with strides M*Dims[2] and M respectively.
type RenderTable struct {
	Dims   [3]int
	M      int
	Planes [][]byte // len(Planes) == Dims[0]; each len == Dims[1]*Dims[2]*M
	T      []TFunc  // optional, len M
}

// Lookup returns the m-channel byte tuple at plane ri0, byte offset off1+off2.
func (rt *RenderTable) Lookup(ri0, off1, off2 int) []byte {
	plane := rt.Planes[ri0]
	start := off1 + off2
	return plane[start : start+rt.M]
}

// CRD is a color rendering dictionary: the destination-side half of the
// rendering pipeline, owning the matrices, encode functions, and optional
// render table that turn LMN intermediate color into device-ready ABC.
type CRD struct {
	ID uuid.UUID

	MatrixLMN, MatrixABC, MatrixPQR matrix.Matrix3
	RangeLMN, RangeABC, RangePQR    [3]cache.Domain
	WhitePoint, BlackPoint          matrix.Vector3

	EncodeLMN, EncodeABC                 [3]cache.Func
	EncodeLMNIdentity, EncodeABCIdentity [3]bool

	// TransformPQR is the host-supplied chromatic adaptation transform,
	// sampled once per axis during joint-cache preparation. It may fail;
	// a failure aborts preparation and leaves the joint cache's status
	// where it was.
	TransformPQR func(axis int, v float64, pts PointsSD, crd *CRD) (float64, error)

	RenderTable *RenderTable // nil if none installed

	Status Status

	PQRInverse           matrix.Matrix3
	MatrixPQRInverseLMN  matrix.Matrix3
	DomainLMN, DomainABC [3]matrix.Range
	WDPQR, BDPQR         matrix.Vector3

	scalarEncodeLMN [3]*cache.ScalarCache
	scalarEncodeABC [3]*cache.ScalarCache
	renderTableT    []*cache.ScalarCache

	MatrixABCEncode matrix.Matrix3
	EncodeABCBase   [3]cache.CachedNumber
	EncodeABCFrac   [3][]uint16 // set when RenderTable == nil
	EncodeABCInt    [3][]int    // set when RenderTable != nil

	CachesEncodeLMN      [3]*cache.VectorCache
	RenderTableTIdentity bool

	// RenderTableInterpolate selects between the two render-table index
	// encodings described in spec.md §4.5/§6 (render_table_interpolate):
	// true stores B-bit-shifted indices for the interpolating lookup path,
	// false stores stride-premultiplied integer byte offsets.
	RenderTableInterpolate bool
}

func toMatrixRanges(d [3]cache.Domain) [3]matrix.Range {
	var out [3]matrix.Range
	for i, r := range d {
		out[i] = matrix.Range{Min: r.Min, Max: r.Max}
	}
	return out
}

func toDomains(r [3]matrix.Range) [3]cache.Domain {
	var out [3]cache.Domain
	for i, v := range r {
		out[i] = cache.Domain{Min: v.Min, Max: v.Max}
	}
	return out
}

// Init runs the FRESH -> INITED transition. Idempotent: a CRD already past
// INITED returns immediately.
func (c *CRD) Init() error {
	if c.Status >= StatusInited {
		return nil
	}

	c.MatrixLMN = matrix.New(c.MatrixLMN.CU, c.MatrixLMN.CV, c.MatrixLMN.CW)
	c.MatrixABC = matrix.New(c.MatrixABC.CU, c.MatrixABC.CV, c.MatrixABC.CW)
	c.MatrixPQR = matrix.New(c.MatrixPQR.CU, c.MatrixPQR.CV, c.MatrixPQR.CW)

	inv, err := matrix.Invert(c.MatrixPQR)
	if err != nil {
		return fmt.Errorf("render: invert MatrixPQR: %w", err)
	}
	c.PQRInverse = inv
	c.MatrixPQRInverseLMN = matrix.MatMul(c.MatrixLMN, inv)

	domLMN := matrix.TransformRange(toMatrixRanges(c.RangePQR), c.MatrixPQRInverseLMN)
	domABC := matrix.TransformRange(toMatrixRanges(c.RangeLMN), c.MatrixABC)
	c.DomainLMN = domLMN
	c.DomainABC = domABC

	c.WDPQR = c.MatrixPQR.MultVec(c.WhitePoint)
	c.BDPQR = c.MatrixPQR.MultVec(c.BlackPoint)

	c.Status = StatusInited
	return nil
}

// Sample runs the INITED -> SAMPLED transition, calling Init first if
// necessary. Idempotent.
func (c *CRD) Sample() error {
	if c.Status < StatusInited {
		if err := c.Init(); err != nil {
			return err
		}
	}
	if c.Status >= StatusSampled {
		return nil
	}

	domLMN := toDomains(c.DomainLMN)
	domABC := toDomains(c.DomainABC)
	for j := 0; j < 3; j++ {
		c.scalarEncodeLMN[j] = cache.Load(domLMN[j], c.EncodeLMN[j], c.EncodeLMNIdentity[j])
		c.scalarEncodeABC[j] = cache.Load(domABC[j], c.EncodeABC[j], c.EncodeABCIdentity[j])
	}

	if c.RenderTable != nil && len(c.RenderTable.T) > 0 {
		c.renderTableT = make([]*cache.ScalarCache, len(c.RenderTable.T))
		for j, tf := range c.RenderTable.T {
			j := j
			tf := tf
			fn := func(byteFrac float64) float64 {
				bi := int(byteFrac*255 + 0.5)
				if bi < 0 {
					bi = 0
				} else if bi > 255 {
					bi = 255
				}
				return tf(bi)
			}
			c.renderTableT[j] = cache.Load(cache.Domain{Min: 0, Max: 1}, fn, false)
		}
	}

	c.Status = StatusSampled
	return nil
}

// Complete runs the SAMPLED -> COMPLETED transition, calling Sample first
// if necessary. NOT idempotent in the source sense — calling it twice would
// re-fold the per-axis factors into MatrixABCEncode a second time — so,
// like colorspace.ABC.Complete, it is guarded by the status field and a
// second call is a no-op.
func (c *CRD) Complete() {
	if c.Status < StatusSampled {
		if err := c.Sample(); err != nil {
			return
		}
	}
	if c.Status >= StatusCompleted {
		return
	}

	c.MatrixABCEncode = c.MatrixABC

	const n = cache.N
	for ch := 0; ch < 3; ch++ {
		c.scalarEncodeLMN[ch].Restrict(c.RangeLMN[ch])
		c.scalarEncodeABC[ch].Restrict(c.RangeABC[ch])

		if c.RenderTable == nil {
			c.scalarEncodeABC[ch].Restrict(cache.Domain{Min: 0, Max: 1})
			fracs := make([]uint16, n)
			for i, v := range c.scalarEncodeABC[ch].Values {
				fracs[i] = cache.ToFrac(cache.ToCached(v))
			}
			c.EncodeABCFrac[ch] = fracs
			c.scalarEncodeABC[ch].Kind = cache.KindFrac
		} else {
			rmin, rmax := c.RangeABC[ch].Min, c.RangeABC[ch].Max
			span := rmax - rmin
			stride := renderTableStride(ch, c.RenderTable.M, c.RenderTable.Dims)
			dim := c.RenderTable.Dims[ch]
			ints := make([]int, n)
			for i, v := range c.scalarEncodeABC[ch].Values {
				scaled := 0.0
				if span != 0 {
					scaled = (v - rmin) * float64(dim-1) / span
				}
				if scaled < 0 {
					scaled = 0
				} else if scaled > float64(dim-1) {
					scaled = float64(dim - 1)
				}
				var off int
				if c.RenderTableInterpolate {
					off = int(scaled*float64(int(1)<<cache.B) + 0.5)
				} else {
					off = int(scaled+0.5) * stride
				}
				ints[i] = off
			}
			c.EncodeABCInt[ch] = ints
			c.scalarEncodeABC[ch].Kind = cache.KindInt
		}
		c.scalarEncodeABC[ch].IsIdentity = false

		factor := c.scalarEncodeABC[ch].Params.Factor
		c.MatrixABCEncode = c.MatrixABCEncode.ScaleColumn(ch, factor)
		c.EncodeABCBase[ch] = cache.ToCached(c.scalarEncodeABC[ch].Params.Base * factor)
	}

	c.CachesEncodeLMN, _ = cache.Mult3(c.scalarEncodeLMN, c.MatrixABCEncode)

	if c.RenderTable != nil {
		c.RenderTableTIdentity = renderTableTIsIdentity(c.RenderTable.T)
	}

	c.Status = StatusCompleted
}

// renderTableStride returns the pre-multiplied stride for axis c of an
// m-channel table with the given per-axis dimensions, per spec.md §4.7/S5:
// axis 0 steps one plane at a time (stride 1, a Planes index rather than a
// byte offset); axis 1 steps a full [dims2][m] row (stride m*dims[2]); axis
// 2 steps one channel group (stride m).
func renderTableStride(axis, m int, dims [3]int) int {
	switch axis {
	case 0:
		return 1
	case 1:
		return m * dims[2]
	default:
		return m
	}
}

// renderTableTIsIdentity reports whether every output-byte transform in T
// is (within a byte's tolerance) the identity byte_to_frac conversion,
// checked at every byte value rather than by reusing the sampled caches,
// since T is cheap to evaluate directly and the sampled caches only cover
// the default [0,1] domain.
func renderTableTIsIdentity(t []TFunc) bool {
	if len(t) == 0 {
		return true
	}
	for _, tf := range t {
		for b := 0; b <= 255; b++ {
			want := float64(b) / 255
			if got := tf(b); got-want > 1.0/510 || got-want < -1.0/510 {
				return false
			}
		}
	}
	return true
}

// RenderTableTValue returns the sampled frac for render-table output channel
// k at byte value byteVal, via the scalar cache built during Sample. Callers
// must only use this once c.Status is at least StatusSampled and
// c.RenderTable is non-nil with len(T) > k.
func (c *CRD) RenderTableTValue(k, byteVal int) float64 {
	frac := float64(byteVal) / 255
	return c.renderTableT[k].LookupValue(frac)
}

// PointsSD holds the white/black calibration points for both the source
// color space and the destination CRD, in both XYZ (LMN) and PQR form.
// It is threaded through TransformPQR so a chromatic-adaptation transform
// can reference the endpoints it is mapping between.
type PointsSD struct {
	SourceWhiteLMN, SourceBlackLMN matrix.Vector3
	SourceWhitePQR, SourceBlackPQR matrix.Vector3
	DestWhitePQR, DestBlackPQR     matrix.Vector3
}

func computePointsSD(common *colorspace.Common, crd *CRD) PointsSD {
	return PointsSD{
		SourceWhiteLMN: common.WhitePoint,
		SourceBlackLMN: common.BlackPoint,
		SourceWhitePQR: crd.MatrixPQR.MultVec(common.WhitePoint),
		SourceBlackPQR: crd.MatrixPQR.MultVec(common.BlackPoint),
		DestWhitePQR:   crd.WDPQR,
		DestBlackPQR:   crd.BDPQR,
	}
}

// Joint is the joint cache (spec.md §4.6): the per-imager fusion of a color
// space's common LMN decode caches with a specific installed CRD's
// chromatic adaptation. Unlike the color space and the CRD, it is never
// shared across imager states that differ in either half of the fusion.
type Joint struct {
	Points       PointsSD
	MatrixLMNPQR matrix.Matrix3

	scalarTransformPQR [3]*cache.ScalarCache // sampled by Init
	TransformPQR       [3]*cache.VectorCache // fused by Complete
	DecodeLMN          [3]*cache.VectorCache // fused by Complete

	SkipLMN, SkipPQR bool

	initialized, completed bool
}

// Init runs joint_init: it computes points_sd, MatrixLMN_PQR, and samples
// TransformPQR over each PQR axis. Idempotent. Any TransformPQR failure
// aborts the sampling loop and is returned wrapped with the failing axis;
// the joint cache is left uninitialized. An axis whose every sample equals
// its input is flagged as identity.
func (j *Joint) Init(common *colorspace.Common, crd *CRD) error {
	if j.initialized {
		return nil
	}

	j.Points = computePointsSD(common, crd)
	j.MatrixLMNPQR = matrix.MatMul(crd.MatrixPQR, common.MatrixLMN)

	for axis := 0; axis < 3; axis++ {
		axis := axis
		var sampleErr error
		identity := true
		fn := func(v float64) float64 {
			r, err := crd.TransformPQR(axis, v, j.Points, crd)
			if err != nil && sampleErr == nil {
				sampleErr = err
			}
			if r != v {
				identity = false
			}
			return r
		}
		sc := cache.Load(crd.RangePQR[axis], fn, false)
		if sampleErr != nil {
			return fmt.Errorf("render: TransformPQR axis %d: %w", axis, sampleErr)
		}
		sc.IsIdentity = identity
		j.scalarTransformPQR[axis] = sc
	}

	j.initialized = true
	return nil
}

// Complete runs joint_complete: it restricts the sampled TransformPQR
// caches, fuses common's scalar LMN decode caches into this joint cache's
// own vector DecodeLMN (resolving the lifetime split described in
// colorspace.Common: the color space only ever holds the scalar form since
// a shared color space may be bound to several imager states each with a
// different CRD), and fuses TransformPQR with the CRD's
// MatrixPQR_inverse_LMN. A no-op on repeat calls, like every other
// "complete" transition in this pipeline.
func (j *Joint) Complete(common *colorspace.Common, crd *CRD) {
	if j.completed {
		return
	}

	for axis := 0; axis < 3; axis++ {
		j.scalarTransformPQR[axis].Restrict(crd.RangePQR[axis])
	}

	allIdentity := j.MatrixLMNPQR.IsIdentity
	for axis := 0; axis < 3; axis++ {
		vc := cache.Mult(common.ScalarLMN[axis], j.MatrixLMNPQR.Column(axis))
		j.DecodeLMN[axis] = vc
		if !vc.IsIdentity {
			allIdentity = false
		}
	}
	j.SkipLMN = allIdentity

	j.TransformPQR, j.SkipPQR = cache.Mult3(j.scalarTransformPQR, crd.MatrixPQRInverseLMN)

	j.completed = true
}
