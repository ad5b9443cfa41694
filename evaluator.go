package ciecolor

import (
	"fmt"

	"github.com/gocie/ciecolor/internal/cache"
	"github.com/gocie/ciecolor/internal/colorspace"
)

// ConcretizeCIEA evaluates the CIE A color space's front end for a single
// achromatic input and finishes through the installed CRD.
func ConcretizeCIEA(cs *colorspace.A, state *ImagerState, a float64, out []float64) (int, error) {
	vlmn := cs.DecodeACache.LookupValue(cache.ToCached(a))
	return remapFinish(vlmn, out, state)
}

// ConcretizeCIEABC evaluates the CIE ABC color space's front end: pc is
// taken directly as a cached-vector and, unless the decode fusion is
// provably an identity, run through it before handing off to Stage B.
func ConcretizeCIEABC(cs *colorspace.ABC, state *ImagerState, pc [3]float64, out []float64) (int, error) {
	vabc := cache.Vector3{U: cache.ToCached(pc[0]), V: cache.ToCached(pc[1]), W: cache.ToCached(pc[2])}
	if !cs.SkipABC {
		vabc = cache.LookupMult3(vabc, cs.DecodeCache)
	}
	return remapFinish(vabc, out, state)
}

// ConcretizeCIEDEF evaluates the CIE DEF color space's table-driven front
// end (three input channels) before handing off to Stage B.
func ConcretizeCIEDEF(cs *colorspace.TableSpace, state *ImagerState, pc []float64, out []float64) (int, error) {
	return concretizeTable(cs, state, pc, out)
}

// ConcretizeCIEDEFG evaluates the CIE DEFG color space's table-driven front
// end (four input channels) before handing off to Stage B.
func ConcretizeCIEDEFG(cs *colorspace.TableSpace, state *ImagerState, pc []float64, out []float64) (int, error) {
	return concretizeTable(cs, state, pc, out)
}

func concretizeTable(cs *colorspace.TableSpace, state *ImagerState, pc []float64, out []float64) (int, error) {
	vabc, err := cs.FrontEnd(pc)
	if err != nil {
		return 0, err
	}
	if !cs.SkipABC {
		vabc = cache.LookupMult3(vabc, cs.DecodeCache)
	}
	return remapFinish(vabc, out, state)
}

// remapFinish is Stage B (spec.md §4.7, remap_finish): it carries an LMN
// intermediate color through the joint cache's chromatic adaptation, then
// through the CRD's LMN-to-ABC encode step, and emits either fracs (no
// render table) or a device byte tuple (render table installed).
//
// v is reused in place across the two optional lookup_mult3 applications,
// matching the "store back into v" aliasing described for lookup_mult3:
// each skip flag being true means its transform is provably the identity,
// so leaving v untouched is exactly equivalent to applying it.
func remapFinish(vlmn cache.Vector3, out []float64, state *ImagerState) (int, error) {
	crd := state.CRD()
	if crd == nil || state.joint == nil {
		out[0], out[1], out[2] = 0, 0, 0
		return 3, nil
	}
	joint := state.joint.joint

	v := vlmn
	if !joint.SkipLMN {
		v = cache.LookupMult3(v, joint.DecodeLMN)
	}
	if !joint.SkipPQR {
		v = cache.LookupMult3(v, joint.TransformPQR)
	}
	vabc := cache.LookupMult3(v, crd.CachesEncodeLMN)

	const maxIdx = cache.N<<cache.B - 1
	var tabc [3]int
	for c := 0; c < 3; c++ {
		// tabc carries B fractional bits below the EncodeABC cache index.
		t := cache.CachedToInt(cache.ToCached((vabc.Axis(c) - crd.EncodeABCBase[c]).Float64() * (1 << cache.B)))
		switch {
		case t < 0:
			t = 0
		case t > maxIdx:
			t = maxIdx
		}
		tabc[c] = t
	}

	if crd.RenderTable == nil {
		for c := 0; c < 3; c++ {
			frac := cache.InterpolateFrac(crd.EncodeABCFrac[c], tabc[c], cache.B)
			out[c] = cache.FracToFloat(frac)
		}
		return 3, nil
	}

	var ri [3]int
	for c := 0; c < 3; c++ {
		ri[c] = crd.EncodeABCInt[c][tabc[c]>>cache.B]
	}
	prtc := crd.RenderTable.Lookup(ri[0], ri[1], ri[2])
	m := crd.RenderTable.M

	if crd.RenderTableTIdentity {
		for k := 0; k < m; k++ {
			out[k] = float64(prtc[k]) / 255
		}
	} else {
		for k := 0; k < m; k++ {
			out[k] = crd.RenderTableTValue(k, int(prtc[k]))
		}
	}
	return m, nil
}

// RemapCIEABC evaluates the CIE ABC color space and dispatches the result
// to a device adapter based on the channel count remapFinish returns: 3
// selects the RGB adapter, 4 selects the CMYK adapter. Any other count is
// unreachable given the color spaces this package constructs, and is
// reported as ErrUnreachableDispatch rather than silently dropped.
func RemapCIEABC(cs *colorspace.ABC, state *ImagerState, pc [3]float64, deviceColor []float64, rgb func([]float64) error, cmyk func([]float64) error) error {
	var buf [4]float64
	n, err := ConcretizeCIEABC(cs, state, pc, buf[:])
	if err != nil {
		return err
	}
	copy(deviceColor, buf[:n])
	switch n {
	case 3:
		return rgb(deviceColor[:3])
	case 4:
		return cmyk(deviceColor[:4])
	default:
		return fmt.Errorf("%w: got %d channels", ErrUnreachableDispatch, n)
	}
}
