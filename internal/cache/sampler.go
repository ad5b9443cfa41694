package cache

import "math"

// Params holds a cache's sampling parameters in float form: the values used
// when loading (sampling a function into a cache). Factor is 0 for a
// degenerate (zero-width) domain.
type Params struct {
	Base   float64
	Factor float64
	Limit  float64
}

// CachedParams holds the same sampling parameters pre-converted to the
// package's native arithmetic type, for use on the fast indexing path.
type CachedParams struct {
	Base, Factor, Limit CachedNumber
}

// ToCached converts p to its cached-number form.
func (p Params) ToCached() CachedParams {
	return CachedParams{
		Base:   ToCached(p.Base),
		Factor: ToCached(p.Factor),
		Limit:  ToCached(p.Limit),
	}
}

// Loop describes the grid a cache was sampled over: values at
// init, init+step, init+2*step, ..., up to limit.
type Loop struct {
	Init, Step, Limit float64
}

// InitCache computes the sampling parameters and sampling loop for a
// one-dimensional domain, biasing the grid so that a domain value of zero
// falls exactly on a grid point whenever the domain spans zero. Pure
// function of its input; trivially idempotent.
func InitCache(d Domain) (Params, Loop) {
	a, b := d.Min, d.Max
	const n = float64(N - 1)

	if a < 0 && b >= 0 {
		a, b = snapZero(a, b, n)
	}

	r := b - a
	step := r / n
	params := Params{Base: a - step/2, Limit: b + step/2}
	if r != 0 {
		params.Factor = n / r
	}
	loop := Loop{Init: a, Step: step, Limit: b + step/2}
	return params, loop
}

// snapZero widens [a, b) (a<0<=b) by raising b or lowering a so that zero
// lands exactly on a sampling grid point, per the zero-snapping rule: of
// the two candidate widenings, the one yielding the smaller span is kept.
func snapZero(a, b, n float64) (float64, float64) {
	r := b - a
	x := -n * a / r
	kb := math.Floor(x)
	ka := math.Ceil(x) - n

	widenB := kb == 0
	if !widenB && ka != 0 && -b/ka < -a/kb {
		widenB = true
	}

	if widenB {
		if ka == 0 {
			// Already aligned via the Kb branch; nothing to widen.
			return a, b
		}
		r = -n * b / ka
		return b - r, b
	}
	r = -n * a / kb
	return a, a + r
}
