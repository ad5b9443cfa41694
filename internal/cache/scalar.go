package cache

// Kind identifies how a ScalarCache's stored values should be reinterpreted
// by callers on read. Values are always held as float64 internally; Kind
// only governs the units a caller's conversion helper (ToFrac, ToInt, ...)
// should use when mapping that float out to frac or scaled-int space. This
// plays the role of the source's discriminated float/frac/int union without
// requiring three physically distinct storage layouts.
type Kind int

const (
	KindFloat Kind = iota
	KindFrac
	KindInt
)

// Func is a one-dimensional function to be sampled into a cache.
type Func func(x float64) float64

// Identity is the identity function, x -> x. Callers loading a decode or
// encode function known ahead of time to be the identity pass it here (and
// set identity=true at the call site) rather than have the cache package
// try to infer identity from samples, which the sampling domain's
// zero-snapping would make unreliable at the boundary.
func Identity(x float64) float64 { return x }

// ScalarCache holds N samples of a one-dimensional function over a domain,
// plus its sampling parameters and identity flag.
type ScalarCache struct {
	Params     Params
	CParams    CachedParams
	Loop       Loop
	IsIdentity bool
	Kind       Kind
	Values     [N]float64
}

// Load samples fn over domain into a new scalar cache. identity must be
// true iff fn is known to be the identity function (the cache has no way
// to discover this from samples alone: the spec's Non-goals explicitly
// give up exact fidelity at the boundary in exchange for a cache-aligned
// zero, so "samples look like x" is not a reliable identity test).
func Load(domain Domain, fn Func, identity bool) *ScalarCache {
	params, loop := InitCache(domain)
	c := &ScalarCache{
		Params:     params,
		CParams:    params.ToCached(),
		Loop:       loop,
		IsIdentity: identity,
		Kind:       KindFloat,
	}
	v := loop.Init
	for i := 0; i < N; i++ {
		c.Values[i] = fn(v)
		v += loop.Step
	}
	return c
}

// LookupIndex computes the cache slot (optionally left-shifted by fbits
// fractional bits) for value v against p, clamping at the domain boundary:
// v <= Base maps to index 0, v >= Limit maps to the last index. Base lies
// half a step below the first sample, so truncating (v-Base)*Factor gives
// the nearest sample.
func LookupIndex(v float64, p Params, fbits uint) int {
	switch {
	case v <= p.Base:
		return 0
	case v >= p.Limit:
		return (N - 1) << fbits
	default:
		idx := int((v - p.Base) * p.Factor)
		return idx << fbits
	}
}

// LookupValue returns the cache's sampled value nearest v.
func (c *ScalarCache) LookupValue(v float64) float64 {
	return c.Values[LookupIndex(v, c.Params, 0)]
}

// Restrict clamps every stored sample to [rng.Min, rng.Max] in place.
// Idempotent: applying it twice is the same as applying it once, since
// clamping an already-clamped value is a no-op.
func (c *ScalarCache) Restrict(rng Domain) {
	for i := range c.Values {
		if c.Values[i] < rng.Min {
			c.Values[i] = rng.Min
		} else if c.Values[i] > rng.Max {
			c.Values[i] = rng.Max
		}
	}
}

// ScaleToIndex rescales every sample from [from.Min, from.Max] into
// render-table index units [0, 255], clamping to that range. Used when
// preparing DEF/DEFG decode caches, which must be re-expressed in table
// index space before the ABC completion runs.
func (c *ScalarCache) ScaleToIndex(from Domain) {
	span := from.Max - from.Min
	scale := 0.0
	if span != 0 {
		scale = 255.0 / span
	}
	for i := range c.Values {
		v := (c.Values[i] - from.Min) * scale
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		c.Values[i] = v
	}
	c.Kind = KindInt
}

// Interpolate linearly interpolates between the sample at index i and i+1
// using fractional weight frac in [0,1]. Used by the DEF/DEFG front end,
// which needs sub-grid precision when mapping an input channel onto table
// index space.
func (c *ScalarCache) Interpolate(i int, frac float64) float64 {
	if i >= N-1 {
		return c.Values[N-1]
	}
	return c.Values[i] + (c.Values[i+1]-c.Values[i])*frac
}
