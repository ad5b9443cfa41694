// Package cache implements the Domain Sampler and the scalar/vector cache
// kernels: fixed-size pre-sampled lookup tables for one-dimensional
// functions, and the scalar-to-vector multiplication that fuses a sampled
// function with a matrix column.
//
// Dense, fixed-capacity arrays are the datatype here, not pointer chains —
// every cache owns its N-entry values array inline, matching the way
// sharpyuv and internal/dsp lay out their own lookup tables.
package cache

// N is the cache resolution: the number of samples held per one-dimensional
// function. Must be a power of two, >= 256.
const N = 256

// B is the number of fractional bits used to address sub-sample positions
// during interpolated lookups (interpolate_bits).
const B = 8

// Domain is a real interval [Min, Max] with Min <= Max.
type Domain struct {
	Min, Max float64
}
