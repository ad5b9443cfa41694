// Package interp implements the multidimensional linear interpolator the
// render core treats as an external collaborator: given a set of
// fixed-point grid indices (integer part plus a fractional remainder below
// some number of bits) and a row-major lookup table, it returns the
// multilinear blend of the 2^n surrounding table corners.
//
// This generalizes the teacher's two-dimensional diamond 4-tap chroma
// upsampling kernel (internal/dsp/upsample.go's UpsampleLinePair) from a
// fixed bilinear blend of 4 neighbors to an n-dimensional blend of 2^n
// neighbors, which is what the DEF/DEFG decode table (3 or 4 input axes,
// 3 output fracs) needs from its lookup step. The CRD render table is
// indexed directly and does not use this package.
package interp

import "fmt"

// Table is a row-major multidimensional lookup table: Dims gives the grid
// size along each input axis, and M is the number of output channels
// stored contiguously at each grid point.
type Table struct {
	Dims []int
	M    int
	Data []byte
}

func (t Table) stride(axis int) int {
	s := t.M
	for k := len(t.Dims) - 1; k > axis; k-- {
		s *= t.Dims[k]
	}
	return s
}

// At returns output channel c at grid coordinate coord.
func (t Table) At(coord []int, c int) byte {
	off := c
	for k, d := range coord {
		off += d * t.stride(k)
	}
	return t.Data[off]
}

// Linear performs multilinear interpolation. index holds one fixed-point
// coordinate per input axis, with the integer grid position in the high
// bits and an interpolation fraction in the low fracBits bits. out must
// have length t.M; it receives the blended value of each output channel.
func Linear(index []int, fracBits uint, t Table, out []float64) error {
	n := len(t.Dims)
	if len(index) != n {
		return fmt.Errorf("interp: index has %d axes, table has %d", len(index), n)
	}
	if len(out) != t.M {
		return fmt.Errorf("interp: out has %d channels, table has %d", len(out), t.M)
	}

	base := make([]int, n)
	frac := make([]float64, n)
	scale := float64(int(1) << fracBits)
	mask := (1 << fracBits) - 1
	for k := 0; k < n; k++ {
		gi := index[k] >> fracBits
		f := float64(index[k]&mask) / scale
		if gi < 0 {
			gi = 0
		}
		if gi > t.Dims[k]-2 {
			// At or past the last grid point: blend fully toward it.
			gi, f = t.Dims[k]-2, 1
			if gi < 0 {
				gi, f = 0, 0
			}
		}
		base[k] = gi
		frac[k] = f
	}

	for c := range out {
		out[c] = 0
	}
	coord := make([]int, n)
	corners := 1 << n
	for mask := 0; mask < corners; mask++ {
		weight := 1.0
		for k := 0; k < n; k++ {
			if mask&(1<<k) != 0 {
				weight *= frac[k]
				coord[k] = base[k] + 1
				if coord[k] > t.Dims[k]-1 {
					coord[k] = t.Dims[k] - 1
				}
			} else {
				weight *= 1 - frac[k]
				coord[k] = base[k]
			}
		}
		if weight == 0 {
			continue
		}
		for c := 0; c < t.M; c++ {
			out[c] += weight * float64(t.At(coord, c))
		}
	}
	return nil
}
