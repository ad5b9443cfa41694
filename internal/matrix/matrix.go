// Package matrix implements the 3x3 real-matrix algebra used to compose
// the CIE decode/encode chain: multiply, invert, vector multiply, and
// exact identity detection.
//
// The heavy lifting (multiply, inversion) is delegated to gonum's mat.Dense
// so the numerically fiddly parts of a general NxN solve aren't duplicated
// by hand; this package exists to wrap that with the domain's own 3x3
// row-vector shape and its "is_identity" bookkeeping, which gonum has no
// concept of and which must be computed by exact comparison, never by a
// tolerance-based equality.
package matrix

import "gonum.org/v1/gonum/mat"

// Vector3 is a real-valued 3-vector.
type Vector3 struct {
	X, Y, Z float64
}

// Matrix3 is a 3x3 real matrix stored row-major, matching the source's
// naming: rows cu, cv, cw.
type Matrix3 struct {
	CU, CV, CW Vector3
	IsIdentity bool
}

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3 {
	return New(
		Vector3{1, 0, 0},
		Vector3{0, 1, 0},
		Vector3{0, 0, 1},
	)
}

// New builds a Matrix3 from its three rows, computing IsIdentity by exact
// comparison against the identity matrix. This mirrors matrix_init: the
// flag is structural, set once at construction, and never touched by
// tolerance-based comparisons afterward.
func New(cu, cv, cw Vector3) Matrix3 {
	return Matrix3{
		CU:         cu,
		CV:         cv,
		CW:         cw,
		IsIdentity: isIdentityRows(cu, cv, cw),
	}
}

func isIdentityRows(cu, cv, cw Vector3) bool {
	return cu == (Vector3{1, 0, 0}) &&
		cv == (Vector3{0, 1, 0}) &&
		cw == (Vector3{0, 0, 1})
}

// Column returns column i (0, 1, or 2) of m as a Vector3.
func (m Matrix3) Column(i int) Vector3 {
	switch i {
	case 0:
		return Vector3{m.CU.X, m.CV.X, m.CW.X}
	case 1:
		return Vector3{m.CU.Y, m.CV.Y, m.CW.Y}
	default:
		return Vector3{m.CU.Z, m.CV.Z, m.CW.Z}
	}
}

func (m Matrix3) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m.CU.X, m.CU.Y, m.CU.Z,
		m.CV.X, m.CV.Y, m.CV.Z,
		m.CW.X, m.CW.Y, m.CW.Z,
	})
}

func fromDense(d *mat.Dense) Matrix3 {
	cu := Vector3{d.At(0, 0), d.At(0, 1), d.At(0, 2)}
	cv := Vector3{d.At(1, 0), d.At(1, 1), d.At(1, 2)}
	cw := Vector3{d.At(2, 0), d.At(2, 1), d.At(2, 2)}
	return New(cu, cv, cw)
}

func (v Vector3) dense() *mat.Dense {
	return mat.NewDense(3, 1, []float64{v.X, v.Y, v.Z})
}

// MultVec computes M*v, treating v as a column vector, and returns the
// product as a new Vector3; v is not modified.
func (m Matrix3) MultVec(v Vector3) Vector3 {
	var out mat.Dense
	out.Mul(m.dense(), v.dense())
	return Vector3{out.At(0, 0), out.At(1, 0), out.At(2, 0)}
}

// MatMul computes C = A*B. Note that as a composition of transforms,
// "apply A first, then B" is MatMul(B, A), not MatMul(A, B) — matrix
// multiplication composes right-to-left.
func MatMul(a, b Matrix3) Matrix3 {
	var out mat.Dense
	out.Mul(a.dense(), b.dense())
	return fromDense(&out)
}

// Invert computes the inverse of m with gonum's Inverse, which uses an LU
// factorization; the result is subject to ordinary floating-point rounding.
//
// Per the source, the result's IsIdentity flag is NOT recomputed from the
// inverted entries: it is copied from the caller's input matrix. A matrix
// the caller already knows to be the identity inverts to itself, and
// preserving the flag this way avoids a second exact-equality pass over
// the output on every preparation run.
func Invert(m Matrix3) (Matrix3, error) {
	var out mat.Dense
	err := out.Inverse(m.dense())
	if err != nil {
		return Matrix3{}, err
	}
	inv := fromDense(&out)
	inv.IsIdentity = m.IsIdentity
	return inv, nil
}

// Range is a real interval [Min, Max].
type Range struct {
	Min, Max float64
}

// TransformRange maps an axis-aligned box [in[0].Min,in[0].Max] x ... x
// [in[2].Min,in[2].Max] through m and returns the axis-aligned bounding box
// of the image, per the signed-product-interval rule: each output axis is
// the sum of three signed-product intervals, with product endpoints sorted
// before summation so matrix entries of either sign are handled correctly.
func TransformRange(in [3]Range, m Matrix3) [3]Range {
	rows := [3]Vector3{m.CU, m.CV, m.CW}
	var out [3]Range
	for axis := 0; axis < 3; axis++ {
		row := rowAt(rows[axis])
		var lo, hi float64
		for j := 0; j < 3; j++ {
			coeff := row[j]
			a := coeff * in[j].Min
			b := coeff * in[j].Max
			if a > b {
				a, b = b, a
			}
			lo += a
			hi += b
		}
		out[axis] = Range{lo, hi}
	}
	return out
}

func rowAt(v Vector3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func setComponent(v Vector3, idx int, val float64) Vector3 {
	switch idx {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// ScaleColumn multiplies every entry of column c by factor, leaving the
// other columns untouched. IsIdentity is preserved only when factor is
// exactly 1; otherwise it is cleared, since scaling a column necessarily
// breaks exact identity.
func (m Matrix3) ScaleColumn(c int, factor float64) Matrix3 {
	col := m.Column(c)
	scaled := Vector3{col.X * factor, col.Y * factor, col.Z * factor}
	out := m
	out.CU = setComponent(out.CU, c, scaled.X)
	out.CV = setComponent(out.CV, c, scaled.Y)
	out.CW = setComponent(out.CW, c, scaled.Z)
	out.IsIdentity = out.IsIdentity && factor == 1
	return out
}
