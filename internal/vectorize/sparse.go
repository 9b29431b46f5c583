package vectorize

import "math"

// SparseVector holds the non-zero entries of a feature row, sorted by index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored entries.
func (v SparseVector) Len() int { return len(v.Indices) }

// Dot returns the dot product with a dense weight vector.
func (v SparseVector) Dot(w []float64) float64 {
	var s float64
	for k, j := range v.Indices {
		if j < len(w) {
			s += v.Values[k] * w[j]
		}
	}
	return s
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	var s float64
	for _, x := range v.Values {
		s += x * x
	}
	return math.Sqrt(s)
}

// Equal reports whether two vectors store the same entries.
func (v SparseVector) Equal(o SparseVector) bool {
	if len(v.Indices) != len(o.Indices) {
		return false
	}
	for k := range v.Indices {
		if v.Indices[k] != o.Indices[k] || v.Values[k] != o.Values[k] {
			return false
		}
	}
	return true
}

// Matrix is a row-major sparse matrix with a fixed column count.
type Matrix struct {
	Rows []SparseVector
	Cols int
}

// Subset returns the rows at idx, sharing storage with m.
func (m Matrix) Subset(idx []int) Matrix {
	out := Matrix{Rows: make([]SparseVector, len(idx)), Cols: m.Cols}
	for i, j := range idx {
		out.Rows[i] = m.Rows[j]
	}
	return out
}
