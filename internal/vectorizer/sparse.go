package vectorizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch marks an operation across vectors of different width.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Vector is a sparse document vector. Indices are sorted ascending and
// parallel to Values.
type Vector struct {
	Indices []int
	Values  []float64
	Dim     int
}

// fromMap builds a sorted sparse vector from an index→value map.
func fromMap(m map[int]float64, dim int) Vector {
	v := Vector{
		Indices: make([]int, 0, len(m)),
		Values:  make([]float64, 0, len(m)),
		Dim:     dim,
	}
	for idx := range m {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, m[idx])
	}
	return v
}

// Nnz returns the number of non-zero entries.
func (v Vector) Nnz() int { return len(v.Indices) }

// L2Norm returns the Euclidean norm.
func (v Vector) L2Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// L1Norm returns the sum of absolute values.
func (v Vector) L1Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += math.Abs(x)
	}
	return sum
}

// DotDense computes the dot product against a dense weight slice.
func (v Vector) DotDense(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		if idx < len(dense) {
			sum += v.Values[i] * dense[idx]
		}
	}
	return sum
}

// scale multiplies every stored value in place.
func (v Vector) scale(f float64) {
	for i := range v.Values {
		v.Values[i] *= f
	}
}

// AbsDiff returns the element-wise absolute difference |a − b|, the feature
// transform for verification pairs.
func AbsDiff(a, b Vector) (Vector, error) {
	if a.Dim != b.Dim {
		return Vector{}, fmt.Errorf("abs diff over %d vs %d: %w", a.Dim, b.Dim, ErrDimensionMismatch)
	}

	out := Vector{
		Indices: make([]int, 0, len(a.Indices)+len(b.Indices)),
		Values:  make([]float64, 0, len(a.Indices)+len(b.Indices)),
		Dim:     a.Dim,
	}
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			out.Indices = append(out.Indices, a.Indices[i])
			out.Values = append(out.Values, math.Abs(a.Values[i]))
			i++
		case a.Indices[i] > b.Indices[j]:
			out.Indices = append(out.Indices, b.Indices[j])
			out.Values = append(out.Values, math.Abs(b.Values[j]))
			j++
		default:
			d := math.Abs(a.Values[i] - b.Values[j])
			if d != 0 {
				out.Indices = append(out.Indices, a.Indices[i])
				out.Values = append(out.Values, d)
			}
			i++
			j++
		}
	}
	for ; i < len(a.Indices); i++ {
		out.Indices = append(out.Indices, a.Indices[i])
		out.Values = append(out.Values, math.Abs(a.Values[i]))
	}
	for ; j < len(b.Indices); j++ {
		out.Indices = append(out.Indices, b.Indices[j])
		out.Values = append(out.Values, math.Abs(b.Values[j]))
	}
	return out, nil
}
