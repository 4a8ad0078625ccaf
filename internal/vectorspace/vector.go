package vectorspace

import "math"

// Vector is a sparse vector with strictly increasing dimension indices.
type Vector struct {
	idx []int32
	val []float64
}

// NewVector builds a Vector from parallel index/value slices.
// Indices must be strictly increasing; the slices are not copied.
func NewVector(idx []int32, val []float64) Vector {
	return Vector{idx: idx, val: val}
}

// Indices returns the non-zero dimensions.
func (v Vector) Indices() []int32 { return v.idx }

// Values returns the weights aligned with Indices.
func (v Vector) Values() []float64 { return v.val }

// Len returns the number of non-zero entries.
func (v Vector) Len() int { return len(v.idx) }

// IsZero reports whether the vector has no non-zero entries.
func (v Vector) IsZero() bool { return len(v.idx) == 0 }

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.val {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b, clamped to [0, 1].
// A zero vector on either side yields 0.
//
// Dot product and both norms are accumulated in one merge walk, so two
// identical vectors produce exactly 1.
func Cosine(a, b Vector) float64 {
	var dot, na, nb float64
	i, j := 0, 0
	for i < len(a.idx) && j < len(b.idx) {
		switch {
		case a.idx[i] == b.idx[j]:
			dot += a.val[i] * b.val[j]
			na += a.val[i] * a.val[i]
			nb += b.val[j] * b.val[j]
			i++
			j++
		case a.idx[i] < b.idx[j]:
			na += a.val[i] * a.val[i]
			i++
		default:
			nb += b.val[j] * b.val[j]
			j++
		}
	}
	for ; i < len(a.idx); i++ {
		na += a.val[i] * a.val[i]
	}
	for ; j < len(b.idx); j++ {
		nb += b.val[j] * b.val[j]
	}

	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / math.Sqrt(na*nb)
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
