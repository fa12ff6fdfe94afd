// Package vectormath provides the small set of dense-vector operations the
// classification pipeline is built on. Vectors are stored as []float32 to
// match what embedding providers return; all accumulation happens in float64.
package vectormath

import (
	"errors"
	"math"
)

// ErrDimensionMismatch is returned when two vectors of different lengths are
// combined. It indicates a contract violation by the caller, not a transient
// condition, and should never be retried.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Dot returns the dot product of a and b.
func Dot(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Norm returns the L2 norm of a.
func Norm(a []float32) float64 {
	var sum float64
	for _, v := range a {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b in [-1, 1]. A zero vector
// on either side yields a similarity of 0.
func Cosine(a, b []float32) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Normalize returns a new L2-normalized copy of a. Zero vectors are returned
// as an unchanged copy.
func Normalize(a []float32) []float32 {
	out := make([]float32, len(a))
	n := Norm(a)
	if n == 0 {
		copy(out, a)
		return out
	}
	for i, v := range a {
		out[i] = float32(float64(v) / n)
	}
	return out
}

// Mean returns the component-wise mean of the given vectors. All vectors must
// share the same dimension.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, errors.New("no vectors to average")
	}
	dim := len(vectors[0])
	acc := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil, ErrDimensionMismatch
		}
		for i, x := range v {
			acc[i] += float64(x)
		}
	}
	out := make([]float32, dim)
	for i, x := range acc {
		out[i] = float32(x / float64(len(vectors)))
	}
	return out, nil
}

// Euclidean returns the Euclidean distance between a and b.
func Euclidean(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
