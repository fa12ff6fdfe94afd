package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	assert.InDelta(t, 1.0, Norm(v), 1e-6)
	assert.InDelta(t, 0.6, float64(v[0]), 1e-6)
	assert.InDelta(t, 0.8, float64(v[1]), 1e-6)

	// Zero vectors come back unchanged, not NaN.
	z := Normalize([]float32{0, 0, 0})
	for _, x := range z {
		assert.False(t, math.IsNaN(float64(x)))
		assert.Zero(t, x)
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([][]float32{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.InDelta(t, 3, float64(got[0]), 1e-6)
	assert.InDelta(t, 4, float64(got[1]), 1e-6)

	_, err = Mean(nil)
	assert.Error(t, err)

	_, err = Mean([][]float32{{1, 2}, {1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestEuclidean(t *testing.T) {
	d, err := Euclidean([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5, d, 1e-9)

	_, err = Euclidean([]float32{1}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
