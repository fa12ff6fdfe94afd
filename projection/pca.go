package projection

import (
	"errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// centerColumns returns a copy of m with each column shifted to zero mean.
func centerColumns(m *mat.Dense) *mat.Dense {
	n, d := m.Dims()
	out := mat.DenseCopyOf(m)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, m)
		mean := stat.Mean(col, nil)
		for i := 0; i < n; i++ {
			out.Set(i, j, m.At(i, j)-mean)
		}
	}
	return out
}

// principalComponents projects the centered matrix onto its top k principal
// components via thin SVD.
func principalComponents(centered *mat.Dense, k int) (*mat.Dense, error) {
	n, d := centered.Dims()
	if k > d {
		k = d
	}
	if k > n {
		k = n
	}
	if k < 1 {
		return nil, errors.New("pca: no components to keep")
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, errors.New("pca: svd factorization failed")
	}

	// V is d x min(n, d); its leading columns are the principal directions.
	var v mat.Dense
	svd.VTo(&v)

	components := mat.NewDense(d, k, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < k; j++ {
			components.Set(i, j, v.At(i, j))
		}
	}

	var projected mat.Dense
	projected.Mul(centered, components)
	return &projected, nil
}

// firstThree returns the first three columns of m, zero-padded when m is
// narrower than three.
func firstThree(m *mat.Dense) *mat.Dense {
	n, d := m.Dims()
	out := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < 3 && j < d; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}
