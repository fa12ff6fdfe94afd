package projection

import (
	"fmt"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultIntermediateDims is the PCA output dimensionality fed into
	// t-SNE. Reducing first denoises the embeddings and keeps the pairwise
	// affinity computation tractable.
	DefaultIntermediateDims = 50

	// DefaultPerplexity matches the neighborhood size the visualization was
	// tuned with.
	DefaultPerplexity = 40

	// DefaultLearningRate is the t-SNE gradient step size.
	DefaultLearningRate = 100
)

// Reducer turns an n×d matrix of item embeddings into n×3 display
// coordinates. Implementations must be deterministic per (input, iterations)
// only if their underlying algorithm is; the cache layer above guarantees
// stable output per fingerprint either way.
type Reducer interface {
	Reduce(m *mat.Dense, iterations int) (*mat.Dense, error)
}

// PCATSNEReducer is the default reducer: PCA to an intermediate
// dimensionality, then t-SNE down to 3 dimensions.
type PCATSNEReducer struct {
	IntermediateDims int
	Perplexity       float64
	LearningRate     float64
}

// NewPCATSNEReducer returns a reducer with the default parameters.
func NewPCATSNEReducer() *PCATSNEReducer {
	return &PCATSNEReducer{
		IntermediateDims: DefaultIntermediateDims,
		Perplexity:       DefaultPerplexity,
		LearningRate:     DefaultLearningRate,
	}
}

// Reduce implements Reducer.
func (r *PCATSNEReducer) Reduce(m *mat.Dense, iterations int) (*mat.Dense, error) {
	n, d := m.Dims()
	if n == 0 {
		return nil, fmt.Errorf("reduce: empty matrix")
	}

	centered := centerColumns(m)

	reduced := centered
	if d > r.IntermediateDims {
		var err error
		reduced, err = principalComponents(centered, r.IntermediateDims)
		if err != nil {
			return nil, err
		}
	}

	// t-SNE needs a real neighborhood to optimize; tiny batches fall back
	// to plain PCA coordinates.
	if n <= 4 {
		return firstThree(reduced), nil
	}

	perplexity := r.Perplexity
	if limit := float64(n-1) / 3; perplexity > limit {
		perplexity = limit
	}

	t := tsne.NewTSNE(3, perplexity, r.LearningRate, iterations, false)
	t.EmbedData(reduced, nil)

	out := mat.DenseCopyOf(t.Y)
	rows, cols := out.Dims()
	if rows != n || cols != 3 {
		return nil, fmt.Errorf("reduce: t-sne returned %dx%d, want %dx3", rows, cols, n)
	}
	return out, nil
}
