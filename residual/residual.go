// Package residual implements the third classification stage: an
// unsupervised k-means pass seeded from the emotion prototypes that
// reconciles low-confidence supervised predictions.
package residual

import (
	"errors"
	"fmt"

	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/internal/vectormath"
	"github.com/signalhaze/vibemap/prototype"
)

const (
	// DefaultMaxIterations caps the Lloyd iterations.
	DefaultMaxIterations = 50

	// DefaultTolerance stops iteration once no centroid moves farther than
	// this between rounds.
	DefaultTolerance = 1e-4

	// DefaultOverrideThreshold is the stage-2 confidence below which the
	// cluster's level replaces the supervised prediction.
	DefaultOverrideThreshold = 0.35
)

// Input is one item entering residual correction: its embedding plus the
// stage-2 prediction.
type Input struct {
	Vector     []float32
	Level      emotion.Level
	Confidence float64
}

// Output is the final decision for one item. FromCluster is true when the
// cluster's level overrode the stage-2 prediction.
type Output struct {
	Level       emotion.Level
	Confidence  float64
	FromCluster bool
}

// Stats describes the clustering run. Converged is false when the iteration
// cap was hit before the centroid shift dropped below tolerance; the result
// is still usable, callers just see the flag.
type Stats struct {
	Iterations int
	Converged  bool
}

// Options configures the clustering pass.
type Options struct {
	MaxIterations     int
	Tolerance         float64
	OverrideThreshold float64
}

func (o *Options) applyDefaults() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.OverrideThreshold <= 0 {
		o.OverrideThreshold = DefaultOverrideThreshold
	}
}

// Correct clusters the batch with k-means, one cluster per prototype, with
// centers initialized from the prototype vectors rather than at random: the
// seeding keeps runs deterministic and lets each converged cluster map back
// to an emotion level by nearest prototype.
//
// Items whose stage-2 confidence is at or above OverrideThreshold keep their
// stage-2 level. Final confidence blends stage-2 confidence with cluster
// membership ((1+cosine)/2) in equal parts; the blend is monotone in both.
func Correct(inputs []Input, bank prototype.Bank, opts Options) ([]Output, Stats, error) {
	opts.applyDefaults()
	if len(bank) == 0 {
		return nil, Stats{}, errors.New("prototype bank is empty")
	}
	if len(inputs) == 0 {
		return nil, Stats{Converged: true}, nil
	}

	dim := bank.Dimension()
	for i, in := range inputs {
		if len(in.Vector) != dim {
			return nil, Stats{}, fmt.Errorf("input %d: %w", i, vectormath.ErrDimensionMismatch)
		}
	}

	levels := bank.Levels()
	k := len(levels)
	centers := make([][]float32, k)
	for i, lvl := range levels {
		centers[i] = append([]float32(nil), bank[lvl].Vector...)
	}

	assignments := make([]int, len(inputs))
	stats := Stats{}
	for iter := 0; iter < opts.MaxIterations; iter++ {
		stats.Iterations = iter + 1

		for i, in := range inputs {
			assignments[i] = nearestCenter(in.Vector, centers)
		}

		shift, err := recomputeCenters(inputs, assignments, centers)
		if err != nil {
			return nil, Stats{}, err
		}
		if shift < opts.Tolerance {
			stats.Converged = true
			break
		}
	}

	// Map each cluster back to an emotion level. Centers start at the
	// prototypes so this is usually the identity, but centroids can drift
	// toward a neighboring level on skewed batches.
	clusterLevel := make([]emotion.Level, k)
	for c, center := range centers {
		lvl, _, err := matchLevel(center, bank)
		if err != nil {
			return nil, Stats{}, err
		}
		clusterLevel[c] = lvl
	}

	outputs := make([]Output, len(inputs))
	for i, in := range inputs {
		c := assignments[i]
		cos, err := vectormath.Cosine(in.Vector, centers[c])
		if err != nil {
			return nil, Stats{}, err
		}
		membership := (1 + cos) / 2

		out := Output{Level: in.Level, Confidence: blend(in.Confidence, membership)}
		if in.Confidence < opts.OverrideThreshold {
			out.Level = clusterLevel[c]
			out.FromCluster = true
		}
		outputs[i] = out
	}
	return outputs, stats, nil
}

// blend combines stage-2 confidence and cluster membership in equal parts.
// Monotone by construction: raising either input never lowers the result.
func blend(confidence, membership float64) float64 {
	v := 0.5*confidence + 0.5*membership
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func nearestCenter(vec []float32, centers [][]float32) int {
	best := 0
	bestDist := 0.0
	for c, center := range centers {
		d, _ := vectormath.Euclidean(vec, center)
		if c == 0 || d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// recomputeCenters replaces each centroid with the mean of its members and
// returns the largest distance any centroid moved. Empty clusters keep their
// previous center, anchoring them at the prototype.
func recomputeCenters(inputs []Input, assignments []int, centers [][]float32) (float64, error) {
	members := make(map[int][][]float32, len(centers))
	for i, in := range inputs {
		members[assignments[i]] = append(members[assignments[i]], in.Vector)
	}

	maxShift := 0.0
	for c := range centers {
		vecs := members[c]
		if len(vecs) == 0 {
			continue
		}
		mean, err := vectormath.Mean(vecs)
		if err != nil {
			return 0, err
		}
		shift, err := vectormath.Euclidean(centers[c], mean)
		if err != nil {
			return 0, err
		}
		if shift > maxShift {
			maxShift = shift
		}
		centers[c] = mean
	}
	return maxShift, nil
}

func matchLevel(center []float32, bank prototype.Bank) (emotion.Level, float64, error) {
	best := emotion.Level(-1)
	bestScore := 0.0
	for _, lvl := range bank.Levels() {
		s, err := vectormath.Cosine(center, bank[lvl].Vector)
		if err != nil {
			return 0, 0, err
		}
		if !best.Valid() || s > bestScore {
			best = lvl
			bestScore = s
		}
	}
	return best, bestScore, nil
}
