// Package weigher implements the second classification stage: a supervised
// model that learns a per-level weight and bias over prototype similarity
// scores from a small human-labeled set.
package weigher

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/prototype"
	"github.com/signalhaze/vibemap/similarity"
)

const (
	// DefaultSplitRatio is the training share of a labeled set.
	DefaultSplitRatio = 0.8

	// DefaultSplitSeed fixes the shuffle used by Split so the train/eval
	// partition is reproducible across runs.
	DefaultSplitSeed = 42

	// DefaultEpochs is the number of passes over the training set.
	DefaultEpochs = 200

	// DefaultLearningRate scales each perceptron update.
	DefaultLearningRate = 0.05

	// DefaultMinExamplesPerLevel is the minimum training examples required
	// for a level that appears in the evaluation set.
	DefaultMinExamplesPerLevel = 2
)

// Example pairs an item's embedding with its human-assigned level.
type Example struct {
	Vector []float32
	Level  emotion.Level
}

// InsufficientDataError reports a level present in the evaluation set with
// too few training examples to fit a weight for it.
type InsufficientDataError struct {
	Level emotion.Level
	Have  int
	Want  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("level %q has %d training examples, need at least %d",
		e.Level.Label(), e.Have, e.Want)
}

// Options configures training.
type Options struct {
	Epochs              int
	LearningRate        float64
	MinExamplesPerLevel int
}

func (o *Options) applyDefaults() {
	if o.Epochs <= 0 {
		o.Epochs = DefaultEpochs
	}
	if o.LearningRate <= 0 {
		o.LearningRate = DefaultLearningRate
	}
	if o.MinExamplesPerLevel <= 0 {
		o.MinExamplesPerLevel = DefaultMinExamplesPerLevel
	}
}

// Model holds one scalar weight and bias per emotion level, applied to the
// cosine similarity against that level's prototype. Read-only after Train.
type Model struct {
	Weights map[emotion.Level]float64 `json:"weights"`
	Biases  map[emotion.Level]float64 `json:"biases"`
}

// Report is the observable outcome of a training run. Accuracy is measured
// on the held-out partition and is the pipeline's only accuracy signal, so
// callers should surface it rather than discard it.
type Report struct {
	Accuracy  float64 `json:"accuracy"`
	TrainSize int     `json:"train_size"`
	EvalSize  int     `json:"eval_size"`
}

// Split partitions labeled examples into a training and evaluation set. The
// shuffle is seeded, so the same inputs, ratio and seed always produce the
// same partition. Ratio outside (0, 1) falls back to DefaultSplitRatio.
func Split(examples []Example, ratio float64, seed int64) (train, eval []Example) {
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultSplitRatio
	}
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * ratio)
	return shuffled[:cut], shuffled[cut:]
}

// Train fits per-level weights with multiclass perceptron updates over the
// training partition, then scores the held-out partition. Examples are
// visited in a fixed order each epoch, so training is deterministic.
//
// Returns an InsufficientDataError when a level that appears in evalSet has
// fewer than MinExamplesPerLevel training examples.
func Train(trainSet, evalSet []Example, bank prototype.Bank, opts Options) (*Model, Report, error) {
	opts.applyDefaults()
	if len(trainSet) == 0 {
		return nil, Report{}, errors.New("training set is empty")
	}

	trainCounts := make(map[emotion.Level]int)
	for _, ex := range trainSet {
		trainCounts[ex.Level]++
	}
	for _, lvl := range emotion.Levels() {
		inEval := false
		for _, ex := range evalSet {
			if ex.Level == lvl {
				inEval = true
				break
			}
		}
		if inEval && trainCounts[lvl] < opts.MinExamplesPerLevel {
			return nil, Report{}, &InsufficientDataError{
				Level: lvl,
				Have:  trainCounts[lvl],
				Want:  opts.MinExamplesPerLevel,
			}
		}
	}

	// Prototype similarities are fixed per example; compute them once.
	trainScores, err := scoreAll(trainSet, bank)
	if err != nil {
		return nil, Report{}, err
	}

	model := &Model{
		Weights: make(map[emotion.Level]float64, len(bank)),
		Biases:  make(map[emotion.Level]float64, len(bank)),
	}
	for _, lvl := range bank.Levels() {
		model.Weights[lvl] = 1.0
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		mistakes := 0
		for i, ex := range trainSet {
			pred := argmaxWeighted(model, bank, trainScores[i])
			if pred == ex.Level {
				continue
			}
			mistakes++
			model.Weights[ex.Level] += opts.LearningRate * trainScores[i][ex.Level]
			model.Biases[ex.Level] += opts.LearningRate
			model.Weights[pred] -= opts.LearningRate * trainScores[i][pred]
			model.Biases[pred] -= opts.LearningRate
		}
		if mistakes == 0 {
			break
		}
	}

	report := Report{TrainSize: len(trainSet), EvalSize: len(evalSet)}
	if len(evalSet) > 0 {
		evalScores, err := scoreAll(evalSet, bank)
		if err != nil {
			return nil, Report{}, err
		}
		correct := 0
		for i, ex := range evalSet {
			if argmaxWeighted(model, bank, evalScores[i]) == ex.Level {
				correct++
			}
		}
		report.Accuracy = float64(correct) / float64(len(evalSet))
	}

	return model, report, nil
}

// Predict returns the level with the highest weighted similarity score and a
// confidence in [0, 1]. Confidence is the margin between the best and
// second-best weighted scores, normalized as margin/(1+margin), so a clear
// winner approaches 1 and a near-tie approaches 0.
func (m *Model) Predict(vec []float32, bank prototype.Bank) (emotion.Level, float64, error) {
	scores, err := similarity.Scores(vec, bank)
	if err != nil {
		return 0, 0, err
	}
	return m.PredictScores(scores, bank)
}

// PredictScores is Predict over a score map already computed by
// similarity.Scores, avoiding a second pass over the prototypes.
func (m *Model) PredictScores(scores map[emotion.Level]float64, bank prototype.Bank) (emotion.Level, float64, error) {
	if len(bank) == 0 {
		return 0, 0, similarity.ErrEmptyBank
	}

	levels := bank.Levels()
	best := levels[0]
	top := m.weighted(best, scores[best])
	second := math.Inf(-1)
	for _, lvl := range levels[1:] {
		w := m.weighted(lvl, scores[lvl])
		if w > top+similarity.Tolerance {
			second = top
			best, top = lvl, w
		} else if w > second {
			second = w
		}
	}
	if len(levels) < 2 {
		return best, 1, nil
	}

	margin := top - second
	if margin < 0 {
		margin = 0
	}
	return best, margin / (1 + margin), nil
}

func (m *Model) weighted(lvl emotion.Level, score float64) float64 {
	return m.Weights[lvl]*score + m.Biases[lvl]
}

func argmaxWeighted(m *Model, bank prototype.Bank, scores map[emotion.Level]float64) emotion.Level {
	best := emotion.Level(-1)
	bestScore := 0.0
	for _, lvl := range bank.Levels() {
		w := m.weighted(lvl, scores[lvl])
		if !best.Valid() || w > bestScore+similarity.Tolerance {
			best = lvl
			bestScore = w
		}
	}
	return best
}

func scoreAll(examples []Example, bank prototype.Bank) ([]map[emotion.Level]float64, error) {
	out := make([]map[emotion.Level]float64, len(examples))
	for i, ex := range examples {
		scores, err := similarity.Scores(ex.Vector, bank)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		out[i] = scores
	}
	return out, nil
}
