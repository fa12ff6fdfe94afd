// Package similarity implements the first classification stage:
// nearest-prototype matching by cosine similarity.
package similarity

import (
	"errors"
	"fmt"

	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/internal/vectormath"
	"github.com/signalhaze/vibemap/prototype"
)

// Tolerance is the floating-point window within which two prototype scores
// count as a tie. Ties resolve to the lower-ordinal (more negative) level so
// the stage is deterministic.
const Tolerance = 1e-9

// ErrEmptyBank is returned when matching against a bank with no prototypes.
var ErrEmptyBank = errors.New("prototype bank is empty")

// Scores returns the cosine similarity between vec and every prototype in
// the bank. Each score is in [-1, 1].
func Scores(vec []float32, bank prototype.Bank) (map[emotion.Level]float64, error) {
	if len(bank) == 0 {
		return nil, ErrEmptyBank
	}
	scores := make(map[emotion.Level]float64, len(bank))
	for _, lvl := range bank.Levels() {
		s, err := vectormath.Cosine(vec, bank[lvl].Vector)
		if err != nil {
			return nil, fmt.Errorf("score against %s prototype: %w", lvl, err)
		}
		scores[lvl] = s
	}
	return scores, nil
}

// Match returns the emotion level whose prototype is most similar to vec,
// along with that similarity. Levels are scanned in ascending intensity
// order and a candidate must beat the incumbent by more than Tolerance, so
// near-ties keep the more negative level.
func Match(vec []float32, bank prototype.Bank) (emotion.Level, float64, error) {
	scores, err := Scores(vec, bank)
	if err != nil {
		return 0, 0, err
	}
	return MatchScores(scores, bank)
}

// MatchScores is Match over a score map already computed by Scores, so
// callers running several stages on one vector cosine the prototypes once.
func MatchScores(scores map[emotion.Level]float64, bank prototype.Bank) (emotion.Level, float64, error) {
	if len(bank) == 0 {
		return 0, 0, ErrEmptyBank
	}

	best := emotion.Level(-1)
	bestScore := 0.0
	for _, lvl := range bank.Levels() {
		if !best.Valid() || scores[lvl] > bestScore+Tolerance {
			best = lvl
			bestScore = scores[lvl]
		}
	}
	return best, bestScore, nil
}
