// Package prototype builds one reference embedding per emotion level from a
// synonym vocabulary. The resulting Bank is read-only after construction and
// is shared by every stage of the classification pipeline.
package prototype

import (
	"context"
	"fmt"

	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/internal/vectormath"
)

// DefaultMaxPhrases caps how many phrases per level contribute to a
// prototype. Truncation is deterministic (first N in vocabulary order) so
// rebuilding from the same vocabulary always yields the same bank.
const DefaultMaxPhrases = 100

// Encoder turns a phrase into an embedding vector.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Prototype is the reference embedding for one emotion level: the normalized
// mean of the level's encoded synonym phrases.
type Prototype struct {
	Level  emotion.Level
	Vector []float32
}

// Bank maps each emotion level to its prototype. A complete bank holds
// exactly one prototype per level.
type Bank map[emotion.Level]Prototype

// Levels returns the bank's levels in ascending intensity order.
func (b Bank) Levels() []emotion.Level {
	out := make([]emotion.Level, 0, len(b))
	for _, lvl := range emotion.Levels() {
		if _, ok := b[lvl]; ok {
			out = append(out, lvl)
		}
	}
	return out
}

// Dimension returns the embedding dimension of the bank, or 0 if empty.
func (b Bank) Dimension() int {
	for _, lvl := range emotion.Levels() {
		if p, ok := b[lvl]; ok {
			return len(p.Vector)
		}
	}
	return 0
}

// EmptyVocabularyError reports a level that has no phrases to build a
// prototype from.
type EmptyVocabularyError struct {
	Level emotion.Level
}

func (e *EmptyVocabularyError) Error() string {
	return fmt.Sprintf("no vocabulary phrases for emotion level %q", e.Level.Label())
}

// Options configures prototype construction.
type Options struct {
	// MaxPhrases caps phrases per level. Zero means DefaultMaxPhrases.
	MaxPhrases int
}

func (o *Options) applyDefaults() {
	if o.MaxPhrases <= 0 {
		o.MaxPhrases = DefaultMaxPhrases
	}
}

// Build encodes each level's phrases and averages them into a prototype.
// Levels are processed in intensity order and phrases are truncated, never
// sampled, so the result is reproducible for a fixed vocabulary and encoder.
//
// Returns an EmptyVocabularyError if any level in the vocabulary map has zero
// phrases; no partial bank is returned.
func Build(ctx context.Context, vocab map[emotion.Level][]string, enc Encoder, opts Options) (Bank, error) {
	opts.applyDefaults()

	bank := make(Bank, len(vocab))
	dim := 0

	for _, lvl := range emotion.Levels() {
		phrases, ok := vocab[lvl]
		if !ok {
			continue
		}
		if len(phrases) == 0 {
			return nil, &EmptyVocabularyError{Level: lvl}
		}
		if len(phrases) > opts.MaxPhrases {
			phrases = phrases[:opts.MaxPhrases]
		}

		vectors := make([][]float32, 0, len(phrases))
		for _, phrase := range phrases {
			vec, err := enc.Encode(ctx, phrase)
			if err != nil {
				return nil, fmt.Errorf("encode phrase %q for level %s: %w", phrase, lvl, err)
			}
			if dim == 0 {
				dim = len(vec)
			} else if len(vec) != dim {
				return nil, fmt.Errorf("phrase %q for level %s: %w", phrase, lvl, vectormath.ErrDimensionMismatch)
			}
			vectors = append(vectors, vec)
		}

		mean, err := vectormath.Mean(vectors)
		if err != nil {
			return nil, fmt.Errorf("average prototypes for level %s: %w", lvl, err)
		}
		bank[lvl] = Prototype{Level: lvl, Vector: vectormath.Normalize(mean)}
	}

	if len(bank) == 0 {
		return nil, fmt.Errorf("vocabulary contains no emotion levels")
	}
	return bank, nil
}
