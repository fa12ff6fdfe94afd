package prototype

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalhaze/vibemap/emotion"
	"github.com/signalhaze/vibemap/internal/vectormath"
)

// stubEncoder returns fixed vectors per phrase and counts calls.
type stubEncoder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (s *stubEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func TestBuildAveragesAndNormalizes(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"happy": {2, 0, 0},
		"glad":  {0, 2, 0},
	}}
	vocab := map[emotion.Level][]string{
		emotion.Happy: {"happy", "glad"},
	}

	bank, err := Build(context.Background(), vocab, enc, Options{})
	require.NoError(t, err)
	require.Len(t, bank, 1)

	p := bank[emotion.Happy]
	assert.Equal(t, emotion.Happy, p.Level)
	// Mean of (2,0,0) and (0,2,0) is (1,1,0); normalized to (1/sqrt2, 1/sqrt2, 0).
	assert.InDelta(t, 1.0, vectormath.Norm(p.Vector), 1e-6)
	assert.InDelta(t, float64(p.Vector[0]), float64(p.Vector[1]), 1e-6)
	assert.InDelta(t, 0, float64(p.Vector[2]), 1e-6)
}

func TestBuildEmptyVocabularyLevel(t *testing.T) {
	enc := &stubEncoder{}
	vocab := map[emotion.Level][]string{
		emotion.Happy:   {"happy"},
		emotion.Neutral: {},
	}

	bank, err := Build(context.Background(), vocab, enc, Options{})
	require.Error(t, err)
	assert.Nil(t, bank, "no partial bank on error")

	var emptyErr *EmptyVocabularyError
	require.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, emotion.Neutral, emptyErr.Level)
}

func TestBuildTruncatesDeterministically(t *testing.T) {
	phrases := make([]string, 20)
	for i := range phrases {
		phrases[i] = fmt.Sprintf("phrase-%02d", i)
	}
	enc := &stubEncoder{}
	vocab := map[emotion.Level][]string{emotion.Content: phrases}

	_, err := Build(context.Background(), vocab, enc, Options{MaxPhrases: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, enc.calls, "only the first MaxPhrases phrases are encoded")
}

func TestBuildEncoderError(t *testing.T) {
	enc := &stubEncoder{err: errors.New("boom")}
	vocab := map[emotion.Level][]string{emotion.Happy: {"happy"}}

	_, err := Build(context.Background(), vocab, enc, Options{})
	assert.ErrorContains(t, err, "boom")
}

func TestBuildDimensionMismatch(t *testing.T) {
	enc := &stubEncoder{vectors: map[string][]float32{
		"a": {1, 0, 0},
		"b": {1, 0},
	}}
	vocab := map[emotion.Level][]string{emotion.Happy: {"a", "b"}}

	_, err := Build(context.Background(), vocab, enc, Options{})
	assert.ErrorIs(t, err, vectormath.ErrDimensionMismatch)
}

func TestBankLevelsAndDimension(t *testing.T) {
	bank := Bank{
		emotion.Ecstatic:  {Level: emotion.Ecstatic, Vector: []float32{0, 1}},
		emotion.VeryUpset: {Level: emotion.VeryUpset, Vector: []float32{1, 0}},
	}
	assert.Equal(t, []emotion.Level{emotion.VeryUpset, emotion.Ecstatic}, bank.Levels())
	assert.Equal(t, 2, bank.Dimension())
	assert.Zero(t, Bank{}.Dimension())
}
