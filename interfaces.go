package vibemap

import (
	"context"

	"github.com/signalhaze/vibemap/emotion"
)

// Encoder generates vector embeddings for text. It is only needed at
// prototype-build time; items arrive pre-encoded.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// EmotionFields are the values the assigner persists per item.
type EmotionFields struct {
	Level      emotion.Level
	Confidence float64
	Color      string
}

// ItemStore persists per-item emotion fields keyed by item identity.
type ItemStore interface {
	UpsertEmotion(ctx context.Context, item Item, fields EmotionFields) error
}
