// Package adapters binds the external API clients to the interfaces the
// pipeline consumes.
package adapters

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	vibemap "github.com/signalhaze/vibemap"
	"github.com/signalhaze/vibemap/adapters/openai"
	"github.com/signalhaze/vibemap/adapters/pinecone"
	"github.com/signalhaze/vibemap/adapters/voyage"
)

// VoyageEncoderAdapter adapts the Voyage client to the Encoder interface.
type VoyageEncoderAdapter struct {
	client interface {
		GenerateEmbedding(ctx context.Context, text string, inputType voyage.InputType) ([]float32, error)
	}
}

// NewVoyageEncoderAdapter creates a new adapter for Voyage AI.
func NewVoyageEncoderAdapter(apiKey *string) (*VoyageEncoderAdapter, error) {
	key, err := loadEnvVar(apiKey, "VOYAGEAI_API_KEY")
	if err != nil {
		return nil, err
	}

	return &VoyageEncoderAdapter{
		client: voyage.NewEmbeddingService(*key),
	}, nil
}

// Encode implements the Encoder interface.
func (a *VoyageEncoderAdapter) Encode(ctx context.Context, text string) ([]float32, error) {
	return a.client.GenerateEmbedding(ctx, text, voyage.InputTypeDocument)
}

// OpenAIEncoderAdapter adapts the OpenAI embeddings client to the Encoder
// interface.
type OpenAIEncoderAdapter struct {
	client interface {
		Embeddings(ctx context.Context, texts []string) ([][]float32, error)
	}
}

// NewOpenAIEncoderAdapter creates a new adapter for OpenAI embeddings.
func NewOpenAIEncoderAdapter(apiKey *string) (*OpenAIEncoderAdapter, error) {
	key, err := loadEnvVar(apiKey, "OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	return &OpenAIEncoderAdapter{
		client: openai.NewClient(*key),
	}, nil
}

// Encode implements the Encoder interface.
func (a *OpenAIEncoderAdapter) Encode(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := a.client.Embeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// PineconeItemStoreAdapter persists emotion fields as vector metadata in a
// Pinecone index and answers similarity lookups over the stored items.
type PineconeItemStoreAdapter struct {
	index interface {
		Search(ctx context.Context, queryVector []float32, topK int, filter map[string]any, includeMetadata bool) ([]pinecone.QueryMatch, error)
		Upsert(ctx context.Context, vectors []pinecone.Vector) error
	}
}

// Neighbor is one stored item returned from a similarity lookup.
type Neighbor struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// NewPineconeItemStoreAdapter creates a new adapter for Pinecone.
func NewPineconeItemStoreAdapter(apiKey, host *string, namespace string) (*PineconeItemStoreAdapter, error) {
	key, err := loadEnvVar(apiKey, "PINECONE_API_KEY")
	if err != nil {
		return nil, err
	}

	h, err := loadEnvVar(host, "PINECONE_HOST")
	if err != nil {
		return nil, err
	}

	service, err := pinecone.NewPineconeService(*key)
	if err != nil {
		return nil, fmt.Errorf("failed to create pinecone service: %w", err)
	}

	index, err := service.ForIndex(*h, namespace)
	if err != nil {
		return nil, err
	}

	return &PineconeItemStoreAdapter{index: index}, nil
}

// UpsertEmotion implements the ItemStore interface. The full embedding is
// re-upserted alongside the emotion metadata so the record stays queryable
// by similarity.
func (a *PineconeItemStoreAdapter) UpsertEmotion(ctx context.Context, item vibemap.Item, fields vibemap.EmotionFields) error {
	metadata := map[string]any{
		"label":      fields.Level.Label(),
		"confidence": fields.Confidence,
		"color":      fields.Color,
		"text":       item.Text,
		"username":   item.Username,
		"title":      item.Title(),
	}
	if !item.Timestamp.IsZero() {
		metadata["timestamp"] = item.Timestamp.Format(time.RFC3339)
	}

	metadataStruct, err := structpb.NewStruct(metadata)
	if err != nil {
		return fmt.Errorf("failed to build metadata for item %s: %w", item.ID, err)
	}

	return a.index.Upsert(ctx, []pinecone.Vector{
		{
			Id:     item.ID,
			Values: item.Vector,
			Metadata: &pinecone.Metadata{
				Fields: metadataStruct.Fields,
			},
		},
	})
}

// Neighbors returns the topK stored items most similar to vector, with the
// emotion metadata written by UpsertEmotion. The visualization layer uses it
// to populate the hover payload around a selected point.
func (a *PineconeItemStoreAdapter) Neighbors(ctx context.Context, vector []float32, topK int) ([]Neighbor, error) {
	matches, err := a.index.Search(ctx, vector, topK, nil, true)
	if err != nil {
		return nil, err
	}

	neighbors := make([]Neighbor, len(matches))
	for i, match := range matches {
		metadata := make(map[string]any)
		if match.Vector != nil && match.Vector.Metadata != nil {
			metadata = match.Vector.Metadata.AsMap()
		}
		neighbors[i] = Neighbor{
			ID:       match.Vector.Id,
			Score:    match.Score,
			Metadata: metadata,
		}
	}
	return neighbors, nil
}

// loadEnvVar loads an environment variable into a pointer if no value is
// provided.
func loadEnvVar(target *string, envKey string) (*string, error) {
	if target == nil {
		envVar := os.Getenv(envKey)
		if envVar == "" {
			return nil, fmt.Errorf("%s environment variable not set and no value provided", envKey)
		}
		return &envVar, nil
	}
	return target, nil
}
