// Package voyage wraps the VoyageAI embedding API.
package voyage

import (
	"context"
	"fmt"

	"github.com/austinfhunter/voyageai"
)

// EmbeddingDimensions is the output dimensionality requested from the model.
const EmbeddingDimensions = 384

// EmbeddingModel is the default VoyageAI embedding model.
const EmbeddingModel = "voyage-3.5-lite"

// InputType hints the model whether the text is stored content or a query.
type InputType string

const (
	InputTypeDocument InputType = "document"
	InputTypeQuery    InputType = "query"
	InputTypeDefault  InputType = ""
)

// embedder is the slice of the VoyageAI client this service uses.
type embedder interface {
	Embed(input []string, model string, opts *voyageai.EmbeddingRequestOpts) (*voyageai.EmbeddingResponse, error)
}

// EmbeddingService handles generating embeddings for text.
type EmbeddingService struct {
	client     embedder
	dimensions int
	model      string
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(apiKey string) *EmbeddingService {
	return &EmbeddingService{
		client: voyageai.NewClient(&voyageai.VoyageClientOpts{
			Key: apiKey,
		}),
		dimensions: EmbeddingDimensions,
		model:      EmbeddingModel,
	}
}

// SetDimensions overrides the requested output dimensionality.
func (es *EmbeddingService) SetDimensions(dimensions int) {
	es.dimensions = dimensions
}

// SetModel overrides the embedding model.
func (es *EmbeddingService) SetModel(model string) {
	es.model = model
}

// Dimensions returns the configured output dimensionality.
func (es *EmbeddingService) Dimensions() int {
	return es.dimensions
}

// GenerateEmbedding generates an embedding for a single text.
func (es *EmbeddingService) GenerateEmbedding(ctx context.Context, text string, inputType InputType) ([]float32, error) {
	embeddings, err := es.GenerateEmbeddings(ctx, []string{text}, inputType)
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// GenerateEmbeddings generates embeddings for multiple texts in one request.
// The result is ordered like the input.
func (es *EmbeddingService) GenerateEmbeddings(ctx context.Context, texts []string, inputType InputType) ([][]float32, error) {
	dimensions := es.dimensions

	resp, err := es.client.Embed(
		texts,
		es.model,
		&voyageai.EmbeddingRequestOpts{
			InputType:       parseInputType(inputType),
			OutputDimension: &dimensions,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("could not get embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("voyage returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for i, obj := range resp.Data {
		out[i] = obj.Embedding
	}
	return out, nil
}

func parseInputType(inputType InputType) *string {
	if inputType != InputTypeDefault {
		value := string(inputType)
		return &value
	}
	return nil
}
