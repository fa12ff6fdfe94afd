// Package pinecone wraps the official Pinecone SDK behind small, mockable
// service and index gateways.
package pinecone

import (
	"context"
	"errors"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// NewPineconeService creates a new Pinecone service instance using the
// official SDK.
func NewPineconeService(apiKey string) (*Service, error) {
	if apiKey == "" {
		return nil, errors.New("pinecone api key is required")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pinecone client: %w", err)
	}

	return &Service{client: client}, nil
}

// ForIndex returns an index gateway for the given host and namespace.
func (ps *Service) ForIndex(host, namespace string) (*Index, error) {
	if host == "" {
		return nil, errors.New("pinecone index host is required")
	}

	conn, err := ps.client.Index(pinecone.NewIndexConnParams{
		Host:      host,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone index: %w", err)
	}

	return &Index{index: conn}, nil
}

// Search performs a vector similarity search in the index.
func (idx *Index) Search(ctx context.Context, queryVector []float32, topK int, filter map[string]any, includeMetadata bool) ([]QueryMatch, error) {
	metadataFilter, err := structpb.NewStruct(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata map: %v", err)
	}

	resp, err := idx.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryVector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: includeMetadata,
		MetadataFilter:  metadataFilter,
	})
	if err != nil {
		return nil, err
	}

	matches := make([]QueryMatch, len(resp.Matches))
	for i, match := range resp.Matches {
		matches[i] = *match
	}
	return matches, nil
}

// Upsert stores vectors in the index.
func (idx *Index) Upsert(ctx context.Context, vectors []Vector) error {
	pineconeVectors := make([]*pinecone.Vector, len(vectors))
	for i := range vectors {
		pineconeVectors[i] = &vectors[i]
	}

	_, err := idx.index.UpsertVectors(ctx, pineconeVectors)
	return err
}
