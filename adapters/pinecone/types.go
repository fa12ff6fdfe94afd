package pinecone

import "github.com/pinecone-io/go-pinecone/pinecone"

// Service is a thin gateway over the official Pinecone client.
type Service struct {
	client *pinecone.Client
}

// Index wraps one index connection.
type Index struct {
	index *pinecone.IndexConnection
}

// Vector re-exports the SDK vector type.
type Vector = pinecone.Vector

// QueryMatch re-exports the SDK scored-match type.
type QueryMatch = pinecone.ScoredVector

// Metadata re-exports the SDK metadata type.
type Metadata = pinecone.Metadata
