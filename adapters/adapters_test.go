package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	vibemap "github.com/signalhaze/vibemap"
	"github.com/signalhaze/vibemap/adapters/pinecone"
	"github.com/signalhaze/vibemap/adapters/voyage"
	"github.com/signalhaze/vibemap/emotion"
)

var (
	_ vibemap.Encoder   = (*VoyageEncoderAdapter)(nil)
	_ vibemap.Encoder   = (*OpenAIEncoderAdapter)(nil)
	_ vibemap.ItemStore = (*PineconeItemStoreAdapter)(nil)
)

type mockVoyageClient struct {
	embedFunc func(ctx context.Context, text string, inputType voyage.InputType) ([]float32, error)
}

func (m *mockVoyageClient) GenerateEmbedding(ctx context.Context, text string, inputType voyage.InputType) ([]float32, error) {
	return m.embedFunc(ctx, text, inputType)
}

type mockOpenAIClient struct {
	embeddingsFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockOpenAIClient) Embeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return m.embeddingsFunc(ctx, texts)
}

type mockIndex struct {
	searchFunc func(ctx context.Context, queryVector []float32, topK int, filter map[string]any, includeMetadata bool) ([]pinecone.QueryMatch, error)
	upsertFunc func(ctx context.Context, vectors []pinecone.Vector) error
}

func (m *mockIndex) Search(ctx context.Context, queryVector []float32, topK int, filter map[string]any, includeMetadata bool) ([]pinecone.QueryMatch, error) {
	return m.searchFunc(ctx, queryVector, topK, filter, includeMetadata)
}

func (m *mockIndex) Upsert(ctx context.Context, vectors []pinecone.Vector) error {
	return m.upsertFunc(ctx, vectors)
}

func TestVoyageEncoderAdapterEncodesAsDocument(t *testing.T) {
	var gotText string
	var gotType voyage.InputType

	adapter := &VoyageEncoderAdapter{
		client: &mockVoyageClient{
			embedFunc: func(ctx context.Context, text string, inputType voyage.InputType) ([]float32, error) {
				gotText = text
				gotType = inputType
				return []float32{0.1, 0.2}, nil
			},
		},
	}

	vec, err := adapter.Encode(context.Background(), "feeling great today")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vec)
	assert.Equal(t, "feeling great today", gotText)
	assert.Equal(t, voyage.InputTypeDocument, gotType)
}

func TestOpenAIEncoderAdapterReturnsFirstEmbedding(t *testing.T) {
	adapter := &OpenAIEncoderAdapter{
		client: &mockOpenAIClient{
			embeddingsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				require.Equal(t, []string{"hello"}, texts)
				return [][]float32{{0.3, 0.4}}, nil
			},
		},
	}

	vec, err := adapter.Encode(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.3, 0.4}, vec)
}

func TestOpenAIEncoderAdapterPropagatesErrors(t *testing.T) {
	wantErr := errors.New("rate limited")
	adapter := &OpenAIEncoderAdapter{
		client: &mockOpenAIClient{
			embeddingsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, wantErr
			},
		},
	}

	_, err := adapter.Encode(context.Background(), "hello")
	assert.ErrorIs(t, err, wantErr)
}

func TestPineconeItemStoreAdapterUpsertsMetadata(t *testing.T) {
	var got []pinecone.Vector
	adapter := &PineconeItemStoreAdapter{
		index: &mockIndex{
			upsertFunc: func(ctx context.Context, vectors []pinecone.Vector) error {
				got = vectors
				return nil
			},
		},
	}

	item := vibemap.Item{
		ID:        "tweet-42",
		Vector:    []float32{0.5, 0.5},
		Text:      "what a day",
		Username:  "ada",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	fields := vibemap.EmotionFields{
		Level:      emotion.Happy,
		Confidence: 0.91,
		Color:      emotion.Happy.Color(),
	}

	require.NoError(t, adapter.UpsertEmotion(context.Background(), item, fields))
	require.Len(t, got, 1)

	vec := got[0]
	assert.Equal(t, "tweet-42", vec.Id)
	assert.Equal(t, []float32{0.5, 0.5}, vec.Values)

	require.NotNil(t, vec.Metadata)
	meta := vec.Metadata.AsMap()
	assert.Equal(t, emotion.Happy.Label(), meta["label"])
	assert.Equal(t, emotion.Happy.Color(), meta["color"])
	assert.InDelta(t, 0.91, meta["confidence"], 1e-9)
	assert.Equal(t, "what a day", meta["text"])
	assert.Equal(t, "ada", meta["username"])
	assert.Equal(t, "Tweet by ada at 2024-03-01T12:00:00Z", meta["title"])
	assert.Equal(t, "2024-03-01T12:00:00Z", meta["timestamp"])
}

func TestPineconeItemStoreAdapterOmitsZeroTimestamp(t *testing.T) {
	var got []pinecone.Vector
	adapter := &PineconeItemStoreAdapter{
		index: &mockIndex{
			upsertFunc: func(ctx context.Context, vectors []pinecone.Vector) error {
				got = vectors
				return nil
			},
		},
	}

	item := vibemap.Item{ID: "tweet-1", Vector: []float32{1}}
	require.NoError(t, adapter.UpsertEmotion(context.Background(), item, vibemap.EmotionFields{}))

	meta := got[0].Metadata.AsMap()
	_, ok := meta["timestamp"]
	assert.False(t, ok)
}

func TestPineconeItemStoreAdapterPropagatesUpsertErrors(t *testing.T) {
	wantErr := errors.New("index unavailable")
	adapter := &PineconeItemStoreAdapter{
		index: &mockIndex{
			upsertFunc: func(ctx context.Context, vectors []pinecone.Vector) error {
				return wantErr
			},
		},
	}

	err := adapter.UpsertEmotion(context.Background(), vibemap.Item{ID: "x"}, vibemap.EmotionFields{})
	assert.ErrorIs(t, err, wantErr)
}

func TestPineconeItemStoreAdapterNeighbors(t *testing.T) {
	meta, err := structpb.NewStruct(map[string]any{
		"label": emotion.Happy.Label(),
		"color": emotion.Happy.Color(),
	})
	require.NoError(t, err)

	var gotVector []float32
	var gotTopK int
	var gotIncludeMetadata bool

	adapter := &PineconeItemStoreAdapter{
		index: &mockIndex{
			searchFunc: func(ctx context.Context, queryVector []float32, topK int, filter map[string]any, includeMetadata bool) ([]pinecone.QueryMatch, error) {
				gotVector = queryVector
				gotTopK = topK
				gotIncludeMetadata = includeMetadata
				return []pinecone.QueryMatch{
					{
						Vector: &pinecone.Vector{
							Id:       "tweet-7",
							Metadata: &pinecone.Metadata{Fields: meta.Fields},
						},
						Score: 0.92,
					},
					{
						// No metadata on this match.
						Vector: &pinecone.Vector{Id: "tweet-8"},
						Score:  0.81,
					},
				}, nil
			},
		},
	}

	neighbors, err := adapter.Neighbors(context.Background(), []float32{0.1, 0.9}, 2)
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.9}, gotVector)
	assert.Equal(t, 2, gotTopK)
	assert.True(t, gotIncludeMetadata, "neighbor lookups need the stored metadata")

	require.Len(t, neighbors, 2)
	assert.Equal(t, "tweet-7", neighbors[0].ID)
	assert.InDelta(t, 0.92, neighbors[0].Score, 1e-6)
	assert.Equal(t, emotion.Happy.Label(), neighbors[0].Metadata["label"])
	assert.Equal(t, emotion.Happy.Color(), neighbors[0].Metadata["color"])

	assert.Equal(t, "tweet-8", neighbors[1].ID)
	assert.Empty(t, neighbors[1].Metadata)
}

func TestPineconeItemStoreAdapterNeighborsPropagatesErrors(t *testing.T) {
	wantErr := errors.New("query failed")
	adapter := &PineconeItemStoreAdapter{
		index: &mockIndex{
			searchFunc: func(ctx context.Context, queryVector []float32, topK int, filter map[string]any, includeMetadata bool) ([]pinecone.QueryMatch, error) {
				return nil, wantErr
			},
		},
	}

	_, err := adapter.Neighbors(context.Background(), []float32{1}, 5)
	assert.ErrorIs(t, err, wantErr)
}

func TestLoadEnvVarPrefersExplicitValue(t *testing.T) {
	t.Setenv("VIBEMAP_TEST_KEY", "from-env")

	explicit := "explicit"
	got, err := loadEnvVar(&explicit, "VIBEMAP_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "explicit", *got)
}

func TestLoadEnvVarFallsBackToEnvironment(t *testing.T) {
	t.Setenv("VIBEMAP_TEST_KEY", "from-env")

	got, err := loadEnvVar(nil, "VIBEMAP_TEST_KEY")
	require.NoError(t, err)
	assert.Equal(t, "from-env", *got)
}

func TestLoadEnvVarErrorsWhenUnset(t *testing.T) {
	t.Setenv("VIBEMAP_TEST_KEY", "")

	_, err := loadEnvVar(nil, "VIBEMAP_TEST_KEY")
	assert.Error(t, err)
}
