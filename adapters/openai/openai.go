// Package openai is a minimal client for the OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/signalhaze/vibemap/internal/retry"
)

const openaiBaseURL = "https://api.openai.com/v1"

// DefaultModel is the embedding model used unless overridden.
const DefaultModel = "text-embedding-3-small"

// DefaultDimensions is the output dimensionality requested from the model.
const DefaultDimensions = 384

// Client calls the OpenAI embeddings endpoint with retry logic.
type Client struct {
	APIKey      string
	BaseURL     string
	Model       string
	Dimensions  int
	HTTPClient  *http.Client
	RetryConfig retry.Config
	Log         *zap.Logger
}

// NewClient creates a new embeddings client.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:      apiKey,
		BaseURL:     openaiBaseURL,
		Model:       DefaultModel,
		Dimensions:  DefaultDimensions,
		HTTPClient:  http.DefaultClient,
		RetryConfig: retry.DefaultConfig(),
		Log:         zap.NewNop(),
	}
}

// SetBaseURL overrides the API base URL. Useful for tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.BaseURL = baseURL
}

// Embeddings returns one embedding per input text, ordered like the input.
func (c *Client) Embeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := EmbeddingRequest{
		Model:      c.Model,
		Input:      texts,
		Dimensions: c.Dimensions,
	}

	bodyBytes, err := c.createAndRunRetryableRequest(ctx, c.BaseURL+"/embeddings", req)
	if err != nil {
		return nil, err
	}

	var resp EmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &resp); err != nil {
		return nil, &EmbeddingError{
			Message: fmt.Sprintf("failed to parse embeddings response: %v", err),
			RawBody: json.RawMessage(bodyBytes),
		}
	}

	// The API tags each object with its input index; order by it rather
	// than trusting response order.
	out := make([][]float32, len(texts))
	for _, obj := range resp.Data {
		if obj.Index < 0 || obj.Index >= len(texts) {
			return nil, &EmbeddingError{
				Message: fmt.Sprintf("embedding index %d out of range for %d inputs", obj.Index, len(texts)),
				RawBody: json.RawMessage(bodyBytes),
			}
		}
		out[obj.Index] = obj.Embedding
	}
	for i, emb := range out {
		if emb == nil {
			return nil, &EmbeddingError{
				Message: fmt.Sprintf("no embedding returned for input %d", i),
				RawBody: json.RawMessage(bodyBytes),
			}
		}
	}
	return out, nil
}

// isRetryableError determines if an error should trigger a retry.
func (c *Client) isRetryableError(err error, statusCode int, responseBody []byte) bool {
	// Network errors.
	if err != nil {
		return true
	}
	// Server errors and rate limiting.
	if statusCode >= 500 || statusCode == 429 {
		return true
	}
	return false
}

// createAndRunRetryableRequest executes an HTTP request with retry logic.
func (c *Client) createAndRunRetryableRequest(ctx context.Context, url string, requestBody any) ([]byte, error) {
	opts := retry.Options{
		Config:       c.RetryConfig,
		ErrorChecker: c.isRetryableError,
		Logger:       c.Log.Sugar().Infof,
		APIName:      "OpenAI embeddings",
	}

	result, err := retry.Execute(ctx, opts, c.buildRetryableFn(ctx, url, requestBody))
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Client) buildRetryableFn(ctx context.Context, url string, requestBody any) retry.RetryableFunc {
	return func(attempt int) (any, int, []byte, error) {
		body, err := json.Marshal(requestBody)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to marshal embeddings request: %w", err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTPClient.Do(httpReq)
		if err != nil {
			return nil, 0, nil, err
		}
		defer resp.Body.Close()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, nil, fmt.Errorf("failed to read embeddings response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			message := fmt.Sprintf("openai embeddings API error %d", resp.StatusCode)
			var envelope apiErrorEnvelope
			if json.Unmarshal(bodyBytes, &envelope) == nil && envelope.Error.Message != "" {
				message = fmt.Sprintf("%s: %s", message, envelope.Error.Message)
			}
			return nil, resp.StatusCode, bodyBytes, &EmbeddingError{
				Message:    message,
				StatusCode: resp.StatusCode,
				RawBody:    json.RawMessage(bodyBytes),
			}
		}

		return bodyBytes, resp.StatusCode, bodyBytes, nil
	}
}
