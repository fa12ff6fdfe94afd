package openai

import "encoding/json"

// EmbeddingRequest is the request body for the embeddings endpoint.
type EmbeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
	User           string   `json:"user,omitempty"`
}

type EmbeddingObject struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// EmbeddingResponse is the response body from the embeddings endpoint.
type EmbeddingResponse struct {
	Object string            `json:"object"`
	Data   []EmbeddingObject `json:"data"`
	Model  string            `json:"model"`
	Usage  EmbeddingUsage    `json:"usage"`
}

type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type apiErrorEnvelope struct {
	Error apiErrorBody `json:"error"`
}

// EmbeddingError wraps a failed embeddings call with the raw response body
// for error logging.
type EmbeddingError struct {
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
	RawBody    json.RawMessage `json:"raw_body,omitempty"`
}

func (e *EmbeddingError) Error() string {
	return e.Message
}

// GetRawResponseBody returns the raw response body if available.
func (e *EmbeddingError) GetRawResponseBody() json.RawMessage {
	return e.RawBody
}
