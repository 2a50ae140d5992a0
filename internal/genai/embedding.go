package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// GeminiEmbeddingModel is the model used for generating embeddings
	GeminiEmbeddingModel = "gemini-embedding-001"

	// GeminiEmbeddingDimensions is the output dimension
	GeminiEmbeddingDimensions = 768

	geminiAPIBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	embeddingMaxRetries   = 3
	embeddingInitialDelay = time.Second
	embeddingMaxDelay     = 5 * time.Second
)

// EmbeddingClient generates embedding vectors via the Gemini embedding API.
type EmbeddingClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewEmbeddingClient creates a new Gemini embedding client.
func NewEmbeddingClient(apiKey string) *EmbeddingClient {
	return &EmbeddingClient{
		apiKey:  apiKey,
		baseURL: geminiAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type embeddingRequest struct {
	Model                string           `json:"model"`
	Content              embeddingContent `json:"content"`
	OutputDimensionality int              `json:"outputDimensionality,omitempty"`
}

type embeddingContent struct {
	Parts []embeddingPart `json:"parts"`
}

type embeddingPart struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Embed generates an embedding vector for the given text.
// Transient errors (429, 5xx) are retried with Full Jitter backoff; callers
// treat any returned error as zero relevance signal, not a fatal failure.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if c == nil || c.apiKey == "" {
		return nil, fmt.Errorf("embedding client not configured")
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text cannot be embedded")
	}

	var lastErr error
	for attempt := 0; attempt <= embeddingMaxRetries; attempt++ {
		if attempt > 0 {
			delay := CalculateBackoff(attempt, embeddingInitialDelay, embeddingMaxDelay)
			if err := Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		values, retryable, err := c.embedOnce(ctx, text)
		if err == nil {
			return values, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, lastErr
}

// embedOnce performs a single embedding API call.
func (c *EmbeddingClient) embedOnce(ctx context.Context, text string) ([]float32, bool, error) {
	reqBody := embeddingRequest{
		Model:                "models/" + GeminiEmbeddingModel,
		Content:              embeddingContent{Parts: []embeddingPart{{Text: text}}},
		OutputDimensionality: GeminiEmbeddingDimensions,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:embedContent", c.baseURL, GeminiEmbeddingModel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("embedding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, false, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if result.Error != nil {
		return nil, false, fmt.Errorf("embedding API error %d: %s", result.Error.Code, result.Error.Message)
	}
	if len(result.Embedding.Values) == 0 {
		return nil, false, fmt.Errorf("embedding response contained no values")
	}

	return result.Embedding.Values, false, nil
}
