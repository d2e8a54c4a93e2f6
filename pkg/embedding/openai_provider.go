package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type OpenAIProvider struct {
	apiKey    string
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

var _ EmbeddingProvider = &OpenAIProvider{}

// NewOpenAIProvider embeds via the /v1/embeddings API. A non-zero dimension
// makes every returned vector's length part of the oracle contract.
func NewOpenAIProvider(apiKey, baseURL, model string, dimension int) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIProvider{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type openaiEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type openaiEmbeddingResponse struct {
	Data []openaiEmbeddingItem `json:"data"`
}

// GenerateBatch embeds all texts in one API call. The response items are
// placed back by their reported index, so the output order always matches
// the input order even if the oracle reorders internally.
func (p *OpenAIProvider) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	reqBody, err := json.Marshal(openaiEmbeddingRequest{
		Model: p.model,
		Input: texts,
	})
	if err != nil {
		return nil, &OracleError{Provider: "openai", Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/embeddings", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, &OracleError{Provider: "openai", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &OracleError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &OracleError{Provider: "openai", Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &OracleError{
			Provider: "openai",
			Err:      fmt.Errorf("status %d, body: %s", resp.StatusCode, string(bodyBytes)),
		}
	}

	var parsed openaiEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, &OracleError{Provider: "openai", Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if len(parsed.Data) != len(texts) {
		return nil, &OracleError{
			Provider: "openai",
			Err:      fmt.Errorf("expected %d embeddings, got %d", len(texts), len(parsed.Data)),
		}
	}

	vectors := make([][]float32, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, &OracleError{
				Provider: "openai",
				Err:      fmt.Errorf("embedding index %d out of range", item.Index),
			}
		}
		vectors[item.Index] = item.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, &OracleError{
				Provider: "openai",
				Err:      fmt.Errorf("missing embedding for input %d", i),
			}
		}
		if p.dimension > 0 && len(v) != p.dimension {
			return nil, &OracleError{
				Provider: "openai",
				Err:      fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), p.dimension),
			}
		}
	}

	return vectors, nil
}
