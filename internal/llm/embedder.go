package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/MmaoM0225/TradingAgents-M/internal/config"
)

// Embedder turns text into a vector for similarity search. Implementations
// must be deterministic for identical input within a session.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client *resty.Client
	model  string
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewOpenAIEmbedder builds the embeddings client. Embeddings always go to the
// OpenAI endpoint regardless of the chat provider, since DeepSeek does not
// serve an embeddings API.
func NewOpenAIEmbedder(cfg *config.Config) (*OpenAIEmbedder, error) {
	apiKey := cfg.OpenAIAPIKey
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for embeddings")
	}

	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetTimeout(30 * time.Second)
	client.SetAuthToken(apiKey)

	return &OpenAIEmbedder{
		client: client,
		model:  cfg.EmbeddingModel,
	}, nil
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	var out embeddingResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(embeddingRequest{Model: e.model, Input: []string{text}}).
		SetResult(&out).
		Post("/embeddings")
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return nil, fmt.Errorf("embedding request failed: %s", out.Error.Message)
		}
		return nil, fmt.Errorf("embedding request failed: status %d", resp.StatusCode())
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no vectors")
	}
	return out.Data[0].Embedding, nil
}
