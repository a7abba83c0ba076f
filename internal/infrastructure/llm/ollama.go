package llm

import (
	"context"
	"fmt"
	"net/http"

	"PaperDigest/internal/config"
	"PaperDigest/internal/ports"
)

// OllamaClient calls the /api/chat endpoint of an Ollama server.
type OllamaClient struct {
	endpoint   string
	model      string
	httpClient *http.Client
}

var _ ports.Backend = (*OllamaClient)(nil)

// NewOllamaClient uses cfg.URL as the full chat endpoint.
func NewOllamaClient(cfg config.OllamaConfig, httpClient *http.Client) *OllamaClient {
	return &OllamaClient{endpoint: cfg.URL, model: cfg.Model, httpClient: httpClient}
}

// Name identifies the backend in logs.
func (c *OllamaClient) Name() string {
	return config.BackendOllama
}

// Submit sends a non-streaming chat request and reads message.content.
func (c *OllamaClient) Submit(ctx context.Context, title, text string) (string, error) {
	payload := map[string]any{
		"model":    c.model,
		"messages": chatMessages(title, text),
		"stream":   false,
	}

	var resp struct {
		Message chatMessage `json:"message"`
	}
	if err := postJSON(ctx, c.httpClient, c.endpoint, nil, payload, &resp); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}

	return cleanReply(resp.Message.Content)
}
