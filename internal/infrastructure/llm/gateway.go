package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"PaperDigest/internal/config"
	"PaperDigest/internal/ports"
)

// GatewayClient talks to the internal LLM gateway service.
type GatewayClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

var _ ports.Backend = (*GatewayClient)(nil)

// NewGatewayClient posts to <url>/v1/chat.
func NewGatewayClient(cfg config.GatewayConfig, httpClient *http.Client) *GatewayClient {
	return &GatewayClient{
		endpoint:   strings.TrimSuffix(cfg.URL, "/") + "/v1/chat",
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: httpClient,
	}
}

// Name identifies the backend in logs.
func (c *GatewayClient) Name() string {
	return config.BackendGateway
}

// Submit reads the reply from result.message.content.
func (c *GatewayClient) Submit(ctx context.Context, title, text string) (string, error) {
	payload := map[string]any{
		"model":       c.model,
		"messages":    chatMessages(title, text),
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"X-API-Key": c.apiKey}
	}

	var resp struct {
		Result struct {
			Message chatMessage `json:"message"`
		} `json:"result"`
	}
	if err := postJSON(ctx, c.httpClient, c.endpoint, headers, payload, &resp); err != nil {
		return "", fmt.Errorf("gateway: %w", err)
	}

	return cleanReply(resp.Result.Message.Content)
}
