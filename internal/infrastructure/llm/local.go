package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"PaperDigest/internal/config"
	"PaperDigest/internal/ports"
)

// LocalClient talks to an LM Studio style OpenAI-compatible server.
type LocalClient struct {
	endpoint   string
	httpClient *http.Client
}

var _ ports.Backend = (*LocalClient)(nil)

// NewLocalClient builds a client posting to <baseUrl>/chat/completions.
func NewLocalClient(cfg config.LocalConfig, httpClient *http.Client) *LocalClient {
	return &LocalClient{
		endpoint:   strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		httpClient: httpClient,
	}
}

// Name identifies the backend in logs.
func (c *LocalClient) Name() string {
	return config.BackendLocal
}

// Submit requests a summary and reads choices[0].message.content.
func (c *LocalClient) Submit(ctx context.Context, title, text string) (string, error) {
	payload := map[string]any{
		"messages":    chatMessages(title, text),
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := postJSON(ctx, c.httpClient, c.endpoint, nil, payload, &resp); err != nil {
		return "", fmt.Errorf("local llm: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("local llm: %w", errEmptyReply)
	}

	return cleanReply(resp.Choices[0].Message.Content)
}
