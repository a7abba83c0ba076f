package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"PaperDigest/internal/config"
	"PaperDigest/internal/ports"
)

var errMissingAPIKey = errors.New("openai api key is not set")

// OpenAIClient uses the hosted chat-completion API via go-openai.
type OpenAIClient struct {
	inner *openai.Client
	model string
	ready bool
}

var _ ports.Backend = (*OpenAIClient)(nil)

// NewOpenAIClient configures the SDK; an empty BaseURL keeps the SDK default.
func NewOpenAIClient(cfg config.OpenAIConfig, httpClient *http.Client) *OpenAIClient {
	sdkCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		sdkCfg.HTTPClient = httpClient
	}
	return &OpenAIClient{
		inner: openai.NewClientWithConfig(sdkCfg),
		model: cfg.Model,
		ready: cfg.APIKey != "",
	}
}

// Name identifies the backend in logs.
func (c *OpenAIClient) Name() string {
	return config.BackendOpenAI
}

// Submit creates one chat completion and returns the first choice.
func (c *OpenAIClient) Submit(ctx context.Context, title, text string) (string, error) {
	if !c.ready {
		return "", fmt.Errorf("openai: %w", errMissingAPIKey)
	}

	resp, err := c.inner.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(title, text)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", errEmptyReply)
	}

	return cleanReply(resp.Choices[0].Message.Content)
}
