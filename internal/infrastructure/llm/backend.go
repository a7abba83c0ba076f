// Package llm holds the closed set of summarization backends.
package llm

import (
	"fmt"
	"net/http"

	"PaperDigest/internal/config"
	"PaperDigest/internal/ports"
)

// New returns the backend selected by cfg.Backend.
func New(cfg config.SummarizerConfig) (ports.Backend, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Backend {
	case config.BackendLocal:
		return NewLocalClient(cfg.Local, httpClient), nil
	case config.BackendGateway:
		return NewGatewayClient(cfg.Gateway, httpClient), nil
	case config.BackendOpenAI:
		return NewOpenAIClient(cfg.OpenAI, httpClient), nil
	case config.BackendOllama:
		return NewOllamaClient(cfg.Ollama, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
	}
}
