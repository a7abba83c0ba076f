package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PaperDigest/internal/config"
)

type capturedRequest struct {
	Path    string
	Headers http.Header
	Body    map[string]any
}

func newBackendServer(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func messagesOf(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()

	raw, ok := body["messages"].([]any)
	require.True(t, ok, "messages missing")
	out := make([]map[string]any, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(map[string]any))
	}
	return out
}

func TestLocalClientSubmit(t *testing.T) {
	t.Parallel()

	server, captured := newBackendServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  Summary X  "}}]}`)
	client := NewLocalClient(config.LocalConfig{BaseURL: server.URL + "/v1/"}, server.Client())

	summary, err := client.Submit(context.Background(), "paper1", "Neural networks achieve...")
	require.NoError(t, err)
	assert.Equal(t, "Summary X", summary)

	assert.Equal(t, "/v1/chat/completions", captured.Path)
	assert.EqualValues(t, 0.3, captured.Body["temperature"])
	assert.EqualValues(t, 1000, captured.Body["max_tokens"])

	msgs := messagesOf(t, captured.Body)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0]["role"])
	assert.Equal(t, SystemPrompt, msgs[0]["content"])
	assert.Equal(t, "user", msgs[1]["role"])
	assert.Contains(t, msgs[1]["content"], "Title: paper1")
	assert.Contains(t, msgs[1]["content"], "Content: Neural networks achieve...")
}

func TestLocalClientEmptyChoices(t *testing.T) {
	t.Parallel()

	server, _ := newBackendServer(t, http.StatusOK, `{"choices":[]}`)
	_, err := NewLocalClient(config.LocalConfig{BaseURL: server.URL}, server.Client()).Submit(context.Background(), "t", "x")
	require.ErrorIs(t, err, errEmptyReply)
}

func TestOllamaClientSubmit(t *testing.T) {
	t.Parallel()

	server, captured := newBackendServer(t, http.StatusOK, `{"message":{"role":"assistant","content":"Ollama summary"},"done":true}`)
	client := NewOllamaClient(config.OllamaConfig{URL: server.URL + "/api/chat", Model: "mistral"}, server.Client())

	summary, err := client.Submit(context.Background(), "t", "x")
	require.NoError(t, err)
	assert.Equal(t, "Ollama summary", summary)
	assert.Equal(t, "/api/chat", captured.Path)
	assert.Equal(t, "mistral", captured.Body["model"])
	assert.Equal(t, false, captured.Body["stream"])
}

func TestGatewayClientSubmit(t *testing.T) {
	t.Parallel()

	server, captured := newBackendServer(t, http.StatusOK, `{"result":{"message":{"role":"assistant","content":" Gateway summary with k<n "}}}`)
	client := NewGatewayClient(config.GatewayConfig{URL: server.URL, APIKey: "gw-key", Model: "m1"}, server.Client())

	summary, err := client.Submit(context.Background(), "t", "x")
	require.NoError(t, err)
	assert.Equal(t, "Gateway summary with k<n", summary)
	assert.Equal(t, "/v1/chat", captured.Path)
	assert.Equal(t, "gw-key", captured.Headers.Get("X-API-Key"))
	assert.Equal(t, "m1", captured.Body["model"])
}

func TestOpenAIClientSubmit(t *testing.T) {
	t.Parallel()

	server, captured := newBackendServer(t, http.StatusOK, `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Hosted summary"},"finish_reason":"stop"}]}`)
	client := NewOpenAIClient(config.OpenAIConfig{BaseURL: server.URL + "/v1", APIKey: "sk-test", Model: "gpt-4o-mini"}, server.Client())

	summary, err := client.Submit(context.Background(), "t", "x")
	require.NoError(t, err)
	assert.Equal(t, "Hosted summary", summary)
	assert.Equal(t, "/v1/chat/completions", captured.Path)
	assert.Equal(t, "Bearer sk-test", captured.Headers.Get("Authorization"))
	assert.Equal(t, "gpt-4o-mini", captured.Body["model"])
}

func TestOpenAIClientWithoutKey(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIClient(config.OpenAIConfig{Model: "gpt-4o-mini"}, nil).Submit(context.Background(), "t", "x")
	require.ErrorIs(t, err, errMissingAPIKey)
}

func TestBackendFailures(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		status int
		reply  string
	}{
		"server error":   {http.StatusInternalServerError, `{"error":"boom"}`},
		"malformed json": {http.StatusOK, `{"choices":`},
		"blank reply":    {http.StatusOK, `{"choices":[{"message":{"content":"   "}}]}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			server, _ := newBackendServer(t, tc.status, tc.reply)
			_, err := NewLocalClient(config.LocalConfig{BaseURL: server.URL}, server.Client()).Submit(context.Background(), "t", "x")
			assert.Error(t, err)
		})
	}
}

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Summarizer
	for _, name := range []string{config.BackendLocal, config.BackendGateway, config.BackendOpenAI, config.BackendOllama} {
		cfg.Backend = name
		backend, err := New(cfg)
		require.NoError(t, err)
		assert.Equal(t, name, backend.Name())
	}

	cfg.Backend = "bard"
	_, err := New(cfg)
	require.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestCleanReplyKeepsLiteralText(t *testing.T) {
	t.Parallel()

	got, err := cleanReply("  Accuracy improves when k<n and n>3 layers are used.\n")
	require.NoError(t, err)
	assert.Equal(t, "Accuracy improves when k<n and n>3 layers are used.", got)

	got, err = cleanReply("uses <think> tokens &amp; more.")
	require.NoError(t, err)
	assert.Equal(t, "uses <think> tokens &amp; more.", got)

	_, err = cleanReply(" \n\t")
	assert.ErrorIs(t, err, errEmptyReply)
}
