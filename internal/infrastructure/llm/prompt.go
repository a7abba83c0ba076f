package llm

import (
	"errors"
	"fmt"
	"strings"
)

// SystemPrompt is sent with every summarization request.
const SystemPrompt = `You are a research assistant that provides concise summaries of academic papers.
Focus on:
1. Key findings and contributions
2. Methodology and approach
3. Main conclusions and implications
4. Respond with a basic string, no formatting, titles, heading etc. is required.`

const (
	temperature = 0.3
	maxTokens   = 1000
)

var errEmptyReply = errors.New("backend returned no text")

// UserPrompt embeds the title and extracted text into the user message.
func UserPrompt(title, text string) string {
	return fmt.Sprintf("Please summarize this paper:\nTitle: %s\nContent: %s", title, text)
}

// cleanReply trims the reply and rejects empty ones. Escaping is left to the renderer.
func cleanReply(reply string) (string, error) {
	text := strings.TrimSpace(reply)
	if text == "" {
		return "", errEmptyReply
	}
	return text, nil
}
