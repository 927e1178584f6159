package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider runs completions against a local Ollama server.
type OllamaProvider struct {
	api   *api.Client
	model string
}

func NewOllamaProvider(baseURL, model string, timeout time.Duration) (*OllamaProvider, error) {
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	return &OllamaProvider{
		api:   api.NewClient(u, &http.Client{Timeout: timeout}),
		model: model,
	}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	stream := false
	chatReq := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Format:  json.RawMessage(`"json"`),
		Stream:  &stream,
		Options: map[string]any{"temperature": req.Temperature},
	}

	var content strings.Builder
	err := p.api.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if content.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return content.String(), nil
}
