package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	olla "github.com/ollama/ollama/api"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.1"
)

// Ollama talks to a locally-hosted Ollama service.
type Ollama struct {
	client *olla.Client
	model  string
	log    *slog.Logger
}

func NewOllama(cfg Config, logger *slog.Logger) (*Ollama, error) {
	if logger == nil {
		logger = slog.Default()
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaBaseURL
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid base URL: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{
		client: olla.NewClient(parsed, &http.Client{}),
		model:  model,
		log:    logger,
	}, nil
}

func (c *Ollama) Name() string  { return NameOllama }
func (c *Ollama) Model() string { return c.model }

// Complete issues one non-streamed chat request in JSON mode, temperature 0.
func (c *Ollama) Complete(ctx context.Context, system, user string) (string, error) {
	stream := false
	var content strings.Builder

	err := c.client.Chat(ctx, &olla.ChatRequest{
		Model: c.model,
		Messages: []olla.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: map[string]any{"temperature": 0},
	}, func(resp olla.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return content.String(), nil
}
