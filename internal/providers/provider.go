// Package providers implements the two supported language-model backends
// behind the llm.Completer interface: an OpenAI-compatible cloud service and
// a locally-hosted Ollama service.
package providers

import (
	"fmt"
	"log/slog"

	"github.com/tripdocs/extractor/internal/llm"
)

// Provider names accepted by New.
const (
	NameOpenAI = "openai"
	NameOllama = "ollama"
)

// Config parameterizes the provider chosen at startup. The selection is fixed
// for the process lifetime.
type Config struct {
	Name      string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// New returns the configured Completer.
func New(cfg Config, logger *slog.Logger) (llm.Completer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Name {
	case NameOpenAI:
		return NewOpenAI(cfg, logger)
	case NameOllama:
		return NewOllama(cfg, logger)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Name)
}
