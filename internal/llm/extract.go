// Package llm turns normalized document text into a validated flight or
// hotel record through one deterministic provider call.
package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tripdocs/extractor/internal/common"
)

// Extractor builds the prompt and issues the single completion per request.
// Provider configuration is process-lifetime; requests never switch provider.
type Extractor struct {
	provider Completer
	budget   int
	log      *slog.Logger
}

func NewExtractor(provider Completer, inputCharBudget int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if inputCharBudget <= 0 {
		inputCharBudget = DefaultInputCharBudget
	}
	return &Extractor{provider: provider, budget: inputCharBudget, log: logger}
}

func (e *Extractor) ProviderName() string { return e.provider.Name() }
func (e *Extractor) ModelName() string    { return e.provider.Model() }

// Extract calls the provider once and returns its raw response text. Any
// transport failure or provider-reported error surfaces as an UpstreamError
// carrying the provider's message verbatim.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	e.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", e.provider.Name(),
		"model", e.provider.Model(),
		"text_len", len(req.Text),
		"source_file", req.SourceFile,
	)

	raw, err := e.provider.Complete(ctx, BuildSystemPrompt(), BuildUserPrompt(req, e.budget))
	if err != nil {
		e.log.Error("llm.extract.provider_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.NewUpstreamError(err.Error(), err)
	}

	e.log.Info("llm.extract.ok",
		"req_id", rid,
		"raw_len", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, nil
}
