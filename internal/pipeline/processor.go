// Package pipeline wires intake, extraction, and evaluation logging into the
// single entry point the command surfaces call.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/tripdocs/extractor/constants"
	"github.com/tripdocs/extractor/internal/common"
	"github.com/tripdocs/extractor/internal/evallog"
	"github.com/tripdocs/extractor/internal/intake"
	"github.com/tripdocs/extractor/internal/llm"
)

// Result is the caller-facing outcome of one extraction attempt.
type Result struct {
	OK        bool                 `json:"ok"`
	Data      *llm.CandidateRecord `json:"data,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"errorKind,omitempty"`
	Method    string               `json:"method,omitempty"`
	OCRUsed   bool                 `json:"ocrUsed"`
}

type Processor struct {
	intake    *intake.Coordinator
	extractor *llm.Extractor
	recorder  *evallog.Recorder
	log       *slog.Logger
}

func NewProcessor(coord *intake.Coordinator, extractor *llm.Extractor, recorder *evallog.Recorder, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{intake: coord, extractor: extractor, recorder: recorder, log: logger}
}

// Process runs the full chain for one document and appends an evaluation row
// for the attempt regardless of outcome. groundTruth, when non-empty, is the
// caller-asserted record type ("flight" or "hotel") stored for later scoring.
func (p *Processor) Process(ctx context.Context, doc intake.Document, groundTruth string) *Result {
	start := time.Now()

	chain := func(ctx context.Context, text string) (*llm.CandidateRecord, error) {
		raw, err := p.extractor.Extract(ctx, llm.ExtractRequest{Text: text, SourceFile: doc.Filename})
		if err != nil {
			return nil, err
		}
		fields, err := llm.DecodeResponse(raw)
		if err != nil {
			return nil, err
		}
		rec, err := llm.NewCandidate(fields)
		if err != nil {
			return nil, err
		}
		llm.PostProcess(rec, text)
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		return rec, nil
	}

	outcome, err := p.intake.Process(ctx, doc, chain)

	run := &evallog.Run{
		SourceFile:      doc.Filename,
		Provider:        p.extractor.ProviderName(),
		Model:           p.extractor.ModelName(),
		GroundTruthType: groundTruth,
		LatencyMS:       time.Since(start).Milliseconds(),
		InputType:       string(constants.MapMediaType(doc.MediaType)),
	}

	if err != nil {
		run.Success = false
		run.ErrorMessage = err.Error()
		p.recorder.Record(ctx, run)

		p.log.Warn("pipeline.process_failed",
			"file", doc.Filename,
			"kind", string(common.KindOf(err)),
			"error", err,
			"elapsed_ms", run.LatencyMS,
		)
		return &Result{
			OK:        false,
			Error:     err.Error(),
			ErrorKind: string(common.KindOf(err)),
		}
	}

	run.Success = true
	run.PredictedType = string(outcome.Record.Kind)
	run.OCRUsed = outcome.OCRUsed
	run.InputLength = outcome.InputLength
	run.Notes = outcome.Method
	if out, jerr := outcome.Record.JSON(); jerr == nil {
		run.OutputJSON = string(out)
	}
	p.recorder.Record(ctx, run)

	p.log.Info("pipeline.process_ok",
		"file", doc.Filename,
		"type", string(outcome.Record.Kind),
		"method", outcome.Method,
		"ocr_used", outcome.OCRUsed,
		"elapsed_ms", run.LatencyMS,
	)
	return &Result{
		OK:      true,
		Data:    outcome.Record,
		Method:  outcome.Method,
		OCRUsed: outcome.OCRUsed,
	}
}
