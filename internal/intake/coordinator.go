// Package intake converts raw document bytes into normalized text for the
// extraction chain, falling back to page-by-page OCR when a text-capable
// document turns out to be effectively scanned.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tripdocs/extractor/constants"
	"github.com/tripdocs/extractor/internal/common"
	"github.com/tripdocs/extractor/internal/llm"
	"github.com/tripdocs/extractor/internal/ocr"
)

// minTextLength is the sufficiency threshold: normalized text at least this
// long goes straight to the provider; anything shorter is treated as scanned.
const minTextLength = 40

// defaultMaxOCRPages bounds the OCR fallback loop.
const defaultMaxOCRPages = 3

// Document is the intake boundary payload: raw bytes plus a declared media
// type. Transient; discarded after intake.
type Document struct {
	Data      []byte
	MediaType string
	Filename  string
}

// Chain runs the orchestrate -> decode -> validate stages for one text
// candidate. The coordinator owns the per-page retry; the chain owns
// everything downstream of text acquisition.
type Chain func(ctx context.Context, text string) (*llm.CandidateRecord, error)

// Outcome reports how intake acquired text and what the chain produced.
type Outcome struct {
	Record      *llm.CandidateRecord
	Method      string
	OCRUsed     bool
	InputLength int
	Page        int // 1-based page the successful attempt used, 0 for whole-document text
}

type Config struct {
	Pdftotext   string
	Pdftoppm    string
	DPI         int // rasterization DPI for the OCR fallback (2x the 72pt base)
	MaxOCRPages int
}

type Coordinator struct {
	cfg    Config
	runner ocr.Runner
	engine *ocr.Engine
	log    *slog.Logger
}

func NewCoordinator(cfg Config, runner ocr.Runner, engine *ocr.Engine, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 144
	}
	if cfg.MaxOCRPages <= 0 {
		cfg.MaxOCRPages = defaultMaxOCRPages
	}
	return &Coordinator{cfg: cfg, runner: runner, engine: engine, log: logger}
}

// Process picks a strategy from the declared media type and drives the chain.
// Text-capable documents whose normalized text is too short fall back to OCR.
func (c *Coordinator) Process(ctx context.Context, doc Document, chain Chain) (*Outcome, error) {
	switch constants.MapMediaType(doc.MediaType) {
	case constants.TEXT:
		return c.processText(ctx, doc, chain)
	case constants.PDF:
		return c.processPDF(ctx, doc, chain)
	case constants.IMAGE:
		return c.processImage(ctx, doc, chain)
	}
	return nil, common.NewInputError(fmt.Sprintf("unsupported media type %q", doc.MediaType), nil)
}

func (c *Coordinator) processText(ctx context.Context, doc Document, chain Chain) (*Outcome, error) {
	text := NormalizeText(string(doc.Data))
	if len(text) < minTextLength {
		// nothing to rasterize for plain text, so no OCR fallback exists
		return nil, common.NewInputError("document text too short", nil)
	}
	rec, err := chain(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Outcome{Record: rec, Method: constants.MethodText, InputLength: len(text)}, nil
}

func (c *Coordinator) processPDF(ctx context.Context, doc Document, chain Chain) (*Outcome, error) {
	path, cleanup, err := spoolTemp(doc.Data, ".pdf")
	if err != nil {
		return nil, common.NewInputError("spool document", err)
	}
	defer cleanup()

	pageCount := 0
	text := ""
	pages, err := c.pdfPageTexts(ctx, path)
	if err != nil {
		// unreadable text layer; treat as scanned and let the OCR loop decide
		c.log.Warn("intake.pdf_text_failed", "file", doc.Filename, "error", err)
	} else {
		pageCount = len(pages)
		text = NormalizeText(strings.Join(pages, "\n\n"))
	}

	if len(text) >= minTextLength {
		rec, cerr := chain(ctx, text)
		if cerr != nil {
			return nil, cerr
		}
		return &Outcome{Record: rec, Method: constants.MethodPDFText, InputLength: len(text)}, nil
	}

	c.log.Info("intake.ocr_fallback", "file", doc.Filename, "text_len", len(text), "pages", pageCount)
	return c.ocrFallback(ctx, path, pageCount, chain)
}

// ocrFallback tries the first min(MaxOCRPages, pageCount) pages strictly
// sequentially, stopping at the first page whose full chain succeeds. Only
// the first error is retained for reporting.
func (c *Coordinator) ocrFallback(ctx context.Context, path string, pageCount int, chain Chain) (*Outcome, error) {
	maxPages := c.cfg.MaxOCRPages
	if pageCount > 0 && pageCount < maxPages {
		maxPages = pageCount
	}

	var firstErr error
	for page := 1; page <= maxPages; page++ {
		out, err := c.ocrPage(ctx, path, page, chain)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			c.log.Warn("intake.page_failed", "page", page, "error", err)
			continue
		}
		return out, nil
	}
	if firstErr == nil {
		firstErr = common.NewInputError("no pages available for OCR", nil)
	}
	return nil, firstErr
}

// ocrPage rasterizes one page, OCRs it, and runs the downstream chain. Page
// render resources are removed before returning, success or not.
func (c *Coordinator) ocrPage(ctx context.Context, path string, page int, chain Chain) (*Outcome, error) {
	img, cleanup, err := c.renderPage(ctx, path, page)
	defer cleanup()
	if err != nil {
		return nil, common.NewInputError(fmt.Sprintf("render page %d", page), err)
	}

	raw, err := c.engine.ImageToText(ctx, img)
	if err != nil {
		return nil, common.NewUpstreamError(fmt.Sprintf("ocr page %d", page), err)
	}

	text := NormalizeText(raw)
	rec, err := chain(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Outcome{Record: rec, Method: constants.MethodPDFOCR, OCRUsed: true, InputLength: len(text), Page: page}, nil
}

func (c *Coordinator) processImage(ctx context.Context, doc Document, chain Chain) (*Outcome, error) {
	ext := ".png"
	if doc.MediaType == constants.MediaTypeJPEG {
		ext = ".jpg"
	}
	path, cleanup, err := spoolTemp(doc.Data, ext)
	if err != nil {
		return nil, common.NewInputError("spool document", err)
	}
	defer cleanup()

	raw, err := c.engine.ImageToText(ctx, path)
	if err != nil {
		return nil, common.NewUpstreamError("ocr failed", err)
	}

	text := NormalizeText(raw)
	rec, err := chain(ctx, text)
	if err != nil {
		return nil, err
	}
	return &Outcome{Record: rec, Method: constants.MethodImageOCR, OCRUsed: true, InputLength: len(text), Page: 1}, nil
}
