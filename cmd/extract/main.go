package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tripdocs/extractor/constants"
	"github.com/tripdocs/extractor/internal/config"
	"github.com/tripdocs/extractor/internal/evallog"
	"github.com/tripdocs/extractor/internal/intake"
	"github.com/tripdocs/extractor/internal/llm"
	"github.com/tripdocs/extractor/internal/ocr"
	"github.com/tripdocs/extractor/internal/pipeline"
	"github.com/tripdocs/extractor/internal/providers"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file = flag.String("file", "", "document to extract (pdf, txt, png, jpg) (required)")
		gt   = flag.String("gt", "", "ground-truth record type for evaluation (flight|hotel)")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(2)
	}
	if *gt != "" && !constants.IsRecordKind(*gt) {
		printError("Error: --gt must be flight or hotel\n")
		os.Exit(2)
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	mediaType := constants.MediaTypeForExt(filepath.Ext(*file))
	if mediaType == "" {
		printError("Error: unsupported file extension %q\n", filepath.Ext(*file))
		os.Exit(2)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: read %s: %v\n", *file, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Provider.Timeout)
	defer cancel()

	proc, store, err := buildProcessor(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("close eval store", "error", cerr)
		}
	}()

	res := proc.Process(ctx, intake.Document{
		Data:      data,
		MediaType: mediaType,
		Filename:  filepath.Base(*file),
	}, *gt)

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if !res.OK {
		os.Exit(1)
	}
}

func buildProcessor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Processor, evallog.Store, error) {
	provider, err := providers.New(providers.Config{
		Name:      cfg.Provider.Name,
		APIKey:    cfg.Provider.APIKey,
		Model:     cfg.Provider.Model,
		BaseURL:   cfg.Provider.BaseURL,
		MaxTokens: cfg.Provider.MaxTokens,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("provider: %w", err)
	}

	extractor := llm.NewExtractor(provider, cfg.Provider.InputCharBudget, logger)

	engine := ocr.NewEngine(ocr.Config{
		Tesseract:   cfg.Intake.Tesseract,
		Lang:        cfg.Intake.TesseractLang,
		TessdataDir: cfg.Intake.TessdataDir,
	}, nil, logger)

	coord := intake.NewCoordinator(intake.Config{
		Pdftotext:   cfg.Intake.Pdftotext,
		Pdftoppm:    cfg.Intake.Pdftoppm,
		DPI:         cfg.Intake.DPI,
		MaxOCRPages: cfg.Intake.MaxOCRPages,
	}, nil, engine, logger)

	store, err := evallog.Open(ctx, cfg.EvalLog.DSN, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open eval store: %w", err)
	}

	recorder := evallog.NewRecorder(store, logger)
	return pipeline.NewProcessor(coord, extractor, recorder, logger), store, nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
