package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

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
		dir     = flag.String("dir", "", "directory of documents to process (required)")
		gtByDir = flag.Bool("gt-by-dir", false, "use each file's parent directory name (flight|hotel) as the ground truth")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(2)
	}

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
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

	var files []string
	walkErr := filepath.WalkDir(*dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if constants.MediaTypeForExt(filepath.Ext(path)) == "" {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		logger.Error("walk directory", "dir", *dir, "error", walkErr)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warn("no processable files found", "dir", *dir)
		return
	}

	logger.Info("batch.start", "dir", *dir, "files", len(files))
	start := time.Now()

	ok, failed := 0, 0
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Error("batch.read_failed", "file", path, "error", err)
			failed++
			continue
		}

		gt := ""
		if *gtByDir {
			parent := filepath.Base(filepath.Dir(path))
			if constants.IsRecordKind(parent) {
				gt = parent
			}
		}

		attemptCtx, attemptCancel := context.WithTimeout(ctx, cfg.Provider.Timeout)
		res := proc.Process(attemptCtx, intake.Document{
			Data:      data,
			MediaType: constants.MediaTypeForExt(filepath.Ext(path)),
			Filename:  filepath.Base(path),
		}, gt)
		attemptCancel()

		if res.OK {
			ok++
		} else {
			failed++
		}
	}

	logger.Info("batch.done",
		"files", len(files),
		"ok", ok,
		"failed", failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if failed > 0 {
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
