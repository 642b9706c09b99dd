package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tripdocs/extractor/internal/evallog"
)

// Service produces XLSX bytes summarizing evaluation runs.
type Service struct {
	store  evallog.Store
	logger *slog.Logger
}

func NewService(store evallog.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportRunsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..now (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all runs.
func (s *Service) ExportRunsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		now := time.Now().UTC()
		toDate = &now
	}

	runs, err := s.store.ListRuns(ctx, evallog.Filter{From: fromDate, To: toDate})
	if err != nil {
		return nil, fmt.Errorf("query eval runs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "EvalRuns"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"ID",
		"Timestamp",
		"Source File",
		"Provider",
		"Model",
		"Predicted Type",
		"Ground Truth",
		"Success",
		"Error",
		"Latency (ms)",
		"OCR Used",
		"Input Type",
		"Input Length",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range runs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.ID)
		if !r.Timestamp.IsZero() {
			write(2, r.Timestamp.UTC().Format(time.RFC3339))
		} else {
			write(2, "")
		}
		write(3, r.SourceFile)
		write(4, r.Provider)
		write(5, r.Model)
		write(6, r.PredictedType)
		write(7, r.GroundTruthType)
		write(8, r.Success)
		write(9, truncate(r.ErrorMessage, 140))
		write(10, r.LatencyMS)
		write(11, r.OCRUsed)
		write(12, r.InputType)
		write(13, r.InputLength)
		write(14, truncate(r.Notes, 140))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "B", "B", 22) // timestamp
	_ = f.SetColWidth(sheet, "C", "C", 40) // source file
	_ = f.SetColWidth(sheet, "D", "E", 16) // provider, model
	_ = f.SetColWidth(sheet, "I", "I", 48) // error
	_ = f.SetColWidth(sheet, "N", "N", 32) // notes

	if err := writeSummary(f, runs); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(runs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, runs []evallog.Run) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	succeeded, ocr := 0, 0
	for _, r := range runs {
		if r.Success {
			succeeded++
		}
		if r.OCRUsed {
			ocr++
		}
	}

	rows := [][]any{
		{"Total Runs", len(runs)},
		{"Succeeded", succeeded},
		{"Failed", len(runs) - succeeded},
		{"OCR Used", ocr},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 16)
	return nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
