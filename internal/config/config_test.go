package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, 800, cfg.Provider.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 12000, cfg.Provider.InputCharBudget)

	assert.Equal(t, "pdftotext", cfg.Intake.Pdftotext)
	assert.Equal(t, "tesseract", cfg.Intake.Tesseract)
	assert.Equal(t, "eng", cfg.Intake.TesseractLang)
	assert.Equal(t, 144, cfg.Intake.DPI)
	assert.Equal(t, 3, cfg.Intake.MaxOCRPages)

	assert.Equal(t, "eval_runs.db", cfg.EvalLog.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRX_PROVIDER_NAME", "ollama")
	t.Setenv("TRX_PROVIDER_MODEL", "llama3.1")
	t.Setenv("TRX_PROVIDER_TIMEOUT_SECS", "120")
	t.Setenv("TRX_INTAKE_MAX_OCR_PAGES", "5")
	t.Setenv("TRX_EVALLOG_DSN", "postgres://localhost/evals")

	cfg := Load()

	assert.Equal(t, "ollama", cfg.Provider.Name)
	assert.Equal(t, "llama3.1", cfg.Provider.Model)
	assert.Equal(t, 2*time.Minute, cfg.Provider.Timeout)
	assert.Equal(t, 5, cfg.Intake.MaxOCRPages)
	assert.Equal(t, "postgres://localhost/evals", cfg.EvalLog.DSN)
}
