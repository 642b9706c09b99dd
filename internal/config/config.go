package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is resolved once at startup
// and treated as immutable afterwards; nothing re-reads the environment.
type Config struct {
	Provider ProviderConfig
	Intake   IntakeConfig
	EvalLog  EvalLogConfig
	Log      LogConfig
}

// ProviderConfig selects and parameterizes the language-model provider.
type ProviderConfig struct {
	Name            string // "openai" | "ollama"
	APIKey          string
	Model           string
	BaseURL         string // endpoint override; provider default when empty
	MaxTokens       int
	Timeout         time.Duration
	InputCharBudget int // prompt text cap, bounds per-request cost
}

// IntakeConfig holds the external tool bindings for text extraction and OCR.
type IntakeConfig struct {
	Pdftotext     string
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int // rasterization DPI for the OCR fallback
	MaxOCRPages   int
}

// EvalLogConfig locates the evaluation run store.
type EvalLogConfig struct {
	// DSN is a postgres:// URL or a SQLite file path (":memory:" supported).
	DSN string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment (TRX_ prefix) with defaults.
func Load() *Config {
	v := viper.New()
	v.SetEnvPrefix("TRX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("provider.name", "openai")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.max_tokens", 800)
	v.SetDefault("provider.timeout_secs", 60)
	v.SetDefault("provider.input_char_budget", 12000)

	v.SetDefault("intake.pdftotext", "pdftotext")
	v.SetDefault("intake.pdftoppm", "pdftoppm")
	v.SetDefault("intake.tesseract", "tesseract")
	v.SetDefault("intake.tesseract_lang", "eng")
	v.SetDefault("intake.tessdata_dir", "")
	v.SetDefault("intake.dpi", 144)
	v.SetDefault("intake.max_ocr_pages", 3)

	v.SetDefault("evallog.dsn", "eval_runs.db")
	v.SetDefault("log.level", "info")

	return &Config{
		Provider: ProviderConfig{
			Name:            v.GetString("provider.name"),
			APIKey:          v.GetString("provider.api_key"),
			Model:           v.GetString("provider.model"),
			BaseURL:         v.GetString("provider.base_url"),
			MaxTokens:       v.GetInt("provider.max_tokens"),
			Timeout:         time.Duration(v.GetInt("provider.timeout_secs")) * time.Second,
			InputCharBudget: v.GetInt("provider.input_char_budget"),
		},
		Intake: IntakeConfig{
			Pdftotext:     v.GetString("intake.pdftotext"),
			Pdftoppm:      v.GetString("intake.pdftoppm"),
			Tesseract:     v.GetString("intake.tesseract"),
			TesseractLang: v.GetString("intake.tesseract_lang"),
			TessdataDir:   v.GetString("intake.tessdata_dir"),
			DPI:           v.GetInt("intake.dpi"),
			MaxOCRPages:   v.GetInt("intake.max_ocr_pages"),
		},
		EvalLog: EvalLogConfig{
			DSN: v.GetString("evallog.dsn"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}
}
