package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.NewsAPI.BaseURL != "https://newsapi.org/v2" {
		t.Errorf("BaseURL = %q, want newsapi default", config.NewsAPI.BaseURL)
	}
	if config.NewsAPI.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", config.NewsAPI.PageSize)
	}
	if config.NewsAPI.WindowDays != 30 {
		t.Errorf("WindowDays = %d, want 30", config.NewsAPI.WindowDays)
	}
	if config.Sentiment.PositiveThreshold != 0.05 || config.Sentiment.NegativeThreshold != -0.05 {
		t.Errorf("sentiment thresholds = %v/%v, want 0.05/-0.05",
			config.Sentiment.PositiveThreshold, config.Sentiment.NegativeThreshold)
	}
	if config.NewsAPI.PageDelayDuration() != time.Second {
		t.Errorf("PageDelayDuration = %v, want 1s", config.NewsAPI.PageDelayDuration())
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nuntius.toml")
	content := `
tickers = ["nvda", "MSFT"]

[newsapi]
api_key = "test-key"
step_days = 10

[archive]
path = "./archive.csv"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadFromFiles(path)
	if err != nil {
		t.Fatalf("LoadFromFiles failed: %v", err)
	}

	if len(config.Tickers) != 2 {
		t.Errorf("Tickers = %v, want 2 entries", config.Tickers)
	}
	if config.NewsAPI.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", config.NewsAPI.APIKey)
	}
	if config.NewsAPI.StepDays != 10 {
		t.Errorf("StepDays = %d, want 10", config.NewsAPI.StepDays)
	}
	// Unset values keep defaults
	if config.NewsAPI.PageSize != 100 {
		t.Errorf("PageSize = %d, want default 100", config.NewsAPI.PageSize)
	}
	if config.Archive.Path != "./archive.csv" {
		t.Errorf("Archive.Path = %q, want ./archive.csv", config.Archive.Path)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("NEWSAPI_KEY", "env-key")
	t.Setenv("NUNTIUS_TICKERS", "aapl, googl")
	t.Setenv("NUNTIUS_LOG_LEVEL", "debug")

	config := NewDefaultConfig()
	applyEnvOverrides(config)

	if config.NewsAPI.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", config.NewsAPI.APIKey)
	}
	if len(config.Tickers) != 2 || config.Tickers[0] != "aapl" || config.Tickers[1] != "googl" {
		t.Errorf("Tickers = %v, want [aapl googl]", config.Tickers)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", config.Logging.Level)
	}
}

func TestValidateForCollect(t *testing.T) {
	config := NewDefaultConfig()
	if err := config.ValidateForCollect(); err == nil {
		t.Error("expected validation error for empty config")
	}

	config.Tickers = []string{"NVDA"}
	if err := config.ValidateForCollect(); err == nil {
		t.Error("expected validation error for missing API key")
	}

	config.NewsAPI.APIKey = "key"
	if err := config.ValidateForCollect(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}
