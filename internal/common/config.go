package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Tickers   []string        `toml:"tickers" validate:"required,min=1"`
	NewsAPI   NewsAPIConfig   `toml:"newsapi"`
	Aliases   AliasesConfig   `toml:"aliases"`
	Archive   ArchiveConfig   `toml:"archive"`
	Report    ReportConfig    `toml:"report"`
	Sentiment SentimentConfig `toml:"sentiment"`
	Logging   LoggingConfig   `toml:"logging"`
}

// NewsAPIConfig contains settings for the news source API.
type NewsAPIConfig struct {
	APIKey         string `toml:"api_key" validate:"required"`
	BaseURL        string `toml:"base_url"`
	PageSize       int    `toml:"page_size"`       // Max results per page (source caps at 100)
	MaxPages       int    `toml:"max_pages"`       // Max pages per interval
	WindowDays     int    `toml:"window_days"`     // Trailing fetch window (source retention limit)
	StepDays       int    `toml:"step_days"`       // Interval chunk size within the window
	PageDelay      string `toml:"page_delay"`      // Delay between page requests, e.g. "1s"
	RequestTimeout string `toml:"request_timeout"` // HTTP request timeout, e.g. "10s"
}

// AliasesConfig contains settings for company alias resolution.
type AliasesConfig struct {
	BaseURL  string `toml:"base_url"`
	CacheDir string `toml:"cache_dir"` // Badger directory for the alias cache
	CacheTTL string `toml:"cache_ttl"` // Entry freshness window, e.g. "24h"
}

// ArchiveConfig contains settings for the persisted news archive.
type ArchiveConfig struct {
	Path string `toml:"path"` // Archive CSV file path
}

// ReportConfig contains settings for the Excel report exporter.
type ReportConfig struct {
	Path string `toml:"path"` // Output workbook path
}

// SentimentConfig contains label thresholds for the sentiment analyzer.
type SentimentConfig struct {
	PositiveThreshold float64 `toml:"positive_threshold"` // Compound score at or above -> positive
	NegativeThreshold float64 `toml:"negative_threshold"` // Compound score at or below -> negative
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in nuntius.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Tickers: []string{},
		NewsAPI: NewsAPIConfig{
			BaseURL:        "https://newsapi.org/v2",
			PageSize:       100, // Developer plan cap per request
			MaxPages:       1,   // Developer plan caps at 100 results per query
			WindowDays:     30,  // Developer plan history limit; asking for more triggers HTTP 426
			StepDays:       5,
			PageDelay:      "1s",
			RequestTimeout: "10s",
		},
		Aliases: AliasesConfig{
			BaseURL:  "https://query1.finance.yahoo.com",
			CacheDir: "./data/alias-cache",
			CacheTTL: "24h",
		},
		Archive: ArchiveConfig{
			Path: "./data/news_db.csv",
		},
		Report: ReportConfig{
			Path: "./data/news_db.xlsx",
		},
		Sentiment: SentimentConfig{
			PositiveThreshold: 0.05,
			NegativeThreshold: -0.05,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// NEWSAPI_KEY matches the conventional NewsAPI variable name and keeps
	// credentials out of the config file.
	if key := os.Getenv("NEWSAPI_KEY"); key != "" {
		config.NewsAPI.APIKey = key
	}
	if baseURL := os.Getenv("NUNTIUS_NEWSAPI_BASE_URL"); baseURL != "" {
		config.NewsAPI.BaseURL = baseURL
	}

	if tickers := os.Getenv("NUNTIUS_TICKERS"); tickers != "" {
		parsed := []string{}
		for _, t := range strings.Split(tickers, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) > 0 {
			config.Tickers = parsed
		}
	}

	if path := os.Getenv("NUNTIUS_ARCHIVE_PATH"); path != "" {
		config.Archive.Path = path
	}
	if path := os.Getenv("NUNTIUS_REPORT_PATH"); path != "" {
		config.Report.Path = path
	}

	if windowDays := os.Getenv("NUNTIUS_WINDOW_DAYS"); windowDays != "" {
		if d, err := strconv.Atoi(windowDays); err == nil {
			config.NewsAPI.WindowDays = d
		}
	}

	// Logging configuration
	if level := os.Getenv("NUNTIUS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("NUNTIUS_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// ApplyFlagOverrides applies command-line flag values over the loaded
// configuration. Flags have the highest priority.
func ApplyFlagOverrides(config *Config, tickers string) {
	if tickers != "" {
		config.Tickers = SplitTickers(tickers)
	}
}

// ValidateForCollect checks the settings the collect command depends on.
// Missing credentials or an empty ticker list is a fatal configuration error.
func (c *Config) ValidateForCollect() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			for _, fe := range errs {
				switch fe.Namespace() {
				case "Config.Tickers":
					return fmt.Errorf("no tickers configured: set [tickers] in the config file or NUNTIUS_TICKERS")
				case "Config.NewsAPI.APIKey":
					return fmt.Errorf("NEWSAPI_KEY is not set: add it to the environment, a .env file, or the config file")
				}
			}
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// PageDelayDuration returns the parsed inter-page delay.
func (c *NewsAPIConfig) PageDelayDuration() time.Duration {
	return parseDurationOr(c.PageDelay, time.Second)
}

// RequestTimeoutDuration returns the parsed HTTP request timeout.
func (c *NewsAPIConfig) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(c.RequestTimeout, 10*time.Second)
}

// CacheTTLDuration returns the parsed alias cache freshness window.
func (c *AliasesConfig) CacheTTLDuration() time.Duration {
	return parseDurationOr(c.CacheTTL, 24*time.Hour)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
