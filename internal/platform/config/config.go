package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

var (
	errInvalidPort         = errors.New("config: invalid PORT number")
	errMissingDatabaseURL  = errors.New("config: DATABASE_URL is required")
	errPageLimitOutOfRange = errors.New("config: CRAWL_PAGE_LIMIT must be 1-100")
	errConcurrencyRange    = errors.New("config: WORKER_CONCURRENCY must be 1-32")
	errQueueSizeRange      = errors.New("config: ANALYSIS_QUEUE_SIZE must be 1-1024")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port     string
	LogLevel string
	LogFile  string

	DatabaseURL string

	// Crawl collaborator. When FirecrawlAPIKey is empty the built-in
	// same-host crawler is used instead.
	FirecrawlAPIKey  string
	FirecrawlBaseURL string
	CrawlPageLimit   int

	// Inference providers, checked in this order.
	OpenAIAPIKey string
	GroqAPIKey   string

	WorkerConcurrency int
	AnalysisQueueSize int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
		LogFile:           getEnv("LOG_FILE", ""),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		FirecrawlAPIKey:   getEnv("FIRECRAWL_API_KEY", ""),
		FirecrawlBaseURL:  getEnv("FIRECRAWL_BASE_URL", ""),
		CrawlPageLimit:    getEnvAsInt("CRAWL_PAGE_LIMIT", 20),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),
		AnalysisQueueSize: getEnvAsInt("ANALYSIS_QUEUE_SIZE", 64),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.DatabaseURL == "" {
		return errMissingDatabaseURL
	}

	if c.CrawlPageLimit < 1 || c.CrawlPageLimit > 100 {
		return fmt.Errorf("%w: got %d", errPageLimitOutOfRange, c.CrawlPageLimit)
	}

	if c.WorkerConcurrency < 1 || c.WorkerConcurrency > 32 {
		return fmt.Errorf("%w: got %d", errConcurrencyRange, c.WorkerConcurrency)
	}

	if c.AnalysisQueueSize < 1 || c.AnalysisQueueSize > 1024 {
		return fmt.Errorf("%w: got %d", errQueueSizeRange, c.AnalysisQueueSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}
