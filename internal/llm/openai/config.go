package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mathsight/grader/internal/llm"
)

// Config for the OpenAI-compatible chat client.
type Config struct {
	APIKey       string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL      string        // default https://api.openai.com/v1
	Timeout      time.Duration // per-attempt http timeout
	MaxRetries   int           // retries after the first attempt
	RetryBackoff time.Duration // base for the exponential schedule
}

type Client struct {
	cfg    Config
	http   *http.Client
	retry  llm.RetryPolicy
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		retry:  llm.RetryPolicy{MaxRetries: uint64(cfg.MaxRetries), Backoff: cfg.RetryBackoff},
		logger: logger,
	}
}
