package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration. It is loaded once and passed
// by value into constructors; nothing reads the environment past LoadConfig.
type Config struct {
	Server  ServerConfig
	Gate    GateConfig
	Extract ExtractConfig
	LLM     LLMConfig
	Output  OutputConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
}

// GateConfig holds image acceptance configuration.
type GateConfig struct {
	MaxImageBytes int64
}

// ExtractConfig holds text-extraction configuration.
type ExtractConfig struct {
	Engine        string // "vision" or "tesseract"
	Tesseract     string // binary name or path
	TesseractLang string
	TessdataDir   string
}

// LLMConfig holds configuration for the text-understanding service.
type LLMConfig struct {
	APIKey             string
	BaseURL            string
	ExtractionModel    string
	UnderstandingModel string
	Temperature        float32
	Timeout            time.Duration
	MaxRetries         int
	RetryBackoff       time.Duration
	MaxPromptChars     int
}

// OutputConfig holds artifact output configuration.
type OutputConfig struct {
	Dir string
}

// Extraction engine names.
const (
	EngineVision    = "vision"
	EngineTesseract = "tesseract"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr:      getEnv("MATHSIGHT_LISTEN_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("MATHSIGHT_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Gate: GateConfig{
			MaxImageBytes: getEnvAsInt64("MATHSIGHT_MAX_IMAGE_BYTES", 1<<20),
		},
		Extract: ExtractConfig{
			Engine:        getEnv("MATHSIGHT_EXTRACTOR", EngineVision),
			Tesseract:     getEnv("MATHSIGHT_TESSERACT", "tesseract"),
			TesseractLang: getEnv("MATHSIGHT_TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		},
		LLM: LLMConfig{
			APIKey:             getEnv("MATHSIGHT_API_KEY", ""),
			BaseURL:            getEnv("MATHSIGHT_BASE_URL", "https://api.openai.com/v1"),
			ExtractionModel:    getEnv("MATHSIGHT_EXTRACTION_MODEL", "gpt-4o-mini"),
			UnderstandingModel: getEnv("MATHSIGHT_UNDERSTANDING_MODEL", "gpt-4o"),
			Temperature:        getEnvAsFloat32("MATHSIGHT_TEMPERATURE", 0.0),
			Timeout:            getEnvAsDuration("MATHSIGHT_REQUEST_TIMEOUT", 60*time.Second),
			MaxRetries:         getEnvAsInt("MATHSIGHT_MAX_RETRIES", 2),
			RetryBackoff:       getEnvAsDuration("MATHSIGHT_RETRY_BACKOFF", 500*time.Millisecond),
			MaxPromptChars:     getEnvAsInt("MATHSIGHT_MAX_PROMPT_CHARS", 6000),
		},
		Output: OutputConfig{
			Dir: getEnv("MATHSIGHT_OUTPUT_DIR", "."),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Gate.MaxImageBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MATHSIGHT_MAX_IMAGE_BYTES must be positive", ErrInvalidInput)
	}
	if c.Extract.Engine != EngineVision && c.Extract.Engine != EngineTesseract {
		return NewAppError("CONFIG_ERROR", "MATHSIGHT_EXTRACTOR must be 'vision' or 'tesseract'", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "MATHSIGHT_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.MaxRetries < 0 {
		return NewAppError("CONFIG_ERROR", "MATHSIGHT_MAX_RETRIES must not be negative", ErrInvalidInput)
	}
	return nil
}
