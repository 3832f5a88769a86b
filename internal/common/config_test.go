package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Should apply defaults when the environment is empty", func(t *testing.T) {
		cfg := LoadConfig()
		assert.Equal(t, ":8080", cfg.Server.ListenAddr)
		assert.Equal(t, int64(1<<20), cfg.Gate.MaxImageBytes)
		assert.Equal(t, EngineVision, cfg.Extract.Engine)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
		assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
		assert.Equal(t, 2, cfg.LLM.MaxRetries)
		assert.Equal(t, ".", cfg.Output.Dir)
	})

	t.Run("Should read overrides from the environment", func(t *testing.T) {
		t.Setenv("MATHSIGHT_LISTEN_ADDR", ":9090")
		t.Setenv("MATHSIGHT_MAX_IMAGE_BYTES", "2097152")
		t.Setenv("MATHSIGHT_EXTRACTOR", "tesseract")
		t.Setenv("MATHSIGHT_REQUEST_TIMEOUT", "30s")
		t.Setenv("MATHSIGHT_MAX_RETRIES", "5")

		cfg := LoadConfig()
		assert.Equal(t, ":9090", cfg.Server.ListenAddr)
		assert.Equal(t, int64(2<<20), cfg.Gate.MaxImageBytes)
		assert.Equal(t, EngineTesseract, cfg.Extract.Engine)
		assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
		assert.Equal(t, 5, cfg.LLM.MaxRetries)
	})

	t.Run("Should keep the default on an unparseable value", func(t *testing.T) {
		t.Setenv("MATHSIGHT_MAX_RETRIES", "lots")
		cfg := LoadConfig()
		assert.Equal(t, 2, cfg.LLM.MaxRetries)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		t.Helper()
		cfg := LoadConfig()
		cfg.LLM.APIKey = "k"
		return cfg
	}

	t.Run("Should accept a complete configuration", func(t *testing.T) {
		cfg := valid()
		require.NoError(t, cfg.Validate())
	})

	t.Run("Should require an API key", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.APIKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject a non-positive size ceiling", func(t *testing.T) {
		cfg := valid()
		cfg.Gate.MaxImageBytes = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject an unknown extraction engine", func(t *testing.T) {
		cfg := valid()
		cfg.Extract.Engine = "carrier-pigeon"
		assert.Error(t, cfg.Validate())
	})

	t.Run("Should reject negative retries", func(t *testing.T) {
		cfg := valid()
		cfg.LLM.MaxRetries = -1
		assert.Error(t, cfg.Validate())
	})
}
