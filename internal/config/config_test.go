package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "whisper-1", cfg.WhisperModel)
	assert.Equal(t, 0.5, cfg.AnalysisTemperature)
	assert.Equal(t, 1024, cfg.AnalysisMaxTokens)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, 250, cfg.ReplyMaxTokens)
	assert.Equal(t, int64(25), cfg.MaxUploadMB)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-live")
	t.Setenv("ANALYSIS_TIMEOUT", "10s")
	t.Setenv("AUTH_TOKEN_SECRET", "s3cr3t")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.AnalysisTimeout)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
	assert.True(t, cfg.AnalysisEnabled())
	assert.True(t, cfg.AuthEnabled())
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=config.Load")
}

func TestAnalysisEnabled(t *testing.T) {
	t.Parallel()
	assert.False(t, config.Config{}.AnalysisEnabled())
	assert.True(t, config.Config{OpenAIAPIKey: "sk"}.AnalysisEnabled())
}
