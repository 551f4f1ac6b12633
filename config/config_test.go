package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 90*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "deepseek/deepseek-r1-zero:free", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLM.APIKeyConfigured(), "placeholder key must not count as configured")
	assert.False(t, cfg.Cache.Enable, "draft cache is opt-in")
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, []string{
		"Abstract", "Introduction", "Literature Review", "Methodology",
		"Results", "Discussion", "Conclusion", "References",
	}, cfg.Paper.DefaultSections)
	assert.Equal(t, 1, cfg.Paper.OriginalityMin)
	assert.Equal(t, 15, cfg.Paper.OriginalityMax)
	assert.Equal(t, "logs/api.log", cfg.Log.File)
	assert.Equal(t, 24*time.Hour, cfg.CORS.MaxAge)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-test")
	t.Setenv("CACHE_TYPE", "redis")

	path := writeConfig(t, `
server:
  port: 9090
llm:
  api_key: ${OPENROUTER_API_KEY}
  model: openai/gpt-4o-mini
  timeout: 30s
cache:
  enable: true
paper:
  default_sections: [Introduction, Conclusion]
  originality_min: 5
  originality_max: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sk-or-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.APIKeyConfigured())
	assert.Equal(t, "openai/gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Cache.Enable)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, []string{"Introduction", "Conclusion"}, cfg.Paper.DefaultSections)
	assert.Equal(t, 5, cfg.Paper.OriginalityMin)
	assert.Equal(t, 10, cfg.Paper.OriginalityMax)
}

func TestLoad_InvalidRange(t *testing.T) {
	path := writeConfig(t, `
paper:
  originality_min: 20
  originality_max: 10
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAPIKeyConfigured(t *testing.T) {
	assert.False(t, LLMConfig{}.APIKeyConfigured())
	assert.False(t, LLMConfig{APIKey: "  "}.APIKeyConfigured())
	assert.False(t, LLMConfig{APIKey: PlaceholderAPIKey}.APIKeyConfigured())
	assert.False(t, LLMConfig{APIKey: "${OPENROUTER_API_KEY}"}.APIKeyConfigured())
	assert.True(t, LLMConfig{APIKey: "sk-or-v1-abc"}.APIKeyConfigured())
}
