package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizrr/quizrr/internal/cache"
	"github.com/quizrr/quizrr/internal/llm"
)

// isolate points config discovery at an empty directory and clears the
// provider key variables.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"HUGGINGFACE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"QUIZRR_LLM_PROVIDER", "QUIZRR_HUGGINGFACE_API_KEY", "QUIZRR_REDIS_ADDR", "QUIZRR_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, llm.ProviderHuggingFace, cfg.LLM.Provider)
	assert.Equal(t, 1500, cfg.Generation.MaxTokens)
	assert.Equal(t, 300, cfg.Generation.ExplanationMaxTokens)
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeFile(t, `
server:
  addr: ":9000"
  allowed_origins: ["http://localhost:3000"]
store:
  driver: postgres
  dsn: postgres://quizrr@localhost/quizrr
cache:
  backend: redis
  addr: localhost:6379
  ttl: 24h
llm:
  provider: openai
  openai:
    api_key: sk-test-123
  timeout: 30s
generation:
  structured_output: true
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test-123", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Generation.StructuredOutput)
	assert.Equal(t, 1500, cfg.Generation.MaxTokens)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	isolate(t)
	_, err := Load(writeFile(t, "server: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_DefaultPathDiscovered(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "quizrr"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quizrr", "config.yaml"), []byte("server:\n  addr: \":7000\"\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestApplyEnv(t *testing.T) {
	isolate(t)
	t.Setenv("QUIZRR_ADDR", ":9999")
	t.Setenv("QUIZRR_REDIS_ADDR", "redis:6379")
	t.Setenv("QUIZRR_JWT_SECRET", "s3cret")
	t.Setenv("QUIZRR_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("QUIZRR_STRUCTURED_OUTPUT", "true")
	t.Setenv("HUGGINGFACE_API_KEY", "hf_real_key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, cache.BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Addr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Generation.StructuredOutput)
	assert.Equal(t, "hf_real_key", cfg.LLM.HuggingFace.APIKey)
	assert.NoError(t, cfg.LLM.Validate())
}

func TestApplyEnv_DiscoversProvider(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "gm-real-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, "gm-real-key", cfg.LLM.Gemini.APIKey)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
}

func TestApplyEnv_PlaceholderKeyStaysUnconfigured(t *testing.T) {
	isolate(t)
	t.Setenv("HUGGINGFACE_API_KEY", "hf_your_token_here")

	cfg, err := Load("")
	require.NoError(t, err)
	var cfgErr *llm.ErrConfig
	assert.ErrorAs(t, cfg.LLM.Validate(), &cfgErr)
}
