package llm

import (
	"os"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderGemini      = "gemini"
	ProviderOpenRouter  = "openrouter"
	ProviderMock        = "mock"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "huggingface", "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string `yaml:"provider"`

	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
	Anthropic   AnthropicConfig   `yaml:"anthropic"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	OpenRouter  OpenRouterConfig  `yaml:"openrouter"`
	Retry       RetryConfig       `yaml:"retry"`

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 60s.
	Timeout time.Duration `yaml:"timeout"`
}

// HuggingFaceConfig holds Hugging Face inference configuration.
type HuggingFaceConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "llama-3-8b"
	BaseURL string `yaml:"base_url"` // Default: "https://router.huggingface.co/v1"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "meta-llama/llama-3-8b-instruct"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderHuggingFace,
		HuggingFace: HuggingFaceConfig{
			Model: "llama-3-8b",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "meta-llama/llama-3-8b-instruct",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// ApplyEnv overrides fields of cfg from QUIZRR_* environment variables.
// HUGGINGFACE_API_KEY is honored as well, since hosted deployments
// commonly provision it under that name.
func ApplyEnv(cfg *Config) {
	setFromEnv(&cfg.Provider, "QUIZRR_LLM_PROVIDER")

	setFromEnv(&cfg.HuggingFace.APIKey, "HUGGINGFACE_API_KEY")
	setFromEnv(&cfg.HuggingFace.APIKey, "QUIZRR_HUGGINGFACE_API_KEY")
	setFromEnv(&cfg.HuggingFace.Model, "QUIZRR_HUGGINGFACE_MODEL")
	setFromEnv(&cfg.HuggingFace.BaseURL, "QUIZRR_HUGGINGFACE_BASE_URL")

	setFromEnv(&cfg.Anthropic.APIKey, "QUIZRR_ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "QUIZRR_ANTHROPIC_MODEL")

	setFromEnv(&cfg.OpenAI.APIKey, "QUIZRR_OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "QUIZRR_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "QUIZRR_OPENAI_BASE_URL")

	setFromEnv(&cfg.Gemini.APIKey, "QUIZRR_GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "QUIZRR_GEMINI_MODEL")

	setFromEnv(&cfg.OpenRouter.APIKey, "QUIZRR_OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "QUIZRR_OPENROUTER_MODEL")

	if v := os.Getenv("QUIZRR_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig checks the standard API key env vars in priority order
// (Hugging Face → Gemini → OpenAI → Anthropic → OpenRouter) and returns
// a Config for the first provider whose key is found.
// Returns (Config{}, false) if none is found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	candidates := []struct {
		env      string
		provider string
		key      *string
	}{
		{"HUGGINGFACE_API_KEY", ProviderHuggingFace, &cfg.HuggingFace.APIKey},
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, p := range candidates {
		if k := os.Getenv(p.env); k != "" && !IsPlaceholderKey(k) {
			cfg.Provider = p.provider
			*p.key = k
			return cfg, true
		}
	}

	return Config{}, false
}

// Validate checks that the selected provider has a usable API key.
// It returns *ErrConfig when the key is missing or a placeholder.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderHuggingFace:
		key, env = c.HuggingFace.APIKey, "QUIZRR_HUGGINGFACE_API_KEY"
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "QUIZRR_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "QUIZRR_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "QUIZRR_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "QUIZRR_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return &ErrConfig{Provider: c.Provider}
	}
	if IsPlaceholderKey(key) {
		return &ErrConfig{Provider: c.Provider, EnvVar: env}
	}
	return nil
}

// placeholderKeys are values shipped in sample env files.
var placeholderKeys = map[string]bool{
	"hf_your_token_here": true,
	"your_api_key_here":  true,
	"your-api-key":       true,
	"sk-...":             true,
	"changeme":           true,
}

// IsPlaceholderKey reports whether key is empty or an obvious placeholder.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return true
	}
	return placeholderKeys[k] || strings.Contains(k, "your_token_here")
}
