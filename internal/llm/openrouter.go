package llm

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// OpenRouter is OpenAI-compatible, so the result is an *OpenAIProvider.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if IsPlaceholderKey(cfg.APIKey) {
		return nil, &ErrConfig{Provider: ProviderOpenRouter, EnvVar: "QUIZRR_OPENROUTER_API_KEY"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	return newCompatProvider(cfg.APIKey, baseURL, cfg.Model, true), nil
}
