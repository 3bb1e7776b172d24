package llm

const defaultHuggingFaceBaseURL = "https://router.huggingface.co/v1"

// huggingfaceModels maps friendly names to Hugging Face hub model IDs.
var huggingfaceModels = map[string]string{
	"llama-3-8b":  "meta-llama/Meta-Llama-3-8B-Instruct",
	"llama-3-70b": "meta-llama/Meta-Llama-3-70B-Instruct",
	"mistral-7b":  "mistralai/Mistral-7B-Instruct-v0.3",
}

// NewHuggingFaceProvider creates a provider for the Hugging Face inference
// router, which speaks the OpenAI chat completions protocol.
func NewHuggingFaceProvider(cfg HuggingFaceConfig) (*OpenAIProvider, error) {
	if IsPlaceholderKey(cfg.APIKey) {
		return nil, &ErrConfig{Provider: ProviderHuggingFace, EnvVar: "QUIZRR_HUGGINGFACE_API_KEY"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "llama-3-8b"
	}

	return newCompatProvider(cfg.APIKey, baseURL, resolveModel(model, huggingfaceModels), true), nil
}
