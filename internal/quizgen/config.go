package quizgen

// Config controls generation and explanation requests.
type Config struct {
	// MaxTokens is the token budget for a generated quiz.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls quiz generation randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`

	// StructuredOutput asks the provider for schema-constrained JSON and
	// validates the reply against QuizSchema before decoding. Only some
	// providers honor it; the Hugging Face router generally does not.
	StructuredOutput bool `yaml:"structured_output"`

	// ExplanationMaxTokens is the token budget for one explanation.
	ExplanationMaxTokens int `yaml:"explanation_max_tokens"`

	// ExplanationTemperature of zero means the provider default.
	ExplanationTemperature float64 `yaml:"explanation_temperature"`
}

// DefaultConfig returns the standard generation budgets.
func DefaultConfig() Config {
	return Config{
		MaxTokens:            1500,
		Temperature:          0.7,
		ExplanationMaxTokens: 300,
	}
}
