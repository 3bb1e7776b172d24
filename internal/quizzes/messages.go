package quizzes

import (
	"errors"
	"fmt"

	"github.com/quizrr/quizrr/internal/extract"
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/quizgen"
)

// Messages shown to users. Raw model output and transport details never
// reach these strings.
const (
	MsgNotConfigured    = "Hugging Face API Key is not configured."
	MsgInvalidJSON      = "Quiz generation failed: invalid JSON."
	MsgIncomplete       = "Quiz generation failed: incomplete quiz data."
	MsgGenerateFailed   = "Failed to generate quiz."
	MsgExplainFailed    = "Failed to generate explanation."
	MsgEmptyContent     = "Please provide some content to generate a quiz."
	MsgFileTooLarge     = "File is too large. The maximum size is 10MB."
	MsgFileUnreadable   = "Could not read the uploaded file."
	MsgQuizNotFound     = "Quiz not found."
	MsgQuestionNotFound = "Question not found."
)

var providerNames = map[string]string{
	llm.ProviderHuggingFace: "Hugging Face",
	llm.ProviderOpenAI:      "OpenAI",
	llm.ProviderAnthropic:   "Anthropic",
	llm.ProviderGemini:      "Gemini",
	llm.ProviderOpenRouter:  "OpenRouter",
}

// notConfiguredMessage names the provider whose key is missing.
func notConfiguredMessage(err *llm.ErrConfig) string {
	if err == nil || err.Provider == llm.ProviderHuggingFace || err.Provider == "" {
		return MsgNotConfigured
	}
	name, ok := providerNames[err.Provider]
	if !ok {
		name = err.Provider
	}
	return fmt.Sprintf("%s API Key is not configured.", name)
}

// generationMessage converts a generation failure into its user message.
func generationMessage(err error) string {
	var cfgErr *llm.ErrConfig
	if errors.As(err, &cfgErr) {
		return notConfiguredMessage(cfgErr)
	}

	var de *quizgen.DecodeError
	if errors.As(err, &de) {
		if de.Kind == quizgen.MissingFields {
			return MsgIncomplete
		}
		return MsgInvalidJSON
	}

	var invalid *llm.ErrInvalidResponse
	if errors.As(err, &invalid) {
		return MsgInvalidJSON
	}
	return MsgGenerateFailed
}

func explanationMessage(err error) string {
	var cfgErr *llm.ErrConfig
	if errors.As(err, &cfgErr) {
		return notConfiguredMessage(cfgErr)
	}
	return MsgExplainFailed
}

func extractionMessage(err error) string {
	if errors.Is(err, extract.ErrTooLarge) {
		return MsgFileTooLarge
	}
	return MsgFileUnreadable
}
