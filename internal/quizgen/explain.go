package quizgen

import (
	"bytes"
	"context"
	"errors"
	"text/template"

	"github.com/quizrr/quizrr/internal/llm"
)

// ExplanationSystemPrompt is the tutor persona for explanations.
const ExplanationSystemPrompt = "You are a helpful tutor."

// NoExplanation is returned when the model replies with nothing.
const NoExplanation = "No explanation generated."

var explanationTemplate = template.Must(template.New("explanation").Parse(`Question: "{{.Question}}"
Student Answer: "{{.UserAnswer}}"
Correct Answer: "{{.CorrectAnswer}}"

Explain why the student's answer is correct or incorrect in 2-3 sentences.
`))

// Explainer asks the model why an answer is right or wrong.
type Explainer struct {
	provider llm.Provider
	config   Config
}

// NewExplainer creates an Explainer.
func NewExplainer(provider llm.Provider, cfg Config) *Explainer {
	return &Explainer{provider: provider, config: cfg}
}

// Explain returns a short free-text explanation. An empty reply yields
// NoExplanation; provider failures yield *GenerationError.
func (e *Explainer) Explain(ctx context.Context, question, userAnswer, correctAnswer string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeExplanation)

	var buf bytes.Buffer
	err := explanationTemplate.Execute(&buf, struct {
		Question, UserAnswer, CorrectAnswer string
	}{question, userAnswer, correctAnswer})
	if err != nil {
		return "", err
	}

	reply, err := llm.Complete(ctx, e.provider, llm.Completion{
		System:      ExplanationSystemPrompt,
		User:        buf.String(),
		MaxTokens:   e.config.ExplanationMaxTokens,
		Temperature: e.config.ExplanationTemperature,
	})
	if err != nil {
		var cfgErr *llm.ErrConfig
		if errors.As(err, &cfgErr) {
			return "", err
		}
		return "", &GenerationError{Op: "generate explanation", Err: err}
	}

	if reply == "" {
		return NoExplanation, nil
	}
	return reply, nil
}
