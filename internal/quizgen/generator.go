package quizgen

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/quiz"
)

// Generator turns study material into a quiz using an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	log      logrus.FieldLogger
}

// NewGenerator creates a Generator. A nil logger uses the logrus default.
func NewGenerator(provider llm.Provider, cfg Config, log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// Generate builds a prompt for content, asks the model, and decodes the
// reply. It returns *GenerationError for provider failures and
// *DecodeError when the reply is unusable; the raw reply is logged but
// never returned in the error message.
func (g *Generator) Generate(ctx context.Context, kind Kind, mode Mode, content string) (*quiz.Quiz, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizGen)

	prompt := BuildPrompt(kind, mode, content)
	c := llm.Completion{
		System:      prompt.System,
		User:        prompt.User,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	if g.config.StructuredOutput {
		c.Schema = QuizSchema
	}

	reply, err := llm.Complete(ctx, g.provider, c)
	if err != nil {
		var cfgErr *llm.ErrConfig
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &GenerationError{Op: "generate quiz", Err: err}
	}

	q, err := Decode(reply)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			g.log.WithFields(logrus.Fields{
				"kind":  de.Kind.String(),
				"reply": de.Reply,
				"model": g.provider.ModelID(),
			}).Warn("discarding unusable quiz reply")
		}
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"title":     q.Title,
		"questions": len(q.Questions),
		"mode":      string(mode),
	}).Info("quiz generated")
	return q, nil
}
