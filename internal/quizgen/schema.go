package quizgen

import (
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/quiz"
)

// QuizSchema is the JSON schema sent to providers that support
// structured output. Strict structured output requires every property
// to be listed as required, so short-answer questions carry an empty
// options array.
var QuizSchema = &llm.Schema{
	Name:        "quiz",
	Description: "A quiz of 9-12 questions generated from study material",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title describing the quiz topic",
			},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type": "integer",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{string(quiz.TypeMultipleChoice), string(quiz.TypeShortAnswer)},
						},
						"question": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Four options for multiple-choice. Empty for short-answer.",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The correct answer. For multiple-choice, the exact text of one option.",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "Why this is the correct answer",
						},
					},
					"required":             []any{"id", "type", "question", "options", "answer", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "questions"},
		"additionalProperties": false,
	},
}
