package server

import (
	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/quiz"
)

// renderedQuiz is a quiz with every text field parsed into markup blocks.
type renderedQuiz struct {
	ID        string             `json:"id"`
	Title     []markup.Block     `json:"title"`
	Questions []renderedQuestion `json:"questions"`
}

type renderedQuestion struct {
	ID          int               `json:"id"`
	Type        quiz.QuestionType `json:"type"`
	Question    []markup.Block    `json:"question"`
	Options     [][]markup.Block  `json:"options,omitempty"`
	Answer      []markup.Block    `json:"answer"`
	Explanation []markup.Block    `json:"explanation,omitempty"`
}

func renderQuiz(q *quiz.Quiz) renderedQuiz {
	out := renderedQuiz{
		ID:        q.ID,
		Title:     markup.Render(q.Title),
		Questions: make([]renderedQuestion, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		rq := renderedQuestion{
			ID:          question.ID,
			Type:        question.Type,
			Question:    markup.Render(question.Question),
			Answer:      markup.Render(question.Answer),
			Explanation: markup.Render(question.Explanation),
		}
		for _, opt := range question.Options {
			rq.Options = append(rq.Options, markup.Render(opt))
		}
		out.Questions = append(out.Questions, rq)
	}
	return out
}
