package quiz

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is used when the model omits a quiz title.
const DefaultTitle = "Generated Quiz"

// QuestionType describes how a question is answered.
type QuestionType string

const (
	// TypeMultipleChoice means the learner picks one of Options.
	TypeMultipleChoice QuestionType = "multiple-choice"

	// TypeShortAnswer means the learner types a free-form answer.
	TypeShortAnswer QuestionType = "short-answer"
)

// Quiz is a generated set of questions.
type Quiz struct {
	// ID is assigned by the document store, or is a local token
	// (see NewLocalID) when the quiz was never persisted remotely.
	ID string `json:"id,omitempty"`

	Title string `json:"title"`

	// Questions is non-empty. Question IDs form the sequence 1..N.
	Questions []Question `json:"questions"`
}

// Question is a single quiz question.
type Question struct {
	ID       int          `json:"id"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`

	// Options is populated only for multiple-choice questions.
	Options []string `json:"options,omitempty"`

	// Answer is the literal correct answer. For multiple-choice it is
	// expected to equal one of Options.
	Answer string `json:"answer"`

	Explanation string `json:"explanation,omitempty"`
}

// Result is the outcome of one submission of a quiz.
type Result struct {
	QuizID  string         `json:"quizId"`
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Answers map[int]string `json:"answers"`
}

// Question returns the question with the given id, or nil.
func (q *Quiz) Question(id int) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// IsMultipleChoice reports whether the question offers options.
func (q Question) IsMultipleChoice() bool {
	return q.Type == TypeMultipleChoice && len(q.Options) > 0
}

// NewLocalID returns a client-side quiz id of the form
// quiz-<unixmillis>-<8 hex>. It is used when the quiz could not be saved to
// the document store. The random suffix keeps ids minted in the same
// millisecond apart.
func NewLocalID(now time.Time) string {
	return fmt.Sprintf("quiz-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// ResultKey is the local cache key under which a user's latest result for
// a quiz lives. Anonymous results use the bare <id>-result key.
func ResultKey(userID, quizID string) string {
	if userID == "" {
		return quizID + "-result"
	}
	return userID + ":" + quizID + "-result"
}
