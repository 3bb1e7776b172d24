package store

import (
	"context"
	"time"

	"github.com/quizrr/quizrr/internal/quiz"
)

// SavedQuiz is a quiz as kept in the document store.
type SavedQuiz struct {
	quiz.Quiz
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuizRepo persists generated quizzes.
type QuizRepo interface {
	// SaveQuiz stores q for userID and returns the server-assigned id.
	// q.ID is ignored.
	SaveQuiz(ctx context.Context, userID string, q *quiz.Quiz) (string, error)

	// ListQuizzes returns the user's quizzes, newest first.
	ListQuizzes(ctx context.Context, userID string) ([]SavedQuiz, error)

	// GetQuiz returns the quiz with the given id, or nil if none exists.
	GetQuiz(ctx context.Context, id string) (*SavedQuiz, error)
}

// ResultRepo persists quiz submissions. Results are append-only; a
// retake adds a new row.
type ResultRepo interface {
	SaveResult(ctx context.Context, userID string, r *quiz.Result) (string, error)

	// LatestResult returns the user's most recent result for quizID, or
	// nil. Results of other users are never returned.
	LatestResult(ctx context.Context, userID, quizID string) (*quiz.Result, error)
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when non-empty
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a recorded LLM request.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates events by purpose or by model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
