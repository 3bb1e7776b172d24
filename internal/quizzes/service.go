// Package quizzes is the application boundary for quiz generation, taking
// and review. It converts every failure into a result value with a short
// user-facing message, persists durably when possible, and always keeps a
// copy in the local cache.
package quizzes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/quizrr/quizrr/internal/cache"
	"github.com/quizrr/quizrr/internal/extract"
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/store"
)

// ErrNotFound is returned when a quiz or result exists neither in the
// cache nor in the store.
var ErrNotFound = errors.New("not found")

// GenerateRequest describes what to build a quiz from.
type GenerateRequest struct {
	Kind    quizgen.Kind `json:"type"`
	Mode    quizgen.Mode `json:"mode"`
	Content string       `json:"content"`
}

// GenerateResult is the outcome of a generation attempt.
type GenerateResult struct {
	Success bool       `json:"success"`
	Quiz    *quiz.Quiz `json:"quiz,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// ExplainResult is the outcome of an explanation request.
type ExplainResult struct {
	Success     bool   `json:"success"`
	Explanation string `json:"explanation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Deps wires a Service.
type Deps struct {
	// Provider answers generation and explanation prompts. Nil means no
	// provider is configured; ConfigErr then describes why.
	Provider  llm.Provider
	ConfigErr *llm.ErrConfig

	// Quizzes and Results are optional durable stores.
	Quizzes store.QuizRepo
	Results store.ResultRepo

	// Cache defaults to an in-process cache.
	Cache cache.Cache

	Extractor  *extract.Extractor
	Generation quizgen.Config
	Log        logrus.FieldLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Service implements the quiz workflows. Safe for concurrent use.
type Service struct {
	provider  llm.Provider
	configErr *llm.ErrConfig
	generator *quizgen.Generator
	explainer *quizgen.Explainer

	quizzes store.QuizRepo
	results store.ResultRepo
	cache   cache.Cache
	extract *extract.Extractor
	log     logrus.FieldLogger
	now     func() time.Time

	explaining singleflight.Group
}

// New creates a Service from deps.
func New(deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := deps.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	ex := deps.Extractor
	if ex == nil {
		ex = extract.New(log)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	s := &Service{
		provider:  deps.Provider,
		configErr: deps.ConfigErr,
		quizzes:   deps.Quizzes,
		results:   deps.Results,
		cache:     c,
		extract:   ex,
		log:       log,
		now:       now,
	}
	if deps.Provider != nil {
		s.generator = quizgen.NewGenerator(deps.Provider, deps.Generation, log)
		s.explainer = quizgen.NewExplainer(deps.Provider, deps.Generation)
	}
	return s
}

// Configured reports whether an LLM provider is available.
func (s *Service) Configured() bool {
	return s.provider != nil
}

// Generate builds a quiz from req. Authenticated users get the quiz saved
// to the store, whose id replaces the local one; every quiz is cached
// locally under its final id.
func (s *Service) Generate(ctx context.Context, userID string, req GenerateRequest) GenerateResult {
	if !s.Configured() {
		return GenerateResult{Error: notConfiguredMessage(s.configErr)}
	}
	if strings.TrimSpace(req.Content) == "" {
		return GenerateResult{Error: MsgEmptyContent}
	}

	q, err := s.generator.Generate(ctx, quizgen.ParseKind(string(req.Kind)), quizgen.ParseMode(string(req.Mode)), req.Content)
	if err != nil {
		s.log.WithError(err).WithField("kind", req.Kind).Warn("quiz generation failed")
		return GenerateResult{Error: generationMessage(err)}
	}

	q.ID = quiz.NewLocalID(s.now())
	if userID != "" && s.quizzes != nil {
		id, err := s.quizzes.SaveQuiz(ctx, userID, q)
		if err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("failed to save quiz, keeping local copy only")
		} else {
			q.ID = id
		}
	}
	s.cacheJSON(ctx, q.ID, q)

	return GenerateResult{Success: true, Quiz: q}
}

// GenerateFromFile extracts f and generates a quiz from its content.
func (s *Service) GenerateFromFile(ctx context.Context, userID string, mode quizgen.Mode, f extract.File) GenerateResult {
	content, err := s.extract.Extract(ctx, f)
	if err != nil {
		s.log.WithError(err).WithField("file", f.Name).Warn("file extraction failed")
		return GenerateResult{Error: extractionMessage(err)}
	}
	return s.Generate(ctx, userID, GenerateRequest{Kind: quizgen.KindFile, Mode: mode, Content: content})
}

// Quiz loads a quiz from the local cache, falling back to the store.
func (s *Service) Quiz(ctx context.Context, id string) (*quiz.Quiz, error) {
	var q quiz.Quiz
	ok, err := cache.GetJSON(ctx, s.cache, id, &q)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", id).Warn("cache read failed")
	}
	if ok {
		return &q, nil
	}

	if s.quizzes == nil {
		return nil, ErrNotFound
	}
	saved, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", id).Warn("store read failed")
		return nil, ErrNotFound
	}
	if saved == nil {
		return nil, ErrNotFound
	}
	s.cacheJSON(ctx, id, &saved.Quiz)
	return &saved.Quiz, nil
}

// History lists the user's saved quizzes, newest first. Failures yield an
// empty list.
func (s *Service) History(ctx context.Context, userID string) []store.SavedQuiz {
	if userID == "" || s.quizzes == nil {
		return nil
	}
	list, err := s.quizzes.ListQuizzes(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to load quiz history")
		return nil
	}
	return list
}

// Submit grades answers, caches the result under the user's
// quiz.ResultKey, and records it for authenticated users.
func (s *Service) Submit(ctx context.Context, userID, quizID string, answers map[int]string) (*quiz.Result, error) {
	q, err := s.Quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.ID == "" {
		q.ID = quizID
	}

	res := quiz.Grade(q, answers)
	s.cacheJSON(ctx, quiz.ResultKey(userID, quizID), res)

	if userID != "" && s.results != nil {
		if _, err := s.results.SaveResult(ctx, userID, res); err != nil {
			s.log.WithError(err).WithField("quiz_id", quizID).Warn("failed to save result, keeping local copy only")
		}
	}

	s.log.WithFields(logrus.Fields{
		"quiz_id": quizID,
		"score":   res.Score,
		"total":   res.Total,
	}).Info("quiz submitted")
	return res, nil
}

// Result returns userID's latest result for quizID. Results submitted by
// other users are never returned.
func (s *Service) Result(ctx context.Context, userID, quizID string) (*quiz.Result, error) {
	key := quiz.ResultKey(userID, quizID)

	var res quiz.Result
	ok, err := cache.GetJSON(ctx, s.cache, key, &res)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("cache read failed")
	}
	if ok {
		return &res, nil
	}

	if userID == "" || s.results == nil {
		return nil, ErrNotFound
	}
	latest, err := s.results.LatestResult(ctx, userID, quizID)
	if err != nil {
		s.log.WithError(err).WithField("quiz_id", quizID).Warn("store read failed")
		return nil, ErrNotFound
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	s.cacheJSON(ctx, key, latest)
	return latest, nil
}

// Explain explains userID's submitted answer to one question of a quiz.
// Concurrent requests for the same answer share one model call.
func (s *Service) Explain(ctx context.Context, userID, quizID string, questionID int) ExplainResult {
	q, err := s.Quiz(ctx, quizID)
	if err != nil {
		return ExplainResult{Error: MsgQuizNotFound}
	}
	question := q.Question(questionID)
	if question == nil {
		return ExplainResult{Error: MsgQuestionNotFound}
	}

	var userAnswer string
	if res, err := s.Result(ctx, userID, quizID); err == nil {
		userAnswer = res.Answers[questionID]
	}

	key := fmt.Sprintf("%s/%s/%d", userID, quizID, questionID)
	return s.explainOnce(ctx, key, question.Question, userAnswer, question.Answer)
}

// ExplainText explains an answer given the literal question texts.
func (s *Service) ExplainText(ctx context.Context, question, userAnswer, correctAnswer string) ExplainResult {
	key := strings.Join([]string{question, userAnswer, correctAnswer}, "\x00")
	return s.explainOnce(ctx, key, question, userAnswer, correctAnswer)
}

func (s *Service) explainOnce(ctx context.Context, key, question, userAnswer, correctAnswer string) ExplainResult {
	if !s.Configured() {
		return ExplainResult{Error: notConfiguredMessage(s.configErr)}
	}

	// The shared call outlives any single caller; each caller stops
	// waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := s.explaining.DoChan(key, func() (any, error) {
		return s.explainer.Explain(shared, question, userAnswer, correctAnswer)
	})

	select {
	case <-ctx.Done():
		s.log.WithError(ctx.Err()).Warn("explanation abandoned")
		return ExplainResult{Error: MsgExplainFailed}
	case r := <-ch:
		if r.Err != nil {
			s.log.WithError(r.Err).WithField("shared", r.Shared).Warn("explanation failed")
			return ExplainResult{Error: explanationMessage(r.Err)}
		}
		return ExplainResult{Success: true, Explanation: r.Val.(string)}
	}
}

// cacheJSON writes v to the local cache, logging failures.
func (s *Service) cacheJSON(ctx context.Context, key string, v any) {
	if err := cache.SetJSON(ctx, s.cache, key, v); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
