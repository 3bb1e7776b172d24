package results

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/router"
)

type fakeExplainer struct {
	mu    sync.Mutex
	calls []int
	users []string
	res   quizzes.ExplainResult
}

func (f *fakeExplainer) Explain(_ context.Context, userID, _ string, questionID int) quizzes.ExplainResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, questionID)
	f.users = append(f.users, userID)
	return f.res
}

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:    "quiz-1",
		Title: "Fractions",
		Questions: []quiz.Question{
			{ID: 1, Type: quiz.TypeMultipleChoice, Question: "1/2 + 1/4?", Options: []string{"3/4", "2/6"}, Answer: "3/4"},
			{ID: 2, Type: quiz.TypeShortAnswer, Question: "x^2 * x?", Answer: "x^3"},
		},
	}
}

func testResult() *quiz.Result {
	return &quiz.Result{QuizID: "quiz-1", Score: 1, Total: 2, Answers: map[int]string{1: "3/4", 2: "x^2"}}
}

func TestResultsScreen_TitleAndStatus(t *testing.T) {
	s := New(&fakeExplainer{}, "local", testQuiz(), testResult())
	if s.Title() != "Results" {
		t.Errorf("Title = %q", s.Title())
	}
	if s.Status() != "1/2" {
		t.Errorf("Status = %q, want 1/2", s.Status())
	}
}

func TestResultsScreen_ViewShowsAnswers(t *testing.T) {
	view := New(&fakeExplainer{}, "local", testQuiz(), testResult()).View(100, 30)
	for _, want := range []string{"Your answer", "Correct:", "✓", "✗"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestResultsScreen_ExplanationLifecycle(t *testing.T) {
	ex := &fakeExplainer{res: quizzes.ExplainResult{Success: true, Explanation: "Add the exponents."}}
	s := New(ex, "alice", testQuiz(), testResult())

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command to fetch the explanation")
	}
	if !s.Loading(2) {
		t.Error("question 2 should be loading")
	}
	if s.Loading(1) {
		t.Error("question 1 should not be loading")
	}

	// A second press while in flight does not start another request.
	if _, again := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); again != nil {
		t.Error("expected no command while the request is in flight")
	}

	s.Update(cmd())
	if s.Loading(2) {
		t.Error("question 2 should have finished loading")
	}
	if e, ok := s.Explanation(2); !ok || e != "Add the exponents." {
		t.Errorf("Explanation(2) = %q, %v", e, ok)
	}
	if len(ex.calls) != 1 || ex.calls[0] != 2 {
		t.Errorf("calls = %v, want [2]", ex.calls)
	}
	if ex.users[0] != "alice" {
		t.Errorf("explained for %q, want alice", ex.users[0])
	}
	if !strings.Contains(s.View(100, 30), "Add the exponents.") {
		t.Error("view should show the explanation")
	}

	// Pressing again collapses without another request.
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected toggle without a request")
	}
	if strings.Contains(s.View(100, 30), "Add the exponents.") {
		t.Error("explanation should be collapsed")
	}
}

func TestResultsScreen_IndependentRequests(t *testing.T) {
	ex := &fakeExplainer{res: quizzes.ExplainResult{Success: true, Explanation: "ok"}}
	s := New(ex, "local", testQuiz(), testResult())

	_, first := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, second := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if first == nil || second == nil {
		t.Fatal("expected a request per question")
	}
	if !s.Loading(1) || !s.Loading(2) {
		t.Error("both questions should be loading")
	}

	s.Update(second())
	if !s.Loading(1) || s.Loading(2) {
		t.Error("only question 2 should have finished")
	}
	s.Update(first())
	if s.Loading(1) {
		t.Error("question 1 should have finished")
	}
}

func TestResultsScreen_FailureShowsMessage(t *testing.T) {
	ex := &fakeExplainer{res: quizzes.ExplainResult{Error: quizzes.MsgExplainFailed}}
	s := New(ex, "local", testQuiz(), testResult())

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())
	if _, ok := s.Explanation(1); ok {
		t.Error("failed request should not store an explanation")
	}
	if !strings.Contains(s.View(100, 30), quizzes.MsgExplainFailed) {
		t.Error("view should show the failure message")
	}

	// Retrying is allowed after a failure.
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd == nil {
		t.Error("expected a retry command")
	}
}

func TestResultsScreen_EscPops(t *testing.T) {
	s := New(&fakeExplainer{}, "local", testQuiz(), testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
