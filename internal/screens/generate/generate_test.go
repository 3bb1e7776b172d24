package generate

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screens/take"
)

type fakeService struct {
	req quizzes.GenerateRequest
	res quizzes.GenerateResult
}

func (f *fakeService) Generate(_ context.Context, _ string, req quizzes.GenerateRequest) quizzes.GenerateResult {
	f.req = req
	return f.res
}

func (f *fakeService) Submit(context.Context, string, string, map[int]string) (*quiz.Result, error) {
	return &quiz.Result{}, nil
}

func (f *fakeService) Explain(context.Context, string, string, int) quizzes.ExplainResult {
	return quizzes.ExplainResult{}
}

// runBatch executes cmd and any batched commands, returning their messages.
func runBatch(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runBatch(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestGenerateScreen_ModeToggle(t *testing.T) {
	s := New(&fakeService{}, "", "", quizgen.ModeGeneral)
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.Mode() != quizgen.ModeDeep {
		t.Errorf("Mode = %q, want deep", s.Mode())
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.Mode() != quizgen.ModeGeneral {
		t.Errorf("Mode = %q, want general", s.Mode())
	}
}

func TestGenerateScreen_EmptyTopic(t *testing.T) {
	svc := &fakeService{}
	s := New(svc, "", "", quizgen.ModeGeneral)
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no request for an empty topic")
	}
	if s.errMsg != quizzes.MsgEmptyContent {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}

func TestGenerateScreen_SuccessOpensQuiz(t *testing.T) {
	svc := &fakeService{res: quizzes.GenerateResult{Success: true, Quiz: &quiz.Quiz{
		ID:        "quiz-1",
		Questions: []quiz.Question{{ID: 1, Type: quiz.TypeShortAnswer, Question: "?", Answer: "a"}},
	}}}
	s := New(svc, "user-1", "photosynthesis", quizgen.ModeDeep)

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.busy {
		t.Fatal("expected busy while generating")
	}

	var generated tea.Msg
	for _, msg := range runBatch(cmd) {
		if m, ok := msg.(generatedMsg); ok {
			generated = m
		}
	}
	if generated == nil {
		t.Fatal("expected a generatedMsg")
	}
	if svc.req.Content != "photosynthesis" || svc.req.Mode != quizgen.ModeDeep || svc.req.Kind != quizgen.KindText {
		t.Errorf("request = %+v", svc.req)
	}

	_, next := s.Update(generated)
	if next == nil {
		t.Fatal("expected navigation")
	}
	replace, ok := next().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := replace.Screen.(*take.TakeScreen); !ok {
		t.Errorf("replacement screen is %T", replace.Screen)
	}
}

func TestGenerateScreen_FailureShowsMessage(t *testing.T) {
	svc := &fakeService{res: quizzes.GenerateResult{Error: quizzes.MsgInvalidJSON}}
	s := New(svc, "", "topic", quizgen.ModeGeneral)

	s.Update(generatedMsg{Result: svc.res})
	if s.busy {
		t.Error("expected not busy after a result")
	}
	if s.errMsg != quizzes.MsgInvalidJSON {
		t.Errorf("errMsg = %q", s.errMsg)
	}
}
