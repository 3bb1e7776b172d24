package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/store"
)

type fakeService struct{}

func (fakeService) Generate(context.Context, string, quizzes.GenerateRequest) quizzes.GenerateResult {
	return quizzes.GenerateResult{}
}
func (fakeService) Submit(context.Context, string, string, map[int]string) (*quiz.Result, error) {
	return &quiz.Result{}, nil
}
func (fakeService) Explain(context.Context, string, string, int) quizzes.ExplainResult {
	return quizzes.ExplainResult{}
}
func (fakeService) History(context.Context, string) []store.SavedQuiz { return nil }
func (fakeService) Configured() bool                                 { return true }

func TestNewAppModel_StartsOnHome(t *testing.T) {
	m := newAppModel(Options{Service: fakeService{}})
	if m.router.Depth() != 1 || m.router.Active().Title() != "Home" {
		t.Errorf("active = %q depth %d", m.router.Active().Title(), m.router.Depth())
	}
}

func TestNewAppModel_StartsOnQuiz(t *testing.T) {
	q := &quiz.Quiz{ID: "quiz-1", Questions: []quiz.Question{{ID: 1, Type: quiz.TypeShortAnswer, Question: "?", Answer: "a"}}}
	m := newAppModel(Options{Service: fakeService{}, Quiz: q})
	if m.router.Depth() != 2 || m.router.Active().Title() != "Quiz" {
		t.Errorf("active = %q depth %d", m.router.Active().Title(), m.router.Depth())
	}
}

func TestNewAppModel_StartsOnGenerate(t *testing.T) {
	m := newAppModel(Options{Service: fakeService{}, Topic: "volcanoes"})
	if m.router.Active().Title() != "New Quiz" {
		t.Errorf("active = %q", m.router.Active().Title())
	}
}

func TestAppModel_ViewRendersFrame(t *testing.T) {
	model, _ := newAppModel(Options{Service: fakeService{}}).Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := model.(AppModel).render()
	if !strings.Contains(out, "quizrr") {
		t.Error("expected header with app name")
	}
	if !strings.Contains(out, "New quiz") {
		t.Error("expected home menu")
	}
}

func TestAppModel_TooSmall(t *testing.T) {
	model, _ := newAppModel(Options{Service: fakeService{}}).Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if !strings.Contains(model.(AppModel).render(), "Terminal too small") {
		t.Error("expected size warning")
	}
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(Options{Service: fakeService{}})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}
