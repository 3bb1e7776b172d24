// Package results shows a graded quiz and fetches explanations on demand.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screen"
	"github.com/quizrr/quizrr/internal/ui/components"
	"github.com/quizrr/quizrr/internal/ui/layout"
	"github.com/quizrr/quizrr/internal/ui/theme"
)

// Explainer fetches an explanation for one question of a graded quiz.
type Explainer interface {
	Explain(ctx context.Context, userID, quizID string, questionID int) quizzes.ExplainResult
}

// explanationMsg carries a finished explanation request.
type explanationMsg struct {
	QuestionID int
	Result     quizzes.ExplainResult
}

// ResultsScreen lists every question with the user's answer. Each
// question tracks its own explanation request, so several can be in
// flight at once.
type ResultsScreen struct {
	svc    Explainer
	userID string
	quiz   *quiz.Quiz
	result *quiz.Result

	selected     int
	loading      map[int]bool
	explanations map[int]string
	failures     map[int]string
	collapsed    map[int]bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.StatusProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen for userID's graded submission res.
func New(svc Explainer, userID string, q *quiz.Quiz, res *quiz.Result) *ResultsScreen {
	return &ResultsScreen{
		svc:          svc,
		userID:       userID,
		quiz:         q,
		result:       res,
		loading:      make(map[int]bool),
		explanations: make(map[int]string),
		failures:     make(map[int]string),
		collapsed:    make(map[int]bool),
	}
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

func (s *ResultsScreen) Status() string {
	return fmt.Sprintf("%d/%d", s.result.Score, s.result.Total)
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Explain"},
		{Key: "Esc", Description: "Done"},
	}
}

// Loading reports whether an explanation for questionID is in flight.
func (s *ResultsScreen) Loading(questionID int) bool {
	return s.loading[questionID]
}

// Explanation returns the fetched explanation for questionID.
func (s *ResultsScreen) Explanation(questionID int) (string, bool) {
	e, ok := s.explanations[questionID]
	return e, ok
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explanationMsg:
		delete(s.loading, msg.QuestionID)
		if msg.Result.Success {
			s.explanations[msg.QuestionID] = msg.Result.Explanation
			delete(s.failures, msg.QuestionID)
		} else {
			s.failures[msg.QuestionID] = msg.Result.Error
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.quiz.Questions)-1 {
				s.selected++
			}
		case "enter", "e":
			return s, s.explainSelected()
		}
	}
	return s, nil
}

// explainSelected toggles an existing explanation or starts a request.
// A question with a request already in flight is left alone.
func (s *ResultsScreen) explainSelected() tea.Cmd {
	if s.selected < 0 || s.selected >= len(s.quiz.Questions) {
		return nil
	}
	id := s.quiz.Questions[s.selected].ID
	if s.loading[id] {
		return nil
	}
	if _, ok := s.explanations[id]; ok {
		s.collapsed[id] = !s.collapsed[id]
		return nil
	}

	s.loading[id] = true
	delete(s.failures, id)
	svc, userID, quizID := s.svc, s.userID, s.quiz.ID
	return func() tea.Msg {
		return explanationMsg{
			QuestionID: id,
			Result:     svc.Explain(context.Background(), userID, quizID, id),
		}
	}
}

func (s *ResultsScreen) View(width, height int) string {
	var b strings.Builder
	cw := min(width-4, 76)

	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title.Render(markup.RenderANSI(s.quiz.Title)), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(components.NewProgressBar(
		fmt.Sprintf("Score %d/%d", s.result.Score, s.result.Total),
		s.result.Percent(), true, cw).View(), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Divider.Render(strings.Repeat("─", cw)), width))
	b.WriteString("\n")

	for i, q := range s.quiz.Questions {
		b.WriteString(s.renderQuestion(i, q, cw))
		b.WriteString("\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *ResultsScreen) renderQuestion(i int, q quiz.Question, cw int) string {
	var b strings.Builder

	mark := theme.Incorrect.Render("✗")
	if s.result.IsCorrect(q) {
		mark = theme.Correct.Render("✓")
	}
	prefix := "  "
	if i == s.selected {
		prefix = theme.Selected.Render("▸ ")
	}
	b.WriteString(fmt.Sprintf("%s%s %d. %s\n", prefix, mark, i+1, markup.RenderANSI(q.Question)))

	answer, ok := s.result.Answers[q.ID]
	if !ok || answer == "" {
		answer = "(no answer)"
	}
	b.WriteString(theme.Subtitle.Render("      Your answer: ") + markup.RenderANSI(answer) + "\n")
	if !s.result.IsCorrect(q) {
		b.WriteString(theme.Subtitle.Render("      Correct:     ") + theme.Correct.Render(markup.RenderANSI(q.Answer)) + "\n")
	}

	indent := lipgloss.NewStyle().PaddingLeft(6).Width(cw)
	switch {
	case s.loading[q.ID]:
		b.WriteString(indent.Render(theme.Hint.Render("Explaining...")) + "\n")
	case s.failures[q.ID] != "":
		b.WriteString(indent.Render(theme.ErrorText.Render(s.failures[q.ID])) + "\n")
	default:
		if e, ok := s.explanations[q.ID]; ok && !s.collapsed[q.ID] {
			b.WriteString(indent.Render(markup.RenderANSI(e)) + "\n")
		}
	}
	return b.String()
}
