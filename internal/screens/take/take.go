// Package take walks the user through a quiz one question at a time.
package take

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screen"
	"github.com/quizrr/quizrr/internal/screens/results"
	"github.com/quizrr/quizrr/internal/ui/components"
	"github.com/quizrr/quizrr/internal/ui/layout"
	"github.com/quizrr/quizrr/internal/ui/theme"
)

// Service grades submissions and explains answers afterwards.
type Service interface {
	Submit(ctx context.Context, userID, quizID string, answers map[int]string) (*quiz.Result, error)
	results.Explainer
}

// submittedMsg is sent when grading finishes.
type submittedMsg struct {
	Result *quiz.Result
	Err    error
}

// TakeScreen presents the questions of one quiz and submits the answers.
type TakeScreen struct {
	svc     Service
	userID  string
	quiz    *quiz.Quiz
	current int
	answers map[int]string

	choice components.MultiChoice
	input  components.TextInput

	confirmQuit bool
	submitting  bool
	errMsg      string
}

var _ screen.Screen = (*TakeScreen)(nil)
var _ screen.KeyHintProvider = (*TakeScreen)(nil)
var _ screen.StatusProvider = (*TakeScreen)(nil)

// New creates a TakeScreen for q. Answers are submitted as userID.
func New(svc Service, userID string, q *quiz.Quiz) *TakeScreen {
	s := &TakeScreen{
		svc:     svc,
		userID:  userID,
		quiz:    q,
		answers: make(map[int]string),
	}
	s.loadQuestion()
	return s
}

func (s *TakeScreen) Init() tea.Cmd {
	if s.onMultipleChoice() {
		return nil
	}
	return s.input.Init()
}

func (s *TakeScreen) Title() string {
	return "Quiz"
}

func (s *TakeScreen) Status() string {
	return fmt.Sprintf("Q %d/%d", s.current+1, len(s.quiz.Questions))
}

func (s *TakeScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Next"}}
	if s.current > 0 {
		hints = append(hints, layout.KeyHint{Key: "Shift+Tab", Description: "Back"})
	}
	if s.onMultipleChoice() {
		hints = append(hints, layout.KeyHint{Key: "↑↓ 1-9", Description: "Choose"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

// Answers returns the answers recorded so far, keyed by question id.
func (s *TakeScreen) Answers() map[int]string {
	return s.answers
}

func (s *TakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		s.submitting = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: results.New(s.svc, s.userID, s.quiz, msg.Result)}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if !s.onMultipleChoice() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *TakeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.submitting {
		return s, nil
	}
	if s.confirmQuit {
		switch msg.String() {
		case "y", "Y":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch msg.String() {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "enter":
		s.recordAnswer()
		if s.current == len(s.quiz.Questions)-1 {
			return s, s.submit()
		}
		s.current++
		return s, s.loadQuestion()
	case "shift+tab":
		if s.current > 0 {
			s.recordAnswer()
			s.current--
			return s, s.loadQuestion()
		}
		return s, nil
	}

	var cmd tea.Cmd
	if s.onMultipleChoice() {
		s.choice, cmd = s.choice.Update(msg)
	} else {
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

func (s *TakeScreen) question() quiz.Question {
	return s.quiz.Questions[s.current]
}

func (s *TakeScreen) onMultipleChoice() bool {
	return len(s.quiz.Questions) > 0 && s.question().IsMultipleChoice()
}

// loadQuestion prepares the input widget for the current question,
// restoring any earlier answer.
func (s *TakeScreen) loadQuestion() tea.Cmd {
	if len(s.quiz.Questions) == 0 {
		return nil
	}
	q := s.question()
	prev := s.answers[q.ID]
	if q.IsMultipleChoice() {
		s.choice = components.NewMultiChoice(q.Options, prev)
		return nil
	}
	s.input = components.NewTextInput("Type your answer...", prev, 500)
	return s.input.Init()
}

func (s *TakeScreen) recordAnswer() {
	if len(s.quiz.Questions) == 0 {
		return
	}
	id := s.question().ID
	if s.onMultipleChoice() {
		s.answers[id] = s.choice.Value()
		return
	}
	s.answers[id] = s.input.Value()
}

func (s *TakeScreen) submit() tea.Cmd {
	s.submitting = true
	s.errMsg = ""
	answers := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	svc, userID, quizID := s.svc, s.userID, s.quiz.ID
	return func() tea.Msg {
		res, err := svc.Submit(context.Background(), userID, quizID, answers)
		return submittedMsg{Result: res, Err: err}
	}
}

func (s *TakeScreen) View(width, height int) string {
	if len(s.quiz.Questions) == 0 {
		return layout.Centered(theme.Hint.Render("\n\nThis quiz has no questions."), width)
	}
	if s.confirmQuit {
		return renderQuitConfirm(width)
	}

	cw := min(width-4, 76)
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title.Render(markup.RenderANSI(s.quiz.Title)), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(components.NewProgressBar(
		fmt.Sprintf("Question %d of %d", s.current+1, len(s.quiz.Questions)),
		components.Fraction(s.current, len(s.quiz.Questions)), false, cw).View(), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Divider.Render(strings.Repeat("─", cw)), width))
	b.WriteString("\n\n")

	body := lipgloss.NewStyle().Width(cw)
	q := s.question()
	b.WriteString(layout.Centered(body.Bold(true).Render(markup.RenderANSI(q.Question)), width))
	b.WriteString("\n\n")

	if s.onMultipleChoice() {
		b.WriteString(layout.Centered(body.Render(s.choice.View()), width))
	} else {
		b.WriteString(layout.Centered(body.Render("Answer: "+s.input.View()), width))
	}
	b.WriteString("\n")

	switch {
	case s.submitting:
		b.WriteString(layout.Centered(theme.Hint.Render("Grading..."), width))
	case s.errMsg != "":
		b.WriteString(layout.Centered(theme.ErrorText.Render("Error: "+s.errMsg), width))
	}
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(theme.Body.Bold(true).Render("Leave this quiz?"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Subtitle.Render("Your answers will not be graded."), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Incorrect.Render("[Y] Yes, leave"), width))
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Correct.Render("[N] No, keep going"), width))
	return b.String()
}
