// Package generate collects a topic and asks the model for a quiz.
package generate

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screen"
	"github.com/quizrr/quizrr/internal/screens/take"
	"github.com/quizrr/quizrr/internal/ui/components"
	"github.com/quizrr/quizrr/internal/ui/layout"
	"github.com/quizrr/quizrr/internal/ui/theme"
)

// Service generates quizzes and supports taking them.
type Service interface {
	Generate(ctx context.Context, userID string, req quizzes.GenerateRequest) quizzes.GenerateResult
	take.Service
}

// generatedMsg carries the outcome of a generation request.
type generatedMsg struct {
	Result quizzes.GenerateResult
}

// GenerateScreen asks for a topic and a mode, then hands the generated
// quiz to the take screen.
type GenerateScreen struct {
	svc     Service
	userID  string
	input   components.TextInput
	mode    quizgen.Mode
	spinner spinner.Model
	busy    bool
	errMsg  string
}

var _ screen.Screen = (*GenerateScreen)(nil)
var _ screen.KeyHintProvider = (*GenerateScreen)(nil)

// New creates a GenerateScreen. A non-empty topic is pre-filled.
func New(svc Service, userID, topic string, mode quizgen.Mode) *GenerateScreen {
	return &GenerateScreen{
		svc:     svc,
		userID:  userID,
		input:   components.NewTextInput("Topic or notes, e.g. photosynthesis", topic, 0),
		mode:    quizgen.ParseMode(string(mode)),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

func (s *GenerateScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *GenerateScreen) Title() string {
	return "New Quiz"
}

func (s *GenerateScreen) KeyHints() []layout.KeyHint {
	if s.busy {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Generate"},
		{Key: "Tab", Description: "Toggle mode"},
		{Key: "Esc", Description: "Back"},
	}
}

// Mode returns the selected generation mode.
func (s *GenerateScreen) Mode() quizgen.Mode {
	return s.mode
}

func (s *GenerateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case generatedMsg:
		s.busy = false
		if !msg.Result.Success {
			s.errMsg = msg.Result.Error
			return s, nil
		}
		q := msg.Result.Quiz
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: take.New(s.svc, s.userID, q)}
		}

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab":
			if s.mode == quizgen.ModeDeep {
				s.mode = quizgen.ModeGeneral
			} else {
				s.mode = quizgen.ModeDeep
			}
			return s, nil
		case "enter":
			return s, s.generate()
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *GenerateScreen) generate() tea.Cmd {
	content := s.input.Value()
	if content == "" {
		s.errMsg = quizzes.MsgEmptyContent
		return nil
	}
	s.busy = true
	s.errMsg = ""

	svc, userID, mode := s.svc, s.userID, s.mode
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		res := svc.Generate(context.Background(), userID, quizzes.GenerateRequest{
			Kind:    quizgen.KindText,
			Mode:    mode,
			Content: content,
		})
		return generatedMsg{Result: res}
	})
}

func (s *GenerateScreen) View(width, height int) string {
	cw := min(width-4, 76)
	var b strings.Builder

	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Title.Render("What should the quiz cover?"), width))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Card.Width(cw).Render(s.input.View()), width))
	b.WriteString("\n\n")

	general, deep := theme.Selected, theme.Hint
	if s.mode == quizgen.ModeDeep {
		general, deep = theme.Hint, theme.Selected
	}
	b.WriteString(layout.Centered(
		theme.Subtitle.Render("Mode: ")+general.Render("general")+theme.Subtitle.Render(" / ")+deep.Render("deep"),
		width))
	b.WriteString("\n\n")

	switch {
	case s.busy:
		b.WriteString(layout.Centered(s.spinner.View()+theme.Hint.Render(" Generating quiz..."), width))
	case s.errMsg != "":
		b.WriteString(layout.Centered(theme.ErrorText.Render(s.errMsg), width))
	}
	return b.String()
}
