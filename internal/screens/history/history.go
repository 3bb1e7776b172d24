// Package history lists the user's saved quizzes.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screen"
	"github.com/quizrr/quizrr/internal/screens/take"
	"github.com/quizrr/quizrr/internal/store"
	"github.com/quizrr/quizrr/internal/ui/layout"
	"github.com/quizrr/quizrr/internal/ui/theme"
)

// Service lists saved quizzes and supports retaking them.
type Service interface {
	History(ctx context.Context, userID string) []store.SavedQuiz
	take.Service
}

type historyLoadedMsg struct {
	Quizzes []store.SavedQuiz
}

// HistoryScreen displays saved quizzes, newest first.
type HistoryScreen struct {
	svc      Service
	userID   string
	quizzes  []store.SavedQuiz
	selected int
	loaded   bool
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc Service, userID string) *HistoryScreen {
	return &HistoryScreen{svc: svc, userID: userID}
}

func (s *HistoryScreen) Init() tea.Cmd {
	svc, userID := s.svc, s.userID
	return func() tea.Msg {
		return historyLoadedMsg{Quizzes: svc.History(context.Background(), userID)}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Retake"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.quizzes = msg.Quizzes
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.quizzes)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.quizzes) {
				q := s.quizzes[s.selected].Quiz
				return s, func() tea.Msg {
					return router.PushScreenMsg{Screen: take.New(s.svc, s.userID, &q)}
				}
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered(theme.Hint.Render("\n\n  Loading history..."), width)
	}
	if len(s.quizzes) == 0 {
		return layout.Centered(theme.Hint.Render("\n\n  No saved quizzes yet."), width)
	}

	var b strings.Builder
	b.WriteString("\n")
	for i, sq := range s.quizzes {
		prefix := "  "
		style := theme.Unselected
		if i == s.selected {
			prefix = "▸ "
			style = theme.Selected
		}
		line := fmt.Sprintf("%s%s  %s  (%d questions)",
			prefix,
			sq.CreatedAt.Local().Format("Jan 02, 2006 15:04"),
			markup.PlainText(firstLine(sq.Title)),
			len(sq.Questions))
		b.WriteString(layout.Centered(style.Render(line), width))
		b.WriteString("\n")
	}
	return b.String()
}

func firstLine(title string) []markup.Node {
	blocks := markup.Render(title)
	if len(blocks) == 0 {
		return nil
	}
	return blocks[0].Nodes
}
