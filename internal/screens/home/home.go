// Package home is the landing menu of the terminal app.
package home

import (
	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screen"
	"github.com/quizrr/quizrr/internal/screens/generate"
	"github.com/quizrr/quizrr/internal/screens/history"
	"github.com/quizrr/quizrr/internal/ui/components"
	"github.com/quizrr/quizrr/internal/ui/layout"
	"github.com/quizrr/quizrr/internal/ui/theme"
)

// Service is everything reachable from the home menu.
type Service interface {
	generate.Service
	history.Service
	Configured() bool
}

// HomeScreen is the main menu.
type HomeScreen struct {
	menu       components.Menu
	configured bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen. History is disabled when there is no user to
// list quizzes for.
func New(svc Service, userID string) *HomeScreen {
	configured := svc.Configured()
	items := []components.MenuItem{
		{Label: "New quiz", Disabled: !configured, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: generate.New(svc, userID, "", quizgen.ModeGeneral)}
			}
		}},
		{Label: "History", Disabled: userID == "", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(svc, userID)}
			}
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	return &HomeScreen{
		menu:       components.NewMenu(items),
		configured: configured,
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	s := "\n" + layout.Centered(renderBanner(width), width) + "\n\n"
	if !h.configured {
		s += layout.Centered(theme.ErrorText.Render("No LLM provider is configured; new quizzes are unavailable."), width) + "\n\n"
	}
	s += layout.Centered(h.menu.View(), width)
	return s
}

func (h *HomeScreen) Title() string {
	return "Home"
}
