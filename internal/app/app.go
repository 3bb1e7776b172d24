// Package app is the root Bubble Tea model of the terminal client.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/router"
	"github.com/quizrr/quizrr/internal/screen"
	"github.com/quizrr/quizrr/internal/screens/generate"
	"github.com/quizrr/quizrr/internal/screens/home"
	"github.com/quizrr/quizrr/internal/screens/take"
	"github.com/quizrr/quizrr/internal/ui/layout"
)

// Options selects the first screen.
type Options struct {
	Service home.Service
	UserID  string

	// Quiz starts straight into taking it.
	Quiz *quiz.Quiz

	// Topic starts on the generate screen pre-filled with it.
	Topic string
	Mode  quizgen.Mode
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	var first screen.Screen = home.New(opts.Service, opts.UserID)
	r := router.New(first)
	switch {
	case opts.Quiz != nil:
		r.Push(take.New(opts.Service, opts.UserID, opts.Quiz))
	case opts.Topic != "":
		r.Push(generate.New(opts.Service, opts.UserID, opts.Topic, opts.Mode))
	}
	return AppModel{router: r}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			footerHints = kp.KeyHints()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Service == nil {
		return fmt.Errorf("app: no service")
	}
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
