package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/quizrr/quizrr/internal/markup"
	"github.com/quizrr/quizrr/internal/ui/theme"
)

// MultiChoice is an option selector. Options are rendered as markup.
type MultiChoice struct {
	Options  []string
	Selected int
}

// NewMultiChoice creates a selector, pre-selecting the option equal to
// current when there is one.
func NewMultiChoice(options []string, current string) MultiChoice {
	m := MultiChoice{Options: options}
	for i, opt := range options {
		if opt == current {
			m.Selected = i
			break
		}
	}
	return m
}

// Update handles arrow navigation and number shortcuts.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(m.Options) {
				m.Selected = i
			}
		}
	}
	return m, nil
}

// Value returns the selected option text.
func (m MultiChoice) Value() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// View renders the options, highlighting the selection.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		style := theme.Unselected
		if i == m.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d) ", prefix, i+1)))
		b.WriteString(markup.RenderANSI(opt))
		b.WriteString("\n")
	}
	return b.String()
}
