package markup

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/quizrr/quizrr/internal/ui/theme"
)

// Styles controls how ANSI renders each node and block kind.
type Styles struct {
	Text    lipgloss.Style
	Bold    lipgloss.Style
	Italic  lipgloss.Style
	Strike  lipgloss.Style
	Code    lipgloss.Style
	Math    lipgloss.Style
	Heading [6]lipgloss.Style
}

// DefaultStyles returns terminal styles in the quiz palette.
func DefaultStyles() Styles {
	s := Styles{
		Text:   lipgloss.NewStyle(),
		Bold:   lipgloss.NewStyle().Bold(true),
		Italic: lipgloss.NewStyle().Italic(true),
		Strike: lipgloss.NewStyle().Strikethrough(true),
		Code: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Background(theme.BgCard),
		Math: lipgloss.NewStyle().Foreground(theme.Secondary),
	}
	for i := range s.Heading {
		s.Heading[i] = lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	}
	s.Heading[0] = s.Heading[0].Underline(true)
	return s
}

// ANSI renders blocks as terminal text, one line per block.
func ANSI(blocks []Block, styles Styles) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		line := styles.inline(b.Nodes)
		if b.Kind == Heading && b.Level >= 1 && b.Level <= 6 {
			line = styles.Heading[b.Level-1].Render(PlainText(b.Nodes))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderANSI is shorthand for ANSI(Render(text), DefaultStyles()).
func RenderANSI(text string) string {
	return ANSI(Render(text), DefaultStyles())
}

func (s Styles) inline(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case Bold:
			b.WriteString(s.Bold.Render(PlainText(n.Children)))
		case Italic:
			b.WriteString(s.Italic.Render(PlainText(n.Children)))
		case Strike:
			b.WriteString(s.Strike.Render(PlainText(n.Children)))
		case Code:
			b.WriteString(s.Code.Render(PlainText(n.Children)))
		case Fraction:
			b.WriteString(s.Math.Render(n.Text))
		case Superscript:
			b.WriteString(s.Math.Render(SuperscriptGlyphs(n.Text)))
		default:
			b.WriteString(s.Text.Render(n.Text))
		}
	}
	return b.String()
}
