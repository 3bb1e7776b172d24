package home

import (
	"github.com/quizrr/quizrr/internal/ui/theme"
)

const bannerArt = `
  ██████╗ ██╗   ██╗██╗███████╗██████╗ ██████╗
 ██╔═══██╗██║   ██║██║╚══███╔╝██╔══██╗██╔══██╗
 ██║   ██║██║   ██║██║  ███╔╝ ██████╔╝██████╔╝
 ██║▄▄ ██║██║   ██║██║ ███╔╝  ██╔══██╗██╔══██╗
 ╚██████╔╝╚██████╔╝██║███████╗██║  ██║██║  ██║
  ╚══▀▀═╝  ╚═════╝ ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝`

const bannerCompact = "Q U I Z R R"

// renderBanner falls back to spaced letters below 50 columns.
func renderBanner(width int) string {
	if width < 50 {
		return theme.Title.Render(bannerCompact)
	}
	return theme.Title.Render(bannerArt)
}
