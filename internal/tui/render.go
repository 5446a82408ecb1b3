package tui

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/roamchat/roam/internal/models"
)

// renderTranscript formats a conversation for the viewport, wrapping
// message bodies to the given width.
func renderTranscript(messages []models.Message, width int, theme Theme) string {
	if width < 10 {
		width = 10
	}
	bodyStyle := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(senderLabel(msg.Sender, theme))
		b.WriteString("\n")
		b.WriteString(bodyStyle.Render(msg.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func senderLabel(sender models.Sender, theme Theme) string {
	if sender == models.SenderUser {
		return theme.userStyle().Render("You")
	}
	return theme.botStyle().Render("Roam")
}

// truncateTitle shortens a session title to fit the drawer.
func truncateTitle(title string, max int) string {
	if max < 1 {
		return ""
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
