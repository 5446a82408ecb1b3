package tui

import (
	"strings"
	"testing"

	"github.com/roamchat/roam/internal/models"
)

func TestRenderTranscriptOrderAndLabels(t *testing.T) {
	messages := []models.Message{
		models.NewMessage(models.SenderAssistant, "Hello traveler"),
		models.NewMessage(models.SenderUser, "Where to next?"),
	}

	out := renderTranscript(messages, 80, defaultTheme)

	botAt := strings.Index(out, "Hello traveler")
	userAt := strings.Index(out, "Where to next?")
	if botAt < 0 || userAt < 0 {
		t.Fatalf("transcript missing message bodies:\n%s", out)
	}
	if botAt > userAt {
		t.Error("messages rendered out of order")
	}
	if !strings.Contains(out, "You") || !strings.Contains(out, "Roam") {
		t.Errorf("sender labels missing:\n%s", out)
	}
}

func TestRenderTranscriptEmpty(t *testing.T) {
	if out := renderTranscript(nil, 80, defaultTheme); out != "" {
		t.Errorf("empty conversation rendered %q", out)
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		max   int
		want  string
	}{
		{"fits", "Chat 1", 10, "Chat 1"},
		{"exact", "Chat 1", 6, "Chat 1"},
		{"truncated", "A very long session title", 10, "A very lo…"},
		{"unicode", "日本旅行の計画", 4, "日本旅…"},
		{"single", "Chat", 1, "…"},
		{"zero", "Chat", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateTitle(tt.title, tt.max); got != tt.want {
				t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.title, tt.max, got, tt.want)
			}
		})
	}
}
