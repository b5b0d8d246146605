package tui

import (
	"fmt"
	"strings"

	"chat-cli/internal/app"

	"github.com/charmbracelet/lipgloss"
)

func roleLabel(msg app.Message) string {
	switch {
	case msg.Role == app.RoleUser:
		return "You"
	case msg.Error != nil:
		return "Agent (failed)"
	default:
		return "Agent"
	}
}

// renderMessage lays out one transcript entry: a role header with the
// timestamp, then the wrapped body. Failed turns get error styling and a
// retry hint when the original text can be resent.
func renderMessage(t Theme, msg app.Message, width int) string {
	header := t.RoleAI
	switch {
	case msg.Role == app.RoleUser:
		header = t.RoleYou
	case msg.Error != nil:
		header = t.RoleErr
	}

	var b strings.Builder
	b.WriteString(header.Render(roleLabel(msg)))
	b.WriteString(" ")
	b.WriteString(t.Timestamp.Render(msg.CreatedAt.Format("15:04:05")))
	b.WriteString("\n")

	body := msg.Content
	if width > 4 {
		body = lipgloss.NewStyle().Width(width).Render(body)
	}
	if msg.Error != nil {
		body = t.RoleErr.UnsetBold().Render(body)
	}
	b.WriteString(body)

	if msg.Error != nil && msg.Error.RetryPayload != nil {
		b.WriteString("\n")
		b.WriteString(t.RetryHint.Render(fmt.Sprintf("[%s] Ctrl+R to resend", msg.Error.Kind)))
	}
	return b.String()
}

func renderTranscript(t Theme, msgs []app.Message, width int) string {
	if len(msgs) == 0 {
		return t.Timestamp.Render("No messages yet. Type below and press Enter.")
	}
	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, renderMessage(t, msg, width))
	}
	return strings.Join(parts, "\n\n")
}

// renderChatRow is one sidebar line; the cursor marks the selected row and
// the active chat keeps its accent even when the cursor is elsewhere.
func renderChatRow(t Theme, chat app.Chat, active, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	title := chat.Title
	if title == "" {
		title = app.TitleSentinel
	}
	row := cursor + title
	runes := []rune(row)
	if width > 1 && len(runes) > width {
		row = string(runes[:width-1]) + "…"
	}
	if active {
		return t.ChatActive.Render(row)
	}
	return t.ChatIdle.Render(row)
}
