package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	TextMuted lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor
	Error     lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	BorderHi  lipgloss.AdaptiveColor

	TopBar      lipgloss.Style
	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	Footer      lipgloss.Style
	InputBox    lipgloss.Style
	InputBoxF   lipgloss.Style
	Spinner     lipgloss.Style

	RoleYou    lipgloss.Style
	RoleAI     lipgloss.Style
	RoleErr    lipgloss.Style
	Timestamp  lipgloss.Style
	ChatActive lipgloss.Style
	ChatIdle   lipgloss.Style
	RetryHint  lipgloss.Style
}

func NewTheme() Theme {
	if os.Getenv("CHAT_NO_COLOR") == "1" {
		return noColorTheme()
	}

	t := Theme{
		TextMuted: lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"},
		Accent:    lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"},
		Error:     lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"},
		Border:    lipgloss.AdaptiveColor{Light: "#d1d5db", Dark: "#374151"},
		BorderHi:  lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"},
	}

	t.TopBar = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	t.Pane = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border)
	t.PaneFocused = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderHi)
	t.Footer = lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 1)
	t.InputBox = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1)
	t.InputBoxF = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderHi).Padding(0, 1)
	t.Spinner = lipgloss.NewStyle().Foreground(t.Accent)

	t.RoleYou = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.RoleAI = lipgloss.NewStyle().Bold(true)
	t.RoleErr = lipgloss.NewStyle().Bold(true).Foreground(t.Error)
	t.Timestamp = lipgloss.NewStyle().Foreground(t.TextMuted)
	t.ChatActive = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	t.ChatIdle = lipgloss.NewStyle()
	t.RetryHint = lipgloss.NewStyle().Foreground(t.TextMuted).Italic(true)
	return t
}

func noColorTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		TopBar:      plain,
		Pane:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()),
		PaneFocused: lipgloss.NewStyle().Border(lipgloss.ThickBorder()),
		Footer:      plain,
		InputBox:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		InputBoxF:   lipgloss.NewStyle().Border(lipgloss.ThickBorder()).Padding(0, 1),
		Spinner:     plain,
		RoleYou:     plain,
		RoleAI:      plain,
		RoleErr:     plain,
		Timestamp:   plain,
		ChatActive:  plain,
		ChatIdle:    plain,
		RetryHint:   plain,
	}
}
