package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const sidebarMinWidth = 80

type layout struct {
	sidebarW int
	chatW    int
	chatH    int
	inputW   int
}

func (m *Model) computeLayout() layout {
	l := layout{}
	if m.width >= sidebarMinWidth {
		l.sidebarW = 26
	}
	// Borders eat two columns per pane; top bar, input box and footer eat
	// five rows.
	l.chatW = m.width - l.sidebarW - 2
	if l.sidebarW > 0 {
		l.chatW -= 2
	}
	l.chatH = maxInt(3, m.height-7)
	l.inputW = m.width - 6
	return l
}

func (m *Model) View() string {
	if !m.ready {
		return "…"
	}
	l := m.computeLayout()

	top := m.renderTopBar()
	main := m.renderMain(l)
	input := m.renderInput(l)
	footer := m.renderFooter()
	return lipgloss.JoinVertical(lipgloss.Left, top, main, input, footer)
}

func (m *Model) renderTopBar() string {
	title := "chat"
	if m.mock {
		title += " (mock)"
	}
	status := ""
	if m.coord.Busy() {
		status = " " + m.theme.Spinner.Render(spinnerFrames[m.spinnerPos]+" waiting for the agent…")
	}
	return m.theme.TopBar.Render(title) + status
}

func (m *Model) renderMain(l layout) string {
	chatPane := m.pane(m.focus == focusChat).
		Width(l.chatW).
		Height(l.chatH).
		Render(m.chatVP.View())
	if l.sidebarW == 0 {
		return chatPane
	}
	sidebar := m.pane(m.focus == focusChats).
		Width(l.sidebarW).
		Height(l.chatH).
		Render(m.renderChatList(l))
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, chatPane)
}

func (m *Model) renderChatList(l layout) string {
	if len(m.state.Chats) == 0 {
		return m.theme.Timestamp.Render("no chats")
	}
	active, _ := m.activeChat()
	rows := make([]string, 0, len(m.state.Chats))
	for i, chat := range m.state.Chats {
		rows = append(rows, renderChatRow(m.theme, chat, chat.ID == active.ID, i == m.chatSel && m.focus == focusChats, l.sidebarW))
	}
	if len(rows) > l.chatH {
		rows = rows[:l.chatH]
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderInput(l layout) string {
	style := m.theme.InputBox
	if m.focus == focusInput {
		style = m.theme.InputBoxF
	}
	return style.Width(maxInt(10, l.inputW)).Render(m.input.View())
}

func (m *Model) renderFooter() string {
	keys := []string{
		fmt.Sprintf("%s %s", m.keys.Enter.Help().Key, m.keys.Enter.Help().Desc),
		fmt.Sprintf("%s %s", m.keys.NewChat.Help().Key, m.keys.NewChat.Help().Desc),
		fmt.Sprintf("%s %s", m.keys.Delete.Help().Key, m.keys.Delete.Help().Desc),
		fmt.Sprintf("%s %s", m.keys.Clear.Help().Key, m.keys.Clear.Help().Desc),
		fmt.Sprintf("%s %s", m.keys.Resend.Help().Key, m.keys.Resend.Help().Desc),
		fmt.Sprintf("%s %s", m.keys.FocusNext.Help().Key, m.keys.FocusNext.Help().Desc),
		fmt.Sprintf("%s %s", m.keys.Quit.Help().Key, m.keys.Quit.Help().Desc),
	}
	return m.theme.Footer.Render(strings.Join(keys, "  ·  "))
}

func (m *Model) pane(focused bool) lipgloss.Style {
	if focused {
		return m.theme.PaneFocused
	}
	return m.theme.Pane
}
