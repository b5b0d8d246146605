package tui

import (
	"strings"
	"time"

	"chat-cli/internal/app"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusChats
	focusChat
)

// stateMsg signals that the session manager changed; the model re-reads a
// snapshot rather than carrying payload in the message.
type stateMsg struct{}

type spinMsg struct{}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type keyMap struct {
	Quit      key.Binding
	FocusNext key.Binding
	Enter     key.Binding
	NewChat   key.Binding
	Delete    key.Binding
	Clear     key.Binding
	Resend    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		FocusNext: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send/select")),
		NewChat:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		Delete:    key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete chat")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear chat")),
		Resend:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "resend failed")),
	}
}

type Model struct {
	sessions *app.SessionManager
	coord    *app.Coordinator
	updates  <-chan struct{}

	theme Theme
	keys  keyMap

	width  int
	height int
	ready  bool
	focus  focusArea

	state   app.SessionState
	chatSel int

	input  textarea.Model
	chatVP viewport.Model

	spinnerPos int
	mock       bool
}

func New(sessions *app.SessionManager, coord *app.Coordinator, mock bool) *Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about a competitor, then press Enter"
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetHeight(1)
	ta.Prompt = " "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	m := &Model{
		sessions: sessions,
		coord:    coord,
		updates:  sessions.Subscribe(),
		theme:    NewTheme(),
		keys:     newKeyMap(),
		width:    100,
		height:   30,
		focus:    focusInput,
		input:    ta,
		mock:     mock,
	}
	m.state = sessions.Snapshot()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitState())
}

func (m *Model) waitState() tea.Cmd {
	return func() tea.Msg {
		<-m.updates
		return stateMsg{}
	}
}

func (m *Model) spinTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		layout := m.computeLayout()
		if !m.ready {
			m.chatVP = viewport.New(layout.chatW, layout.chatH)
			m.ready = true
		} else {
			m.chatVP.Width = layout.chatW
			m.chatVP.Height = layout.chatH
		}
		m.input.SetWidth(maxInt(10, layout.inputW))
		m.refreshTranscript(false)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.FocusNext):
			m.cycleFocus()
			return m, nil

		case key.Matches(msg, m.keys.NewChat):
			m.sessions.CreateChat()
			m.chatSel = 0
			m.focus = focusInput
			m.input.Focus()
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if chat, ok := m.selectedChat(); ok {
				m.sessions.DeleteChat(chat.ID)
				if m.chatSel > 0 {
					m.chatSel--
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			if chat, ok := m.activeChat(); ok {
				m.sessions.ClearChat(chat.ID)
			}
			return m, nil

		case key.Matches(msg, m.keys.Resend):
			return m, m.onResend()

		case key.Matches(msg, m.keys.Enter):
			return m, m.onEnter()

		case msg.Type == tea.KeyUp:
			if m.focus == focusChats {
				if m.chatSel > 0 {
					m.chatSel--
				}
				return m, nil
			}
			if m.focus == focusChat {
				m.chatVP.LineUp(1)
				return m, nil
			}
		case msg.Type == tea.KeyDown:
			if m.focus == focusChats {
				if m.chatSel < len(m.state.Chats)-1 {
					m.chatSel++
				}
				return m, nil
			}
			if m.focus == focusChat {
				m.chatVP.LineDown(1)
				return m, nil
			}
		case msg.Type == tea.KeyPgUp:
			m.chatVP.ViewUp()
			return m, nil
		case msg.Type == tea.KeyPgDown:
			m.chatVP.ViewDown()
			return m, nil
		}

	case stateMsg:
		m.state = m.sessions.Snapshot()
		if m.chatSel >= len(m.state.Chats) {
			m.chatSel = maxInt(0, len(m.state.Chats)-1)
		}
		m.refreshTranscript(true)
		return m, m.waitState()

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		if m.coord.Busy() {
			return m, m.spinTick()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.chatVP, cmd = m.chatVP.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) onEnter() tea.Cmd {
	if m.focus == focusChats {
		if chat, ok := m.selectedChat(); ok {
			m.sessions.SetActive(chat.ID)
			m.focus = focusInput
			m.input.Focus()
		}
		return nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	m.input.Reset()
	m.coord.Send(text)
	return m.spinTick()
}

// onResend replays the most recent failed turn in the active chat.
func (m *Model) onResend() tea.Cmd {
	chat, ok := m.activeChat()
	if !ok {
		return nil
	}
	for i := len(chat.Messages) - 1; i >= 0; i-- {
		msg := chat.Messages[i]
		if msg.Error != nil && msg.Error.RetryPayload != nil {
			m.coord.Resend(msg)
			return m.spinTick()
		}
	}
	return nil
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusInput:
		if len(m.state.Chats) > 1 || m.width >= sidebarMinWidth {
			m.focus = focusChats
		} else {
			m.focus = focusChat
		}
		m.input.Blur()
	case focusChats:
		m.focus = focusChat
	default:
		m.focus = focusInput
		m.input.Focus()
	}
}

// activeChat mirrors the manager's resolution against the local snapshot.
func (m *Model) activeChat() (app.Chat, bool) {
	if m.state.ActiveChatID != "" {
		for _, chat := range m.state.Chats {
			if chat.ID == m.state.ActiveChatID {
				return chat, true
			}
		}
	}
	if len(m.state.Chats) > 0 {
		return m.state.Chats[0], true
	}
	return app.Chat{}, false
}

func (m *Model) selectedChat() (app.Chat, bool) {
	if m.chatSel < 0 || m.chatSel >= len(m.state.Chats) {
		return app.Chat{}, false
	}
	return m.state.Chats[m.chatSel], true
}

func (m *Model) refreshTranscript(follow bool) {
	if !m.ready {
		return
	}
	chat, ok := m.activeChat()
	if !ok {
		m.chatVP.SetContent(m.theme.Timestamp.Render("Ctrl+N starts a new chat."))
		return
	}
	atBottom := m.chatVP.AtBottom()
	m.chatVP.SetContent(renderTranscript(m.theme, chat.Messages, m.chatVP.Width-2))
	if follow && atBottom {
		m.chatVP.GotoBottom()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
