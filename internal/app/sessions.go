package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SessionManager is the in-memory view over the persisted session state and
// its only writer. Every mutating operation runs to completion under the
// lock, leaves the state consistent, persists the result, and notifies
// subscribers. Readers get deep-copied snapshots, never live references.
type SessionManager struct {
	mu    sync.Mutex
	state SessionState
	store StateStore
	subs  []chan struct{}
}

func NewSessionManager(store StateStore) *SessionManager {
	m := &SessionManager{store: store}
	if store != nil {
		state, err := store.Load()
		if err != nil {
			// Fail soft: a broken slot means a fresh session, not a crash.
			log.WithError(err).Warn("session state load failed, starting empty")
			state = SessionState{}
		}
		m.state = state
	}
	return m
}

// Subscribe returns a channel that receives a signal after every state
// change. Notification is level-triggered: a pending signal is not
// duplicated, so consumers re-read a snapshot on each receive.
func (m *SessionManager) Subscribe() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{}, 1)
	m.subs = append(m.subs, ch)
	return ch
}

// Snapshot returns a deep copy of the whole session state.
func (m *SessionManager) Snapshot() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// ActiveChat resolves the effective active chat: the explicit active id when
// it still exists, otherwise the first chat, otherwise none.
func (m *SessionManager) ActiveChat() (Chat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := m.activeChatLocked()
	if chat == nil {
		return Chat{}, false
	}
	return copyChat(*chat), true
}

// CreateChat inserts an empty chat at the front of the list, makes it
// active and returns its id.
func (m *SessionManager) CreateChat() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	chat := Chat{
		ID:        uuid.NewString(),
		Title:     TitleSentinel,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.state.Chats = append([]Chat{chat}, m.state.Chats...)
	m.state.ActiveChatID = chat.ID
	m.commitLocked()
	return chat.ID
}

// SetActive records chatID as active without checking it exists; resolution
// in ActiveChat tolerates a stale id until the next read.
func (m *SessionManager) SetActive(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.ActiveChatID = chatID
	m.commitLocked()
}

// DeleteChat removes the chat. When the deleted chat was the active one, the
// first remaining chat becomes active, or none when the list is empty.
func (m *SessionManager) DeleteChat(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.state.Chats[:0]
	found := false
	for _, chat := range m.state.Chats {
		if chat.ID == chatID {
			found = true
			continue
		}
		kept = append(kept, chat)
	}
	if !found {
		return
	}
	m.state.Chats = kept
	if m.state.ActiveChatID == chatID {
		if len(kept) > 0 {
			m.state.ActiveChatID = kept[0].ID
		} else {
			m.state.ActiveChatID = ""
		}
	}
	m.commitLocked()
}

// ClearChat empties a chat's messages and resets its title to the sentinel
// without deleting the chat itself.
func (m *SessionManager) ClearChat(chatID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := m.findChatLocked(chatID)
	if chat == nil {
		return
	}
	chat.Messages = nil
	chat.Title = TitleSentinel
	chat.UpdatedAt = time.Now()
	m.commitLocked()
}

// UpsertMessage replaces the message with the same id in place, or appends
// it when unseen. Unknown chat ids are silently ignored.
func (m *SessionManager) UpsertMessage(chatID string, msg Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := m.findChatLocked(chatID)
	if chat == nil {
		return
	}
	replaced := false
	for i := range chat.Messages {
		if chat.Messages[i].ID == msg.ID {
			chat.Messages[i] = msg
			replaced = true
			break
		}
	}
	if !replaced {
		chat.Messages = append(chat.Messages, msg)
	}
	if msg.CreatedAt.After(chat.UpdatedAt) {
		chat.UpdatedAt = msg.CreatedAt
	}
	if chat.Title == TitleSentinel && msg.Role == RoleUser {
		chat.Title = DeriveTitle(msg.Content)
	}
	m.commitLocked()
}

// ReplaceMessages swaps a chat's whole message sequence, used when
// reconciling after a full reload.
func (m *SessionManager) ReplaceMessages(chatID string, msgs []Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	chat := m.findChatLocked(chatID)
	if chat == nil {
		return
	}
	chat.Messages = append([]Message(nil), msgs...)
	if len(msgs) > 0 {
		chat.UpdatedAt = msgs[len(msgs)-1].CreatedAt
	} else {
		chat.UpdatedAt = time.Now()
	}
	if chat.Title == TitleSentinel {
		for _, msg := range msgs {
			if msg.Role == RoleUser {
				chat.Title = DeriveTitle(msg.Content)
				break
			}
		}
	}
	m.commitLocked()
}

func (m *SessionManager) findChatLocked(chatID string) *Chat {
	for i := range m.state.Chats {
		if m.state.Chats[i].ID == chatID {
			return &m.state.Chats[i]
		}
	}
	return nil
}

func (m *SessionManager) activeChatLocked() *Chat {
	if m.state.ActiveChatID != "" {
		if chat := m.findChatLocked(m.state.ActiveChatID); chat != nil {
			return chat
		}
	}
	if len(m.state.Chats) > 0 {
		return &m.state.Chats[0]
	}
	return nil
}

// commitLocked persists the state and wakes subscribers. Persistence is best
// effort: a failed save is logged and the in-memory state stays the truth.
func (m *SessionManager) commitLocked() {
	if m.store != nil {
		if err := m.store.Save(copyState(m.state)); err != nil {
			log.WithError(err).Warn("session state save failed")
		}
	}
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func copyState(state SessionState) SessionState {
	out := SessionState{ActiveChatID: state.ActiveChatID}
	if state.Chats != nil {
		out.Chats = make([]Chat, len(state.Chats))
		for i, chat := range state.Chats {
			out.Chats[i] = copyChat(chat)
		}
	}
	return out
}

func copyChat(chat Chat) Chat {
	out := chat
	if chat.Messages != nil {
		out.Messages = make([]Message, len(chat.Messages))
		copy(out.Messages, chat.Messages)
	}
	return out
}
