package app

import (
	"strings"
	"time"
	"unicode"
)

// Roles for chat messages. The backend only ever sees user text; assistant
// messages are produced locally from its replies.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TitleSentinel is the title a chat carries until its first user message
// arrives. Once rewritten, the title never changes again.
const TitleSentinel = "New chat"

// PlaceholderContent is the body of the in-progress assistant message
// inserted while a request is outstanding.
const PlaceholderContent = "Thinking…"

// ErrorKind classifies a failed exchange. The API client is the only place
// that assigns kinds; everything downstream just switches on them.
type ErrorKind string

const (
	ErrKindNetwork ErrorKind = "network"
	ErrKindTimeout ErrorKind = "timeout"
	ErrKindHTTP    ErrorKind = "http"
	ErrKindUnknown ErrorKind = "unknown"
)

// RetryPayload carries the exact original user text of a failed exchange so
// it can be resent verbatim.
type RetryPayload struct {
	Message string `json:"message"`
}

// ErrorInfo is attached to assistant messages that represent a failed turn.
type ErrorInfo struct {
	Kind         ErrorKind     `json:"kind"`
	Message      string        `json:"message"`
	RetryPayload *RetryPayload `json:"retry_payload,omitempty"`
}

type Message struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Error     *ErrorInfo `json:"error,omitempty"`
}

type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// SessionState is the whole persisted world: every chat plus which one is
// active. Chats are ordered most-recently-created first.
type SessionState struct {
	Chats        []Chat `json:"chats"`
	ActiveChatID string `json:"active_chat_id,omitempty"`
}

const maxTitleRunes = 48

// DeriveTitle turns the first user message into a chat title: inner
// whitespace collapsed, trimmed, capped at maxTitleRunes.
func DeriveTitle(content string) string {
	fields := strings.FieldsFunc(content, unicode.IsSpace)
	title := strings.Join(fields, " ")
	if title == "" {
		return TitleSentinel
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
	}
	return title
}
