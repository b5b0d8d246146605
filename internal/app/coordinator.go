package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrorMarker prefixes the content of an assistant message that represents
// a failed turn.
const ErrorMarker = "⚠ "

// Coordinator drives one conversational turn at a time against the backend.
// At most one request is in flight across all chats: issuing a new Send
// cancels whatever call preceded it, whichever chat it targeted.
type Coordinator struct {
	sessions *SessionManager
	client   ChatClient

	mu      sync.Mutex
	cancel  context.CancelFunc
	turnSeq uint64
	curTurn uint64
}

func NewCoordinator(sessions *SessionManager, client ChatClient) *Coordinator {
	return &Coordinator{sessions: sessions, client: client}
}

// Busy reports whether a request is currently outstanding.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// Send runs a full turn for text against the active chat, creating one if
// none exists. The optimistic user message and the in-progress placeholder
// are inserted synchronously; the network call and its reconciliation run on
// a goroutine owned by this turn.
func (c *Coordinator) Send(text string) {
	chatID := c.resolveChatID()

	now := time.Now()
	userMsg := Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: now,
	}
	c.sessions.UpsertMessage(chatID, userMsg)

	// The placeholder keeps a stable id so reconciliation updates it in
	// place instead of appending a second assistant message.
	placeholder := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   PlaceholderContent,
		CreatedAt: now.Add(time.Millisecond),
	}
	c.sessions.UpsertMessage(chatID, placeholder)

	ctx, turn := c.begin()
	go c.run(ctx, turn, chatID, placeholder.ID, text)
}

// Resend replays the original text of a failed turn as a brand-new turn.
func (c *Coordinator) Resend(msg Message) {
	if msg.Error == nil || msg.Error.RetryPayload == nil {
		return
	}
	c.Send(msg.Error.RetryPayload.Message)
}

func (c *Coordinator) resolveChatID() string {
	if chat, ok := c.sessions.ActiveChat(); ok {
		return chat.ID
	}
	return c.sessions.CreateChat()
}

// begin cancels the previous turn, if any, and installs a fresh cancellable
// context as the single outstanding one.
func (c *Coordinator) begin() (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.turnSeq++
	c.curTurn = c.turnSeq
	return ctx, c.turnSeq
}

// finish releases the outstanding slot, but only when it still belongs to
// this turn; a superseded turn must not clear its successor's cancel.
func (c *Coordinator) finish(turn uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.curTurn == turn && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Coordinator) run(ctx context.Context, turn uint64, chatID, placeholderID, text string) {
	defer c.finish(turn)

	reply, err := c.client.Send(ctx, chatID, text)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			// Superseded turn: no reconciliation write. The placeholder is
			// left as inserted; see DESIGN.md on the cross-chat case.
			log.WithField("chat_id", chatID).Debug("turn superseded, dropping result")
			return
		}
		c.sessions.UpsertMessage(chatID, Message{
			ID:        placeholderID,
			Role:      RoleAssistant,
			Content:   ErrorMarker + err.Error(),
			CreatedAt: time.Now(),
			Error:     classify(err, text),
		})
		log.WithField("chat_id", chatID).WithError(err).Warn("chat request failed")
		return
	}
	if ctx.Err() != nil {
		return
	}
	c.sessions.UpsertMessage(chatID, Message{
		ID:        placeholderID,
		Role:      RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
}

// classify maps a client error into the ErrorInfo attached to the failed
// assistant message. Anything that is not an *APIError falls back to the
// unknown kind; a turn always ends in a visible message.
func classify(err error, originalText string) *ErrorInfo {
	info := &ErrorInfo{
		Kind:         ErrKindUnknown,
		Message:      err.Error(),
		RetryPayload: &RetryPayload{Message: originalText},
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		info.Kind = apiErr.Kind
		info.Message = apiErr.Message
	}
	return info
}
