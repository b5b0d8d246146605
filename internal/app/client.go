package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ChatClient is the boundary to the remote chat backend. Implementations
// must return either the reply text or an *APIError; raw transport errors
// never cross this boundary. A context.Canceled from the caller's own
// cancellation passes through unwrapped.
type ChatClient interface {
	Send(ctx context.Context, chatID, message string) (string, error)
	Health(ctx context.Context) error
}

// APIError is the classified form of every request failure.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Kind == ErrKindHTTP && e.Status > 0 {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return e.Message
}

type chatRequest struct {
	Message string `json:"message"`
	ChatID  string `json:"chat_id"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	ChatID string `json:"chat_id"`
}

type healthResponse struct {
	OK bool `json:"ok"`
}

// HTTPChatClient talks to the backend over plain JSON HTTP.
type HTTPChatClient struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewHTTPChatClient(baseURL string, timeout time.Duration) *HTTPChatClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPChatClient{
		BaseURL: baseURL,
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

func (c *HTTPChatClient) Send(ctx context.Context, chatID, message string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message, ChatID: chatID})
	if err != nil {
		return "", &APIError{Kind: ErrKindUnknown, Message: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", &APIError{Kind: ErrKindUnknown, Message: err.Error()}
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return "", c.classifyTransport(err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if body := strings.TrimSpace(string(bodyBytes)); body != "" {
			msg = fmt.Sprintf("status %d: %s", resp.StatusCode, body)
		}
		return "", &APIError{Kind: ErrKindHTTP, Status: resp.StatusCode, Message: msg}
	}

	var decoded chatResponse
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		return "", &APIError{Kind: ErrKindUnknown, Message: "undecodable reply: " + err.Error()}
	}
	return decoded.Reply, nil
}

func (c *HTTPChatClient) Health(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return &APIError{Kind: ErrKindUnknown, Message: err.Error()}
	}
	resp, err := c.HTTP.Do(request)
	if err != nil {
		return c.classifyTransport(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Kind: ErrKindHTTP, Status: resp.StatusCode, Message: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	var decoded healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || !decoded.OK {
		return &APIError{Kind: ErrKindUnknown, Message: "health probe returned a bad body"}
	}
	return nil
}

// classifyTransport sorts a failed round trip into the error taxonomy.
// Caller-initiated cancellation is passed through so the coordinator can
// tell a superseded call from a genuine failure.
func (c *HTTPChatClient) classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		// The per-request timeout context never cancels, only its parent
		// does; Canceled here always means the caller gave up on purpose.
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: ErrKindTimeout, Message: fmt.Sprintf("request exceeded %s", c.Timeout)}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &APIError{Kind: ErrKindTimeout, Message: fmt.Sprintf("request exceeded %s", c.Timeout)}
		}
		return &APIError{Kind: ErrKindNetwork, Message: "could not reach server: " + urlErr.Err.Error()}
	}
	return &APIError{Kind: ErrKindUnknown, Message: err.Error()}
}
