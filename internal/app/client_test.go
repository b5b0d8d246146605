package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPChatClientSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Message != "Research Notion pricing" || req.ChatID != "c1" {
			t.Errorf("unexpected payload %+v", req)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{Reply: "Summary: ...", ChatID: req.ChatID})
	}))
	defer server.Close()

	client := NewHTTPChatClient(server.URL, time.Second)
	reply, err := client.Send(context.Background(), "c1", "Research Notion pricing")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if reply != "Summary: ..." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestHTTPChatClientClassifiesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	client := NewHTTPChatClient(server.URL, time.Second)
	_, err := client.Send(context.Background(), "c1", "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != ErrKindHTTP {
		t.Fatalf("expected http kind, got %s", apiErr.Kind)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", apiErr.Status)
	}
	if apiErr.Message != "status 500: rate limited" {
		t.Fatalf("body text should be embedded, got %q", apiErr.Message)
	}
}

func TestHTTPChatClientClassifiesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	client := NewHTTPChatClient(server.URL, 20*time.Millisecond)
	_, err := client.Send(context.Background(), "c1", "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != ErrKindTimeout {
		t.Fatalf("expected timeout kind, got %s", apiErr.Kind)
	}
}

func TestHTTPChatClientClassifiesNetworkError(t *testing.T) {
	// Nothing listens here.
	client := NewHTTPChatClient("http://127.0.0.1:1", time.Second)
	_, err := client.Send(context.Background(), "c1", "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != ErrKindNetwork {
		t.Fatalf("expected network kind, got %s", apiErr.Kind)
	}
}

func TestHTTPChatClientPassesThroughCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	client := NewHTTPChatClient(server.URL, 10*time.Second)
	_, err := client.Send(ctx, "c1", "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("caller cancellation must surface as context.Canceled, got %v", err)
	}
}

func TestHTTPChatClientClassifiesBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewHTTPChatClient(server.URL, time.Second)
	_, err := client.Send(context.Background(), "c1", "hello")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != ErrKindUnknown {
		t.Fatalf("undecodable body should be unknown, got %s", apiErr.Kind)
	}
}

func TestHTTPChatClientHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := NewHTTPChatClient(server.URL, time.Second)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
}
