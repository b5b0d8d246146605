package app

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockChatClient simulates the backend for offline runs and tests.
type MockChatClient struct {
	Delay time.Duration
	Calls int
}

func NewMockChatClient() *MockChatClient {
	return &MockChatClient{Delay: 600 * time.Millisecond}
}

func (c *MockChatClient) Send(ctx context.Context, chatID, message string) (string, error) {
	c.Calls++
	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return c.generateReply(message), nil
}

func (c *MockChatClient) Health(ctx context.Context) error {
	return nil
}

func (c *MockChatClient) generateReply(message string) string {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "pricing"):
		return fmt.Sprintf("Summary: pricing research for %q would go here. Running in mock mode, no backend was contacted.", trimmed)
	case strings.Contains(lower, "report"):
		return "Market Report: **mock**\n\n**Executive Summary**\n- mock mode reply, the research pipeline was not invoked"
	default:
		return fmt.Sprintf("Mock reply to %q. Start the backend and drop --mock for real research.", trimmed)
	}
}
